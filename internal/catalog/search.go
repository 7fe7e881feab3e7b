package catalog

import (
	"sort"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// FuzzyFloor is the minimum WRatio score (0-100 scale) a record's name must
// reach against the query to count as an approximate match. Candidate
// selection and name search share this floor.
const FuzzyFloor = 50

// Match pairs a record with its similarity to a query, normalized to [0, 1].
type Match struct {
	Record Record
	Score  float64
}

// SearchByName ranks catalog records against the query using a weighted
// composite of token-sort, partial and plain ratios, tolerant of word
// reordering and partial substrings. Results are sorted by descending score;
// records with equal scores keep their catalog source order. At most limit
// matches are returned, and only those at or above FuzzyFloor.
func (c *Catalog) SearchByName(query string, limit int) []Match {
	normalized := NormalizeName(query)
	if normalized == "" || limit <= 0 {
		return nil
	}

	matches := make([]Match, 0, limit)
	for _, record := range c.records {
		score := fuzzy.WRatio(normalized, NormalizeName(record.Name))
		if score < FuzzyFloor {
			continue
		}
		matches = append(matches, Match{Record: record, Score: float64(score) / 100.0})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
