package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Record is a single exercise entry from the exercises database.
type Record struct {
	ExerciseID    string   `json:"exerciseId"`
	Name          string   `json:"name"`
	Equipments    []string `json:"equipments,omitempty"`
	TargetMuscles []string `json:"targetMuscles,omitempty"`
	BodyParts     []string `json:"bodyParts,omitempty"`
	GifURL        string   `json:"gifUrl,omitempty"`
}

// LoadError reports a fatal failure while reading one of the catalog sources.
// The process cannot serve resolution requests without both sources, so
// callers treat this as a startup abort rather than a recoverable condition.
type LoadError struct {
	Source string
	Path   string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s catalog from %s: %v", e.Source, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Catalog holds the alias index and exercise records. All fields are
// populated once by Load and never mutated afterwards.
type Catalog struct {
	aliases map[string][]string
	records []Record
	byID    map[string]int
}

// Load reads the alias index and exercise records from their JSON files and
// builds the derived id lookup. Alias keys are normalized at load time so
// request-path lookups are a single map access.
func Load(aliasesPath, exercisesPath string) (*Catalog, error) {
	rawAliases, err := os.ReadFile(aliasesPath)
	if err != nil {
		return nil, &LoadError{Source: "alias", Path: aliasesPath, Err: err}
	}
	var aliases map[string][]string
	if err := json.Unmarshal(rawAliases, &aliases); err != nil {
		return nil, &LoadError{Source: "alias", Path: aliasesPath, Err: err}
	}

	rawExercises, err := os.ReadFile(exercisesPath)
	if err != nil {
		return nil, &LoadError{Source: "exercise", Path: exercisesPath, Err: err}
	}
	var records []Record
	if err := json.Unmarshal(rawExercises, &records); err != nil {
		return nil, &LoadError{Source: "exercise", Path: exercisesPath, Err: err}
	}
	if len(records) == 0 {
		return nil, &LoadError{Source: "exercise", Path: exercisesPath, Err: fmt.Errorf("no records")}
	}

	normalized := make(map[string][]string, len(aliases))
	for key, ids := range aliases {
		norm := NormalizeName(key)
		if norm == "" {
			return nil, &LoadError{Source: "alias", Path: aliasesPath, Err: fmt.Errorf("alias entry with empty key")}
		}
		if len(ids) == 0 {
			return nil, &LoadError{Source: "alias", Path: aliasesPath, Err: fmt.Errorf("alias %q has no exercise ids", key)}
		}
		normalized[norm] = append(normalized[norm], ids...)
	}
	if len(normalized) == 0 {
		return nil, &LoadError{Source: "alias", Path: aliasesPath, Err: fmt.Errorf("no alias entries")}
	}

	byID := make(map[string]int, len(records))
	for i, record := range records {
		if strings.TrimSpace(record.ExerciseID) == "" {
			return nil, &LoadError{Source: "exercise", Path: exercisesPath, Err: fmt.Errorf("record %d missing exerciseId", i)}
		}
		if strings.TrimSpace(record.Name) == "" {
			return nil, &LoadError{Source: "exercise", Path: exercisesPath, Err: fmt.Errorf("record %s missing name", record.ExerciseID)}
		}
		if _, dup := byID[record.ExerciseID]; dup {
			return nil, &LoadError{Source: "exercise", Path: exercisesPath, Err: fmt.Errorf("duplicate exerciseId %s", record.ExerciseID)}
		}
		byID[record.ExerciseID] = i
	}

	return &Catalog{aliases: normalized, records: records, byID: byID}, nil
}

// NormalizeName lower-cases and trims a name for alias and fuzzy matching.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ByID returns the record for the given exercise id.
func (c *Catalog) ByID(id string) (Record, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Record{}, false
	}
	return c.records[idx], true
}

// AliasIDs returns the exercise ids mapped to the query's normalized form,
// in the alias list's original order. The result is nil when no alias entry
// exists.
func (c *Catalog) AliasIDs(query string) []string {
	return c.aliases[NormalizeName(query)]
}

// Records returns all exercise records in source order. The returned slice
// is shared and must not be mutated.
func (c *Catalog) Records() []Record {
	return c.records
}

// Len reports the number of exercise records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// AliasCount reports the number of distinct normalized alias keys.
func (c *Catalog) AliasCount() int {
	return len(c.aliases)
}
