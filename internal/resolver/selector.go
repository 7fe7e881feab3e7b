package resolver

// SelectCandidates builds the candidate list for a query. Alias hits come
// first, in the alias list's original order, then fuzzy name matches by
// descending score fill the remainder. The result holds at most targetCount
// entries and may be empty; identifiers without a catalog record are dropped.
func (r *Resolver) SelectCandidates(query string, targetCount int) []Candidate {
	if targetCount <= 0 {
		return nil
	}

	seen := make(map[string]struct{}, targetCount)
	ids := make([]string, 0, targetCount)
	add := func(id string) {
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, id := range r.catalog.AliasIDs(query) {
		add(id)
	}

	if len(ids) < targetCount {
		for _, match := range r.catalog.SearchByName(query, 2*targetCount) {
			add(match.Record.ExerciseID)
			if len(ids) >= targetCount {
				break
			}
		}
	}

	if len(ids) > targetCount {
		ids = ids[:targetCount]
	}

	candidates := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		record, ok := r.catalog.ByID(id)
		if !ok {
			continue
		}
		candidates = append(candidates, newCandidate(record))
	}
	return candidates
}
