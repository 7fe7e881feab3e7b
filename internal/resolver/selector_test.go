package resolver_test

import (
	"strings"
	"testing"

	"liftlog/internal/resolver"
)

func TestSelectCandidatesAliasHitsComeFirst(t *testing.T) {
	res := resolver.New(newTestCatalog(t), &stubOracle{}, nil)

	candidates := res.SelectCandidates("squat", 5)
	if len(candidates) < 2 {
		t.Fatalf("expected at least the two aliased squats, got %d", len(candidates))
	}
	if candidates[0].ExerciseID != "SQ050" || candidates[1].ExerciseID != "SQ051" {
		t.Fatalf("alias order not preserved: %s, %s", candidates[0].ExerciseID, candidates[1].ExerciseID)
	}
}

func TestSelectCandidatesFuzzyFillsWithoutAlias(t *testing.T) {
	res := resolver.New(newTestCatalog(t), &stubOracle{}, nil)

	candidates := res.SelectCandidates("dumbell bench pres", 5)
	if len(candidates) == 0 {
		t.Fatal("expected fuzzy matches for a misspelled query")
	}
	found := false
	for _, c := range candidates {
		if c.ExerciseID == "DB210" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected DB210 among candidates, got %+v", candidates)
	}
}

func TestSelectCandidatesBounded(t *testing.T) {
	res := resolver.New(newTestCatalog(t), &stubOracle{}, nil)

	for _, count := range []int{3, 7, 15} {
		if got := len(res.SelectCandidates("bench press", count)); got > count {
			t.Fatalf("count %d: got %d candidates", count, got)
		}
	}
}

func TestSelectCandidatesDeduplicates(t *testing.T) {
	res := resolver.New(newTestCatalog(t), &stubOracle{}, nil)

	// "bench press" is both an alias for BP001 and a close fuzzy match to it.
	candidates := res.SelectCandidates("bench press", 10)
	seen := make(map[string]int)
	for _, c := range candidates {
		seen[c.ExerciseID]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Fatalf("candidate %s appears %d times", id, n)
		}
	}
}

func TestSelectCandidatesEmptyForNonsense(t *testing.T) {
	res := resolver.New(newTestCatalog(t), &stubOracle{}, nil)

	if candidates := res.SelectCandidates("zzqx vvvw kkkj", 7); len(candidates) != 0 {
		t.Fatalf("expected no candidates, got %+v", candidates)
	}
}

func TestBuildPromptEnumeratesCandidates(t *testing.T) {
	candidates := []resolver.Candidate{
		{ExerciseID: "BP001", Name: "Barbell Bench Press", Equipment: "barbell", TargetMuscles: "chest", BodyParts: "chest"},
		{ExerciseID: "DB210", Name: "Dumbbell Bench Press", Equipment: "dumbbell", TargetMuscles: "chest", BodyParts: "chest"},
	}
	prompt := resolver.BuildPrompt("bench press", candidates)

	for _, want := range []string{
		`User input: "bench press"`,
		`1. ID: BP001, Name: "Barbell Bench Press", Equipment: barbell, Target: chest, Body Parts: chest`,
		`2. ID: DB210, Name: "Dumbbell Bench Press", Equipment: dumbbell, Target: chest, Body Parts: chest`,
		"return null",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
