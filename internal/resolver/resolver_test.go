package resolver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"liftlog/internal/catalog"
	"liftlog/internal/resolver"
)

type stubOracle struct {
	answer string
	err    error
	calls  int
	prompt string
	system string
}

func (o *stubOracle) Disambiguate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	o.calls++
	o.system = systemPrompt
	o.prompt = userPrompt
	return o.answer, o.err
}

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	dir := t.TempDir()
	aliasPath := filepath.Join(dir, "alias_index.json")
	exercisePath := filepath.Join(dir, "exercises.json")

	aliases := `{
  "bench press": ["BP001"],
  "squat": ["SQ050", "SQ051"]
}`
	exercises := `[
  {"exerciseId": "BP001", "name": "Barbell Bench Press", "equipments": ["barbell"], "targetMuscles": ["chest"], "bodyParts": ["chest"], "gifUrl": "https://cdn.example.com/BP001.gif"},
  {"exerciseId": "DB210", "name": "Dumbbell Bench Press", "equipments": ["dumbbell"], "targetMuscles": ["chest"], "bodyParts": ["chest"]},
  {"exerciseId": "SQ050", "name": "Barbell Back Squat", "equipments": ["barbell"], "targetMuscles": ["quadriceps"], "bodyParts": ["legs"]},
  {"exerciseId": "SQ051", "name": "Barbell Front Squat", "equipments": ["barbell"], "targetMuscles": ["quadriceps"], "bodyParts": ["legs"]}
]`
	if err := os.WriteFile(aliasPath, []byte(aliases), 0o644); err != nil {
		t.Fatalf("write aliases: %v", err)
	}
	if err := os.WriteFile(exercisePath, []byte(exercises), 0o644); err != nil {
		t.Fatalf("write exercises: %v", err)
	}

	cat, err := catalog.Load(aliasPath, exercisePath)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return cat
}

func TestResolveMatch(t *testing.T) {
	oracle := &stubOracle{answer: "BP001"}
	res := resolver.New(newTestCatalog(t), oracle, nil)

	result, err := res.Resolve(context.Background(), "bench press", resolver.DefaultCandidateCount)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !result.Success {
		t.Fatal("expected success")
	}
	if result.Method != resolver.MethodMatch {
		t.Fatalf("expected llm_match, got %s", result.Method)
	}
	if result.ExerciseID != "BP001" || result.ExerciseName != "Barbell Bench Press" {
		t.Fatalf("unexpected resolution %s/%s", result.ExerciseID, result.ExerciseName)
	}
	if result.ConfidenceScore != resolver.MatchConfidence {
		t.Fatalf("expected confidence %v, got %v", resolver.MatchConfidence, result.ConfidenceScore)
	}
	if result.ExerciseDetails == nil || result.ExerciseDetails.GifURL != "https://cdn.example.com/BP001.gif" {
		t.Fatalf("unexpected details %+v", result.ExerciseDetails)
	}
	if result.CandidatesCount < 1 {
		t.Fatalf("expected candidates_count >= 1, got %d", result.CandidatesCount)
	}
	if oracle.calls != 1 {
		t.Fatalf("expected one oracle call, got %d", oracle.calls)
	}
	if !strings.Contains(oracle.prompt, `ID: BP001, Name: "Barbell Bench Press"`) {
		t.Fatalf("prompt missing candidate line:\n%s", oracle.prompt)
	}
	if oracle.system != resolver.OracleSystemPrompt {
		t.Fatalf("unexpected system prompt %q", oracle.system)
	}
}

func TestResolveStripsQuotedAnswer(t *testing.T) {
	oracle := &stubOracle{answer: `  "BP001"  `}
	res := resolver.New(newTestCatalog(t), oracle, nil)

	result, err := res.Resolve(context.Background(), "bench press", resolver.DefaultCandidateCount)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if result.Method != resolver.MethodMatch || result.ExerciseID != "BP001" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestResolveNoCandidatesSkipsOracle(t *testing.T) {
	oracle := &stubOracle{answer: "BP001"}
	res := resolver.New(newTestCatalog(t), oracle, nil)

	result, err := res.Resolve(context.Background(), "xyzzy nonsense exercise", resolver.DefaultCandidateCount)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Method != resolver.MethodNone {
		t.Fatalf("expected none, got %s", result.Method)
	}
	if result.ConfidenceScore != 0.0 || result.CandidatesCount != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if oracle.calls != 0 {
		t.Fatalf("oracle should not be called, got %d calls", oracle.calls)
	}
}

func TestResolveNoMatchAnswers(t *testing.T) {
	for _, answer := range []string{"null", "NULL", "none", "None", "", "  ", `"null"`} {
		t.Run("answer_"+answer, func(t *testing.T) {
			oracle := &stubOracle{answer: answer}
			res := resolver.New(newTestCatalog(t), oracle, nil)

			result, err := res.Resolve(context.Background(), "bench press", resolver.DefaultCandidateCount)
			if err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}
			if result.Method != resolver.MethodNoMatch {
				t.Fatalf("expected llm_no_match for %q, got %s", answer, result.Method)
			}
			if result.Success || result.ConfidenceScore != 0.0 {
				t.Fatalf("unexpected result %+v", result)
			}
		})
	}
}

func TestResolveInvalidAnswer(t *testing.T) {
	oracle := &stubOracle{answer: "ZZ999"}
	res := resolver.New(newTestCatalog(t), oracle, nil)

	result, err := res.Resolve(context.Background(), "bench press", resolver.DefaultCandidateCount)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if result.Method != resolver.MethodInvalid {
		t.Fatalf("expected llm_invalid, got %s", result.Method)
	}
	if result.Success || result.ExerciseID != "" || result.ConfidenceScore != 0.0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if !strings.Contains(result.Error, "ZZ999") {
		t.Fatalf("error should name the bad id, got %q", result.Error)
	}
}

func TestResolveOracleFailureBecomesErrorState(t *testing.T) {
	oracle := &stubOracle{err: context.DeadlineExceeded}
	res := resolver.New(newTestCatalog(t), oracle, nil)

	result, err := res.Resolve(context.Background(), "bench press", resolver.DefaultCandidateCount)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if result.Method != resolver.MethodError {
		t.Fatalf("expected error state, got %s", result.Method)
	}
	if result.Success || result.ConfidenceScore != 0.0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Error == "" {
		t.Fatal("error message should be carried on the result")
	}
	if result.CandidatesCount == 0 {
		t.Fatal("candidates_count should reflect the candidates sent")
	}
}

func TestResolveValidation(t *testing.T) {
	res := resolver.New(newTestCatalog(t), &stubOracle{answer: "BP001"}, nil)

	var valErr *resolver.ValidationError
	if _, err := res.Resolve(context.Background(), "   ", resolver.DefaultCandidateCount); !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError for blank query, got %v", err)
	}
	for _, count := range []int{0, 2, 16, -1} {
		if _, err := res.Resolve(context.Background(), "bench press", count); !errors.As(err, &valErr) {
			t.Fatalf("expected ValidationError for count %d, got %v", count, err)
		}
	}
	for _, count := range []int{resolver.MinCandidateCount, resolver.DefaultCandidateCount, resolver.MaxCandidateCount} {
		if _, err := res.Resolve(context.Background(), "bench press", count); err != nil {
			t.Fatalf("count %d should be valid, got %v", count, err)
		}
	}
}

func TestListCandidatesValidatesAndSkipsOracle(t *testing.T) {
	oracle := &stubOracle{answer: "BP001"}
	res := resolver.New(newTestCatalog(t), oracle, nil)

	candidates, err := res.ListCandidates("bench press", resolver.DefaultCandidateCount)
	if err != nil {
		t.Fatalf("ListCandidates returned error: %v", err)
	}
	if len(candidates) == 0 || candidates[0].ExerciseID != "BP001" {
		t.Fatalf("unexpected candidates %+v", candidates)
	}
	if oracle.calls != 0 {
		t.Fatalf("oracle should not be called, got %d calls", oracle.calls)
	}

	var valErr *resolver.ValidationError
	if _, err := res.ListCandidates("", resolver.DefaultCandidateCount); !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
