package resolver

import (
	"fmt"
	"strings"

	"liftlog/internal/catalog"
)

// Method tags the terminal outcome of a resolution attempt.
type Method string

const (
	// MethodNone means candidate selection found nothing to offer the oracle.
	MethodNone Method = "none"
	// MethodNoMatch means the oracle explicitly declined to pick a candidate.
	MethodNoMatch Method = "llm_no_match"
	// MethodInvalid means the oracle answered with an id missing from the catalog.
	MethodInvalid Method = "llm_invalid"
	// MethodMatch means the oracle picked a valid catalog id.
	MethodMatch Method = "llm_match"
	// MethodError means the attempt failed before a classification was possible.
	MethodError Method = "error"
)

// MatchConfidence is the fixed confidence reported for a successful match.
// Downstream consumers depend on this exact value, so it is not derived from
// fuzzy scores or oracle likelihoods.
const MatchConfidence = 0.85

// Candidate count bounds for a single resolution request.
const (
	MinCandidateCount     = 3
	MaxCandidateCount     = 15
	DefaultCandidateCount = 7
)

// Candidate is the summary of one catalog record offered to the oracle.
// Tag lists are pre-joined so the prompt builder and API responses share a
// single shape.
type Candidate struct {
	ExerciseID    string `json:"exercise_id"`
	Name          string `json:"name"`
	Equipment     string `json:"equipment"`
	TargetMuscles string `json:"target_muscles"`
	BodyParts     string `json:"body_parts"`
}

func newCandidate(record catalog.Record) Candidate {
	return Candidate{
		ExerciseID:    record.ExerciseID,
		Name:          record.Name,
		Equipment:     strings.Join(record.Equipments, ", "),
		TargetMuscles: strings.Join(record.TargetMuscles, ", "),
		BodyParts:     strings.Join(record.BodyParts, ", "),
	}
}

// Details carries the full tag lists of a resolved exercise.
type Details struct {
	TargetMuscles []string `json:"target_muscles"`
	BodyParts     []string `json:"body_parts"`
	Equipment     []string `json:"equipment"`
	GifURL        string   `json:"gif_url"`
}

// Result is the outcome of one resolution attempt. It is always well formed:
// the Method field is set for every outcome and Error carries the failure
// detail when Success is false.
type Result struct {
	Success         bool     `json:"success"`
	ExerciseID      string   `json:"exercise_id,omitempty"`
	ExerciseName    string   `json:"exercise_name,omitempty"`
	ExerciseDetails *Details `json:"exercise_details,omitempty"`
	Method          Method   `json:"resolution_method"`
	ConfidenceScore float64  `json:"confidence_score"`
	CandidatesCount int      `json:"candidates_count"`
	UserInput       string   `json:"user_input"`
	LLMResponse     string   `json:"llm_response,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// ValidationError reports caller input rejected before candidate selection.
// It is distinct from a no-match business outcome.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validateRequest(query string, candidateCount int) error {
	if strings.TrimSpace(query) == "" {
		return &ValidationError{Field: "exercise_name", Message: "must not be empty"}
	}
	if candidateCount < MinCandidateCount || candidateCount > MaxCandidateCount {
		return &ValidationError{
			Field:   "candidate_count",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinCandidateCount, MaxCandidateCount, candidateCount),
		}
	}
	return nil
}
