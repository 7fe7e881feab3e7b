package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"liftlog/internal/catalog"
	"liftlog/internal/logging"
)

// Oracle picks the best candidate from a disambiguation prompt. The returned
// string is the raw model answer; call failures must be returned as errors,
// never encoded as a no-match answer.
type Oracle interface {
	Disambiguate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Resolver orchestrates candidate selection and oracle disambiguation
// against an immutable catalog. It is safe for concurrent use.
type Resolver struct {
	catalog *catalog.Catalog
	oracle  Oracle
	logger  *slog.Logger
}

// New constructs a Resolver. The catalog and oracle are required; a nil
// logger disables logging.
func New(cat *catalog.Catalog, oracle Oracle, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{
		catalog: cat,
		oracle:  oracle,
		logger:  logging.NewComponentLogger(logger, "resolver"),
	}
}

// ListCandidates validates the request and returns the candidate list that
// Resolve would offer the oracle, without invoking it.
func (r *Resolver) ListCandidates(query string, candidateCount int) ([]Candidate, error) {
	if err := validateRequest(query, candidateCount); err != nil {
		return nil, err
	}
	return r.SelectCandidates(query, candidateCount), nil
}

// Resolve maps an exercise name to a catalog id. The returned error is only
// ever a *ValidationError for rejected input; every other failure is folded
// into the Result's error state so callers always receive a classified
// outcome.
func (r *Resolver) Resolve(ctx context.Context, query string, candidateCount int) (Result, error) {
	if err := validateRequest(query, candidateCount); err != nil {
		return Result{}, err
	}

	candidates := r.SelectCandidates(query, candidateCount)
	if len(candidates) == 0 {
		r.logger.Info("no candidates for query", logging.String("query", query))
		return Result{
			Success:         false,
			Method:          MethodNone,
			ConfidenceScore: 0.0,
			CandidatesCount: 0,
			UserInput:       query,
			Error:           "no matching exercises found in database",
		}, nil
	}

	answer, err := r.oracle.Disambiguate(ctx, OracleSystemPrompt, BuildPrompt(query, candidates))
	if err != nil {
		r.logger.Warn("oracle call failed",
			logging.String("query", query),
			logging.Int("candidates", len(candidates)),
			logging.Error(err),
		)
		return Result{
			Success:         false,
			Method:          MethodError,
			ConfidenceScore: 0.0,
			CandidatesCount: len(candidates),
			UserInput:       query,
			Error:           fmt.Sprintf("error resolving exercise: %v", err),
		}, nil
	}

	exerciseID := cleanAnswer(answer)
	if isNoMatchAnswer(exerciseID) {
		return Result{
			Success:         false,
			Method:          MethodNoMatch,
			ConfidenceScore: 0.0,
			CandidatesCount: len(candidates),
			UserInput:       query,
			LLMResponse:     answer,
			Error:           "llm could not find a suitable match",
		}, nil
	}

	record, ok := r.catalog.ByID(exerciseID)
	if !ok {
		r.logger.Warn("oracle returned unknown exercise id",
			logging.String("query", query),
			logging.String("exercise_id", exerciseID),
		)
		return Result{
			Success:         false,
			Method:          MethodInvalid,
			ConfidenceScore: 0.0,
			CandidatesCount: len(candidates),
			UserInput:       query,
			LLMResponse:     answer,
			Error:           fmt.Sprintf("llm returned invalid exercise_id: %s", exerciseID),
		}, nil
	}

	r.logger.Info("resolved exercise",
		logging.String("query", query),
		logging.String("exercise_id", record.ExerciseID),
		logging.Float64("confidence", MatchConfidence),
	)
	return Result{
		Success:      true,
		ExerciseID:   record.ExerciseID,
		ExerciseName: record.Name,
		ExerciseDetails: &Details{
			TargetMuscles: record.TargetMuscles,
			BodyParts:     record.BodyParts,
			Equipment:     record.Equipments,
			GifURL:        record.GifURL,
		},
		Method:          MethodMatch,
		ConfidenceScore: MatchConfidence,
		CandidatesCount: len(candidates),
		UserInput:       query,
	}, nil
}
