package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"liftlog/internal/catalog"
	"liftlog/internal/config"
	"liftlog/internal/logging"
	"liftlog/internal/resolver"
	"liftlog/internal/uploads"
)

type apiServer struct {
	bind    string
	logger  *slog.Logger
	daemon  *Daemon
	handler http.Handler

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/resolve-exercise", srv.handleResolveExercise)
	mux.HandleFunc("/api/enrich-workout-log", srv.handleEnrichWorkoutLog)
	mux.HandleFunc("/api/exercises/candidates", srv.handleCandidates)
	mux.HandleFunc("/api/exercises/", srv.handleExercises)
	mux.HandleFunc("/api/upload-audio", srv.handleUploadAudio)
	mux.HandleFunc("/api/transcribe", srv.handleTranscribe)
	mux.HandleFunc("/api/extract-data", srv.handleExtractData)
	mux.HandleFunc("/api/db/", srv.handleDB)
	srv.handler = srv.withRequestID(mux)

	srv.server = &http.Server{
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	dbStatus := "healthy"
	if err := s.daemon.ingest.CheckHealth(r.Context()); err != nil {
		dbStatus = "unavailable"
	}
	llmStatus := "unchecked"
	if s.daemon.oracleHealth != nil {
		checkCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.daemon.oracleHealth.HealthCheck(checkCtx); err != nil {
			llmStatus = "unreachable"
			s.log().Warn("oracle health check failed", logging.Error(err))
		} else {
			llmStatus = "healthy"
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "liftlog",
		"database":  dbStatus,
		"llm":       llmStatus,
		"exercises": s.daemon.catalog.Len(),
		"aliases":   s.daemon.catalog.AliasCount(),
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status())
}

type resolveExerciseRequest struct {
	ExerciseName   string `json:"exercise_name"`
	CandidateCount *int   `json:"candidate_count"`
}

type resolveExerciseResponse struct {
	resolver.Result
	TimestampISO string `json:"timestamp_iso"`
}

func (s *apiServer) handleResolveExercise(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req resolveExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	count := s.daemon.cfg.Resolver.DefaultCandidateCount
	if req.CandidateCount != nil {
		count = *req.CandidateCount
	}

	result, err := s.daemon.resolver.Resolve(r.Context(), req.ExerciseName, count)
	if err != nil {
		var valErr *resolver.ValidationError
		if errors.As(err, &valErr) {
			s.writeError(w, http.StatusBadRequest, valErr.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, resolveExerciseResponse{
		Result:       result,
		TimestampISO: nowISO(),
	})
}

func (s *apiServer) handleCandidates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req resolveExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	count := s.daemon.cfg.Resolver.DefaultCandidateCount
	if req.CandidateCount != nil {
		count = *req.CandidateCount
	}

	candidates, err := s.daemon.resolver.ListCandidates(req.ExerciseName, count)
	if err != nil {
		var valErr *resolver.ValidationError
		if errors.As(err, &valErr) {
			s.writeError(w, http.StatusBadRequest, valErr.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if candidates == nil {
		candidates = []resolver.Candidate{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"candidates": candidates,
	})
}

type enrichWorkoutLogRequest struct {
	Action           string           `json:"action"`
	ExerciseName     string           `json:"exercise_name"`
	Sets             []map[string]any `json:"sets"`
	SetCount         int              `json:"set_count"`
	PreParsedMessage string           `json:"pre_parsed_message,omitempty"`
}

type enrichWorkoutLogResponse struct {
	Action           string            `json:"action"`
	ExerciseID       string            `json:"exercise_id,omitempty"`
	ExerciseName     string            `json:"exercise_name,omitempty"`
	ExerciseDetails  *resolver.Details `json:"exercise_details,omitempty"`
	Sets             []map[string]any  `json:"sets"`
	SetCount         int               `json:"set_count"`
	PreParsedMessage string            `json:"pre_parsed_message,omitempty"`
	UsedFallback     bool              `json:"used_fallback"`
	ResolutionMethod resolver.Method   `json:"resolution_method"`
	ConfidenceScore  float64           `json:"confidence_score"`
	TimestampISO     string            `json:"timestamp_iso"`
	Error            string            `json:"error,omitempty"`
}

func (s *apiServer) handleEnrichWorkoutLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req enrichWorkoutLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.daemon.resolver.Resolve(r.Context(), req.ExerciseName, s.daemon.cfg.Resolver.DefaultCandidateCount)
	if err != nil {
		var valErr *resolver.ValidationError
		if errors.As(err, &valErr) {
			s.writeError(w, http.StatusBadRequest, valErr.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := enrichWorkoutLogResponse{
		Action:           req.Action,
		ExerciseID:       result.ExerciseID,
		ExerciseName:     result.ExerciseName,
		ExerciseDetails:  result.ExerciseDetails,
		Sets:             req.Sets,
		SetCount:         req.SetCount,
		PreParsedMessage: req.PreParsedMessage,
		UsedFallback:     result.Method == resolver.MethodMatch,
		ResolutionMethod: result.Method,
		ConfidenceScore:  result.ConfidenceScore,
		TimestampISO:     nowISO(),
	}
	if !result.Success {
		resp.Error = result.Error
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleExercises(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/exercises/")
	if rest == "" {
		s.writeError(w, http.StatusNotFound, "exercise not found")
		return
	}

	if query, ok := strings.CutPrefix(rest, "search/"); ok {
		s.handleSearch(w, r, query)
		return
	}

	if strings.Contains(rest, "/") {
		s.writeError(w, http.StatusNotFound, "exercise not found")
		return
	}
	record, ok := s.daemon.catalog.ByID(rest)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("exercise with id %q not found", rest))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"exercise": record,
	})
}

type searchResult struct {
	Exercise        catalog.Record `json:"exercise"`
	SimilarityScore float64        `json:"similarity_score"`
}

// handleSearch receives the query already percent-decoded by the mux.
func (s *apiServer) handleSearch(w http.ResponseWriter, r *http.Request, query string) {
	if strings.TrimSpace(query) == "" {
		s.writeError(w, http.StatusBadRequest, "search query required")
		return
	}
	limit := 10
	if value := r.URL.Query().Get("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 || parsed > 100 {
			s.writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	matches := s.daemon.catalog.SearchByName(query, limit)
	results := make([]searchResult, 0, len(matches))
	for _, match := range matches {
		results = append(results, searchResult{
			Exercise:        match.Record,
			SimilarityScore: match.Score,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

// withRequestID tags each request with a correlation id, honoring one
// supplied by the caller.
func (s *apiServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		s.log().Debug("request",
			logging.String("request_id", requestID),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) writeValidationError(w http.ResponseWriter, err error) {
	var valErr *uploads.ValidationError
	if errors.As(err, &valErr) {
		s.writeError(w, http.StatusBadRequest, valErr.Error())
		return
	}
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func newLogID() string {
	return uuid.NewString()
}
