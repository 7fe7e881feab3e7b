package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"liftlog/internal/catalog"
	"liftlog/internal/config"
	"liftlog/internal/ingestlog"
	"liftlog/internal/logging"
	"liftlog/internal/resolver"
	"liftlog/internal/services/extract"
	"liftlog/internal/services/llm"
	"liftlog/internal/services/transcribe"
	"liftlog/internal/uploads"
)

// Transcriber converts an uploaded audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path, prompt string) (transcribe.Transcription, error)
}

// Extractor turns free text into schema-bound structured data.
type Extractor interface {
	Extract(ctx context.Context, text string, schema map[string]any, systemPrompt string) (extract.Result, error)
}

// HealthChecker verifies that the disambiguation oracle is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Daemon owns the loaded catalog, the resolver and the ingestion services,
// and serves them over HTTP.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	catalog  *catalog.Catalog
	resolver *resolver.Resolver
	ingest   *ingestlog.Store
	uploads  *uploads.Store

	transcriber  Transcriber
	extractor    Extractor
	oracleHealth HealthChecker

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Option customizes daemon construction, mainly for tests.
type Option func(*Daemon)

// WithOracle substitutes the disambiguation oracle. The oracle's health
// check, if it provides one, replaces the default one in /health reports.
func WithOracle(oracle resolver.Oracle) Option {
	return func(d *Daemon) {
		d.resolver = resolver.New(d.catalog, oracle, d.logger)
		if hc, ok := oracle.(HealthChecker); ok {
			d.oracleHealth = hc
		} else {
			d.oracleHealth = nil
		}
	}
}

// WithTranscriber substitutes the transcription backend.
func WithTranscriber(t Transcriber) Option {
	return func(d *Daemon) {
		if t != nil {
			d.transcriber = t
		}
	}
}

// WithExtractor substitutes the extraction backend.
func WithExtractor(e Extractor) Option {
	return func(d *Daemon) {
		if e != nil {
			d.extractor = e
		}
	}
}

// New constructs a daemon with initialized dependencies. The catalog is
// loaded here; a load failure aborts construction since no request can be
// served without it.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	cat, err := catalog.Load(cfg.Catalog.AliasesPath, cfg.Catalog.ExercisesPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("catalog loaded",
		logging.Int("exercises", cat.Len()),
		logging.Int("aliases", cat.AliasCount()),
	)

	store, err := ingestlog.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open ingest store: %w", err)
	}

	uploadStore, err := uploads.NewStore(cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	oracleCfg := cfg.GetLLM()
	oracle := llm.NewClient(llm.Config{
		APIKey:         oracleCfg.APIKey,
		BaseURL:        oracleCfg.BaseURL,
		Model:          oracleCfg.Model,
		TimeoutSeconds: oracleCfg.TimeoutSeconds,
	})

	transcribeCfg := cfg.TranscriptionLLM()
	transcriber := transcribe.NewClient(transcribe.Config{
		APIKey:         transcribeCfg.APIKey,
		BaseURL:        transcribeCfg.BaseURL,
		Model:          transcribeCfg.Model,
		TimeoutSeconds: transcribeCfg.TimeoutSeconds,
	})

	extractCfg := cfg.ExtractionLLM()
	extractor := extract.NewService(llm.NewClient(llm.Config{
		APIKey:         extractCfg.APIKey,
		BaseURL:        extractCfg.BaseURL,
		Model:          extractCfg.Model,
		TimeoutSeconds: extractCfg.TimeoutSeconds,
	}), extractCfg.Model)

	lockPath := filepath.Join(cfg.Paths.DataDir, "liftlogd.lock")
	d := &Daemon{
		cfg:          cfg,
		logger:       logger,
		catalog:      cat,
		resolver:     resolver.New(cat, oracle, logger),
		ingest:       store,
		uploads:      uploadStore,
		transcriber:  transcriber,
		extractor:    extractor,
		oracleHealth: oracle,
		lockPath:     lockPath,
		lock:         flock.New(lockPath),
	}
	for _, opt := range opts {
		opt(d)
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and begins serving the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another liftlog daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("liftlog daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts the API server down and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.api != nil {
		d.api.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("liftlog daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.ingest != nil {
		return d.ingest.Close()
	}
	return nil
}

// Addr reports the API listen address once Start has succeeded.
func (d *Daemon) Addr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// Status represents daemon runtime information.
type Status struct {
	Running          bool   `json:"running"`
	PID              int    `json:"pid"`
	CatalogExercises int    `json:"catalog_exercises"`
	CatalogAliases   int    `json:"catalog_aliases"`
	DatabasePath     string `json:"database_path"`
	LockFilePath     string `json:"lock_file_path"`
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:          d.running.Load(),
		PID:              os.Getpid(),
		CatalogExercises: d.catalog.Len(),
		CatalogAliases:   d.catalog.AliasCount(),
		DatabasePath:     d.ingest.Path(),
		LockFilePath:     d.lockPath,
	}
}
