// Package testsupport provides shared builders for package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"liftlog/internal/catalog"
	"liftlog/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories and
// catalog fixture files per test. It defaults common fields and applies any
// provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.UploadDir = filepath.Join(base, "uploads")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.LLM.APIKey = "test"
	cfgVal.Catalog.AliasesPath, cfgVal.Catalog.ExercisesPath = WriteCatalogFixtures(t, base)

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLLMBaseURL points the resolver's model client at the given endpoint,
// usually an httptest server.
func WithLLMBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = url
	}
}

// WithCandidateCount overrides the default candidate count.
func WithCandidateCount(count int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resolver.DefaultCandidateCount = count
	}
}

// WriteCatalogFixtures writes a small alias index and exercise database under
// dir and returns their paths.
func WriteCatalogFixtures(t testing.TB, dir string) (aliasesPath, exercisesPath string) {
	t.Helper()

	aliases := `{
  "bench press": ["BP001"],
  "squat": ["SQ050", "SQ051"],
  "deadlift": ["DL100"]
}`
	exercises := `[
  {"exerciseId": "BP001", "name": "Barbell Bench Press", "equipments": ["barbell"], "targetMuscles": ["chest"], "bodyParts": ["chest"], "gifUrl": "https://cdn.example.com/BP001.gif"},
  {"exerciseId": "DB210", "name": "Dumbbell Bench Press", "equipments": ["dumbbell"], "targetMuscles": ["chest"], "bodyParts": ["chest"]},
  {"exerciseId": "SQ050", "name": "Barbell Back Squat", "equipments": ["barbell"], "targetMuscles": ["quadriceps"], "bodyParts": ["legs"]},
  {"exerciseId": "SQ051", "name": "Barbell Front Squat", "equipments": ["barbell"], "targetMuscles": ["quadriceps"], "bodyParts": ["legs"]},
  {"exerciseId": "DL100", "name": "Barbell Deadlift", "equipments": ["barbell"], "targetMuscles": ["glutes", "hamstrings"], "bodyParts": ["back", "legs"]}
]`

	aliasesPath = filepath.Join(dir, "alias_index.json")
	exercisesPath = filepath.Join(dir, "exercises.json")
	if err := os.WriteFile(aliasesPath, []byte(aliases), 0o644); err != nil {
		t.Fatalf("write alias fixture: %v", err)
	}
	if err := os.WriteFile(exercisesPath, []byte(exercises), 0o644); err != nil {
		t.Fatalf("write exercise fixture: %v", err)
	}
	return aliasesPath, exercisesPath
}

// NewCatalog loads a catalog from freshly written fixture files.
func NewCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()

	aliasesPath, exercisesPath := WriteCatalogFixtures(t, t.TempDir())
	cat, err := catalog.Load(aliasesPath, exercisesPath)
	if err != nil {
		t.Fatalf("load catalog fixture: %v", err)
	}
	return cat
}
