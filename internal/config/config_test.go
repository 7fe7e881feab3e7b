package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"liftlog/internal/config"
)

func TestLoadDefaultConfigUsesEnvKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("OPENAI_API_KEY", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "liftlog")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.APIBind != "127.0.0.1:8460" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.LLM.APIKey != "test-key" {
		t.Fatalf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected llm model: %q", cfg.LLM.Model)
	}
	if cfg.Resolver.DefaultCandidateCount != 7 {
		t.Fatalf("unexpected default candidate count: %d", cfg.Resolver.DefaultCandidateCount)
	}
	if cfg.Transcription.Model != "whisper-1" {
		t.Fatalf("unexpected transcription model: %q", cfg.Transcription.Model)
	}
	if cfg.Uploads.MaxBytes != 25*1024*1024 {
		t.Fatalf("unexpected upload cap: %d", cfg.Uploads.MaxBytes)
	}
	if !strings.HasPrefix(cfg.Catalog.AliasesPath, tempHome) {
		t.Fatalf("expected aliases path under temp home, got %q", cfg.Catalog.AliasesPath)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Paths.UploadDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadParsesConfigFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	path := filepath.Join(tempHome, "config.toml")
	contents := `
[paths]
api_bind = "127.0.0.1:9000"

[llm]
api_key = "file-key"
model = "demo-model"

[resolver]
default_candidate_count = 5

[uploads]
allowed_extensions = ["mp3", ".OGG"]
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q to be used, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Paths.APIBind != "127.0.0.1:9000" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.LLM.APIKey != "file-key" {
		t.Fatalf("unexpected llm key: %q", cfg.LLM.APIKey)
	}
	if cfg.Resolver.DefaultCandidateCount != 5 {
		t.Fatalf("unexpected candidate count: %d", cfg.Resolver.DefaultCandidateCount)
	}
	want := []string{".mp3", ".ogg"}
	if len(cfg.Uploads.AllowedExtensions) != len(want) {
		t.Fatalf("unexpected extensions: %v", cfg.Uploads.AllowedExtensions)
	}
	for i, ext := range want {
		if cfg.Uploads.AllowedExtensions[i] != ext {
			t.Fatalf("unexpected extension at %d: %q", i, cfg.Uploads.AllowedExtensions[i])
		}
	}
}

func TestLoadRejectsMissingAPIKey(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected load to fail without an api key")
	}
	if !strings.Contains(err.Error(), "llm.api_key") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestValidateRejectsCandidateCountOutOfRange(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = "k"
	cfg.Resolver.DefaultCandidateCount = 20
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for candidate count 20")
	}
	cfg.Resolver.DefaultCandidateCount = 2
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for candidate count 2")
	}
}

func TestValidateRejectsUnknownLogFormat(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = "k"
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for log format yaml")
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[llm]") {
		t.Fatal("expected sample to contain [llm] section")
	}
}
