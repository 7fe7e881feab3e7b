package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"liftlog/internal/logging"
)

func TestNewConsoleWritesComponentPrefix(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "console.log")

	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "resolver").Info("resolved exercise",
		logging.String("exercise_id", "BP001"),
		logging.Float64("confidence", 0.85),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "resolver: resolved exercise") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "exercise_id=BP001") {
		t.Fatalf("expected exercise_id attr, got %q", line)
	}
	if !strings.Contains(line, "confidence=0.85") {
		t.Fatalf("expected confidence attr, got %q", line)
	}
}

func TestNewJSONRenamesCoreKeys(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "json.log")

	logger, err := logging.New(logging.Options{
		Format:           "json",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("hello")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, key := range []string{`"ts"`, `"level"`, `"msg"`} {
		if !strings.Contains(line, key) {
			t.Fatalf("expected %s key in json output, got %q", key, line)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLevelFiltering(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "level.log")

	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "warn",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("should be dropped")
	logger.Warn("should appear")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), "should be dropped") {
		t.Fatal("info line should have been filtered")
	}
	if !strings.Contains(string(content), "should appear") {
		t.Fatal("warn line missing")
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("nothing happens", logging.Error(os.ErrNotExist))
}
