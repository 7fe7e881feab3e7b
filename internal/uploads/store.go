// Package uploads validates and persists uploaded audio files on disk.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"liftlog/internal/config"
)

// ValidationError reports a rejected upload.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Store writes uploads under a single directory, keyed by generated file ids.
type Store struct {
	dir        string
	maxBytes   int64
	extensions map[string]struct{}
}

// NewStore constructs an upload store from configuration.
func NewStore(cfg *config.Config) (*Store, error) {
	dir := strings.TrimSpace(cfg.Paths.UploadDir)
	if dir == "" {
		return nil, errors.New("uploads: upload directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("uploads: create directory: %w", err)
	}
	extensions := make(map[string]struct{}, len(cfg.Uploads.AllowedExtensions))
	for _, ext := range cfg.Uploads.AllowedExtensions {
		extensions[strings.ToLower(strings.TrimSpace(ext))] = struct{}{}
	}
	return &Store{
		dir:        dir,
		maxBytes:   cfg.Uploads.MaxBytes,
		extensions: extensions,
	}, nil
}

// Saved describes a persisted upload.
type Saved struct {
	FileID    string
	Filename  string
	Extension string
	Size      int64
	Path      string
}

// ValidateFilename checks the extension against the allowlist and returns the
// normalized extension.
func (s *Store) ValidateFilename(filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", &ValidationError{Message: "no filename provided"}
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := s.extensions[ext]; !ok {
		return "", &ValidationError{
			Message: fmt.Sprintf("invalid file format %q, allowed formats: %s", ext, strings.Join(s.allowedList(), ", ")),
		}
	}
	return ext, nil
}

// Save validates and writes an upload to disk under a fresh uuid-based name.
// The reader is consumed up to the size cap; an oversized or empty upload is
// rejected and nothing is left on disk.
func (s *Store) Save(filename string, r io.Reader) (*Saved, error) {
	ext, err := s.ValidateFilename(filename)
	if err != nil {
		return nil, err
	}

	fileID := uuid.NewString()
	path := filepath.Join(s.dir, fileID+ext)
	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("uploads: create file: %w", err)
	}

	// Read one byte past the cap to detect oversized uploads.
	written, err := io.Copy(out, io.LimitReader(r, s.maxBytes+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("uploads: write file: %w", err)
	}
	if written == 0 {
		_ = os.Remove(path)
		return nil, &ValidationError{Message: "empty file"}
	}
	if written > s.maxBytes {
		_ = os.Remove(path)
		return nil, &ValidationError{
			Message: fmt.Sprintf("file too large, maximum size: %.1fMB", float64(s.maxBytes)/(1024*1024)),
		}
	}

	return &Saved{
		FileID:    fileID,
		Filename:  filename,
		Extension: ext,
		Size:      written,
		Path:      path,
	}, nil
}

// PathFor returns the on-disk path for a previously saved file id, or empty
// when no matching file exists.
func (s *Store) PathFor(fileID string) string {
	if strings.TrimSpace(fileID) == "" {
		return ""
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, fileID+".*"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	return matches[0]
}

// Remove deletes the stored file for a file id, if present.
func (s *Store) Remove(fileID string) error {
	path := s.PathFor(fileID)
	if path == "" {
		return nil
	}
	return os.Remove(path)
}

func (s *Store) allowedList() []string {
	list := make([]string, 0, len(s.extensions))
	for ext := range s.extensions {
		list = append(list, ext)
	}
	sort.Strings(list)
	return list
}
