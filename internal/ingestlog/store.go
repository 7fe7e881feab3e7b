package ingestlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"liftlog/internal/config"
)

// Store manages ingestion audit persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ingest database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "liftlog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// CheckHealth verifies the database is reachable.
func (s *Store) CheckHealth(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("ingestlog: store not open")
	}
	return s.db.PingContext(ctx)
}

// AddAudioFile inserts an uploaded audio file record. CreatedAt is set when
// unset.
func (s *Store) AddAudioFile(ctx context.Context, file *AudioFile) error {
	if file == nil {
		return errors.New("audio file is nil")
	}
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO audio_files (file_id, filename, file_size, file_extension, file_path, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		file.FileID,
		file.Filename,
		file.FileSize,
		file.FileExtension,
		file.FilePath,
		file.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert audio file: %w", err)
	}
	return nil
}

// GetAudioFile fetches an audio file by id. Returns nil when absent.
func (s *Store) GetAudioFile(ctx context.Context, fileID string) (*AudioFile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+audioFileColumns+` FROM audio_files WHERE file_id = ?`, fileID)
	file, err := scanAudioFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get audio file: %w", err)
	}
	return file, nil
}

// ListAudioFiles returns audio files newest first. A limit of zero or less
// means no limit.
func (s *Store) ListAudioFiles(ctx context.Context, limit, offset int) ([]AudioFile, error) {
	query := `SELECT ` + audioFileColumns + ` FROM audio_files ORDER BY created_at DESC, file_id` + limitOffsetClause(limit, offset)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list audio files: %w", err)
	}
	defer rows.Close()

	var files []AudioFile
	for rows.Next() {
		file, err := scanAudioFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audio file: %w", err)
		}
		files = append(files, *file)
	}
	return files, rows.Err()
}

// RenameAudioFile updates the stored filename and returns the updated record.
// Returns nil when the file does not exist.
func (s *Store) RenameAudioFile(ctx context.Context, fileID, newFilename string) (*AudioFile, error) {
	newFilename = strings.TrimSpace(newFilename)
	if newFilename == "" {
		return nil, errors.New("filename cannot be empty")
	}
	res, err := s.db.ExecContext(ctx, `UPDATE audio_files SET filename = ? WHERE file_id = ?`, newFilename, fileID)
	if err != nil {
		return nil, fmt.Errorf("rename audio file: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetAudioFile(ctx, fileID)
}

// DeleteAudioFile removes an audio file record. Reports whether a row was
// deleted.
func (s *Store) DeleteAudioFile(ctx context.Context, fileID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM audio_files WHERE file_id = ?`, fileID)
	if err != nil {
		return false, fmt.Errorf("delete audio file: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// AddTranscription inserts a transcription record.
func (s *Store) AddTranscription(ctx context.Context, transcription *Transcription) error {
	if transcription == nil {
		return errors.New("transcription is nil")
	}
	if transcription.CreatedAt.IsZero() {
		transcription.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO transcriptions (transcription_id, file_id, transcription_text, prompt, language, duration, model, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		transcription.TranscriptionID,
		transcription.FileID,
		transcription.Text,
		nullableString(transcription.Prompt),
		nullableString(transcription.Language),
		transcription.Duration,
		transcription.Model,
		transcription.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert transcription: %w", err)
	}
	return nil
}

// GetTranscription fetches a transcription by id. Returns nil when absent.
func (s *Store) GetTranscription(ctx context.Context, transcriptionID string) (*Transcription, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+transcriptionColumns+` FROM transcriptions WHERE transcription_id = ?`, transcriptionID)
	transcription, err := scanTranscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transcription: %w", err)
	}
	return transcription, nil
}

// ListTranscriptions returns transcriptions newest first.
func (s *Store) ListTranscriptions(ctx context.Context, limit, offset int) ([]Transcription, error) {
	query := `SELECT ` + transcriptionColumns + ` FROM transcriptions ORDER BY created_at DESC, transcription_id` + limitOffsetClause(limit, offset)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list transcriptions: %w", err)
	}
	defer rows.Close()
	return collectTranscriptions(rows)
}

// ListTranscriptionsByFile returns all transcriptions of one audio file,
// newest first.
func (s *Store) ListTranscriptionsByFile(ctx context.Context, fileID string) ([]Transcription, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+transcriptionColumns+` FROM transcriptions WHERE file_id = ? ORDER BY created_at DESC, transcription_id`,
		fileID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transcriptions by file: %w", err)
	}
	defer rows.Close()
	return collectTranscriptions(rows)
}

// DeleteTranscription removes a transcription record.
func (s *Store) DeleteTranscription(ctx context.Context, transcriptionID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transcriptions WHERE transcription_id = ?`, transcriptionID)
	if err != nil {
		return false, fmt.Errorf("delete transcription: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// AddExtraction inserts a structured extraction record.
func (s *Store) AddExtraction(ctx context.Context, extraction *Extraction) error {
	if extraction == nil {
		return errors.New("extraction is nil")
	}
	if extraction.CreatedAt.IsZero() {
		extraction.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO extractions (
            extraction_id, transcription_id, input_text, structured_json, schema_json,
            system_prompt, model, prompt_tokens, completion_tokens, total_tokens,
            finish_reason, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		extraction.ExtractionID,
		nullableString(extraction.TranscriptionID),
		extraction.InputText,
		extraction.StructuredJSON,
		extraction.SchemaJSON,
		nullableString(extraction.SystemPrompt),
		extraction.Model,
		extraction.PromptTokens,
		extraction.CompletionTokens,
		extraction.TotalTokens,
		nullableString(extraction.FinishReason),
		extraction.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert extraction: %w", err)
	}
	return nil
}

// GetExtraction fetches an extraction by id. Returns nil when absent.
func (s *Store) GetExtraction(ctx context.Context, extractionID string) (*Extraction, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+extractionColumns+` FROM extractions WHERE extraction_id = ?`, extractionID)
	extraction, err := scanExtraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get extraction: %w", err)
	}
	return extraction, nil
}

// ListExtractions returns extractions newest first.
func (s *Store) ListExtractions(ctx context.Context, limit, offset int) ([]Extraction, error) {
	query := `SELECT ` + extractionColumns + ` FROM extractions ORDER BY created_at DESC, extraction_id` + limitOffsetClause(limit, offset)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list extractions: %w", err)
	}
	defer rows.Close()
	return collectExtractions(rows)
}

// ListExtractionsByTranscription returns all extractions linked to one
// transcription, newest first.
func (s *Store) ListExtractionsByTranscription(ctx context.Context, transcriptionID string) ([]Extraction, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+extractionColumns+` FROM extractions WHERE transcription_id = ? ORDER BY created_at DESC, extraction_id`,
		transcriptionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list extractions by transcription: %w", err)
	}
	defer rows.Close()
	return collectExtractions(rows)
}

// DeleteExtraction removes an extraction record.
func (s *Store) DeleteExtraction(ctx context.Context, extractionID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM extractions WHERE extraction_id = ?`, extractionID)
	if err != nil {
		return false, fmt.Errorf("delete extraction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// GetStats reports stored row counts.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats
	row := s.db.QueryRowContext(ctx, `
        SELECT
            (SELECT COUNT(1) FROM audio_files),
            (SELECT COUNT(1) FROM transcriptions),
            (SELECT COUNT(1) FROM extractions)`)
	if err := row.Scan(&stats.AudioFiles, &stats.Transcriptions, &stats.Extractions); err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}

// ClearAll deletes every stored record. It does not touch files on disk.
func (s *Store) ClearAll(ctx context.Context) error {
	for _, table := range []string{"extractions", "transcriptions", "audio_files"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

const (
	audioFileColumns     = "file_id, filename, file_size, file_extension, file_path, created_at"
	transcriptionColumns = "transcription_id, file_id, transcription_text, prompt, language, duration, model, created_at"
	extractionColumns    = "extraction_id, transcription_id, input_text, structured_json, schema_json, system_prompt, model, prompt_tokens, completion_tokens, total_tokens, finish_reason, created_at"
)

type rowScanner interface{ Scan(dest ...any) error }

func scanAudioFile(scanner rowScanner) (*AudioFile, error) {
	var file AudioFile
	var createdAt string
	if err := scanner.Scan(&file.FileID, &file.Filename, &file.FileSize, &file.FileExtension, &file.FilePath, &createdAt); err != nil {
		return nil, err
	}
	file.CreatedAt = parseTimestamp(createdAt)
	return &file, nil
}

func scanTranscription(scanner rowScanner) (*Transcription, error) {
	var transcription Transcription
	var prompt, language sql.NullString
	var duration sql.NullFloat64
	var createdAt string
	if err := scanner.Scan(
		&transcription.TranscriptionID,
		&transcription.FileID,
		&transcription.Text,
		&prompt,
		&language,
		&duration,
		&transcription.Model,
		&createdAt,
	); err != nil {
		return nil, err
	}
	transcription.Prompt = prompt.String
	transcription.Language = language.String
	transcription.Duration = duration.Float64
	transcription.CreatedAt = parseTimestamp(createdAt)
	return &transcription, nil
}

func scanExtraction(scanner rowScanner) (*Extraction, error) {
	var extraction Extraction
	var transcriptionID, systemPrompt, finishReason sql.NullString
	var promptTokens, completionTokens, totalTokens sql.NullInt64
	var createdAt string
	if err := scanner.Scan(
		&extraction.ExtractionID,
		&transcriptionID,
		&extraction.InputText,
		&extraction.StructuredJSON,
		&extraction.SchemaJSON,
		&systemPrompt,
		&extraction.Model,
		&promptTokens,
		&completionTokens,
		&totalTokens,
		&finishReason,
		&createdAt,
	); err != nil {
		return nil, err
	}
	extraction.TranscriptionID = transcriptionID.String
	extraction.SystemPrompt = systemPrompt.String
	extraction.FinishReason = finishReason.String
	extraction.PromptTokens = int(promptTokens.Int64)
	extraction.CompletionTokens = int(completionTokens.Int64)
	extraction.TotalTokens = int(totalTokens.Int64)
	extraction.CreatedAt = parseTimestamp(createdAt)
	return &extraction, nil
}

func collectTranscriptions(rows *sql.Rows) ([]Transcription, error) {
	var transcriptions []Transcription
	for rows.Next() {
		transcription, err := scanTranscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transcription: %w", err)
		}
		transcriptions = append(transcriptions, *transcription)
	}
	return transcriptions, rows.Err()
}

func collectExtractions(rows *sql.Rows) ([]Extraction, error) {
	var extractions []Extraction
	for rows.Next() {
		extraction, err := scanExtraction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan extraction: %w", err)
		}
		extractions = append(extractions, *extraction)
	}
	return extractions, rows.Err()
}

func limitOffsetClause(limit, offset int) string {
	clause := ""
	if limit > 0 {
		clause += fmt.Sprintf(" LIMIT %d", limit)
	} else if offset > 0 {
		clause += " LIMIT -1"
	}
	if offset > 0 {
		clause += fmt.Sprintf(" OFFSET %d", offset)
	}
	return clause
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func parseTimestamp(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
