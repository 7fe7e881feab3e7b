package ingestlog_test

import (
	"context"
	"testing"

	"liftlog/internal/ingestlog"
	"liftlog/internal/testsupport"
)

func newStore(t *testing.T) *ingestlog.Store {
	t.Helper()
	store, err := ingestlog.Open(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestAudioFileRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	file := &ingestlog.AudioFile{
		FileID:        "af-1",
		Filename:      "monday-session.mp3",
		FileSize:      2048,
		FileExtension: ".mp3",
		FilePath:      "/tmp/uploads/af-1.mp3",
	}
	if err := store.AddAudioFile(ctx, file); err != nil {
		t.Fatalf("add audio file: %v", err)
	}

	got, err := store.GetAudioFile(ctx, "af-1")
	if err != nil {
		t.Fatalf("get audio file: %v", err)
	}
	if got == nil || got.Filename != "monday-session.mp3" || got.FileSize != 2048 {
		t.Fatalf("unexpected record %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("created_at not persisted")
	}

	missing, err := store.GetAudioFile(ctx, "nope")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing file, got %+v", missing)
	}
}

func TestRenameAudioFile(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.AddAudioFile(ctx, &ingestlog.AudioFile{FileID: "af-1", Filename: "old.mp3", FileExtension: ".mp3", FilePath: "/x"}); err != nil {
		t.Fatalf("add audio file: %v", err)
	}

	renamed, err := store.RenameAudioFile(ctx, "af-1", "new.mp3")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed == nil || renamed.Filename != "new.mp3" {
		t.Fatalf("unexpected record %+v", renamed)
	}

	missing, err := store.RenameAudioFile(ctx, "nope", "x.mp3")
	if err != nil {
		t.Fatalf("rename missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing file")
	}

	if _, err := store.RenameAudioFile(ctx, "af-1", "   "); err == nil {
		t.Fatal("expected error for blank filename")
	}
}

func TestTranscriptionsByFileNewestFirst(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.AddAudioFile(ctx, &ingestlog.AudioFile{FileID: "af-1", Filename: "a.mp3", FileExtension: ".mp3", FilePath: "/x"}); err != nil {
		t.Fatalf("add audio file: %v", err)
	}
	for _, id := range []string{"tr-1", "tr-2", "tr-3"} {
		if err := store.AddTranscription(ctx, &ingestlog.Transcription{
			TranscriptionID: id,
			FileID:          "af-1",
			Text:            "bench press five reps",
			Language:        "english",
			Duration:        3.5,
			Model:           "whisper-1",
		}); err != nil {
			t.Fatalf("add transcription %s: %v", id, err)
		}
	}

	transcriptions, err := store.ListTranscriptionsByFile(ctx, "af-1")
	if err != nil {
		t.Fatalf("list by file: %v", err)
	}
	if len(transcriptions) != 3 {
		t.Fatalf("expected 3 transcriptions, got %d", len(transcriptions))
	}
	for i := 1; i < len(transcriptions); i++ {
		if transcriptions[i].CreatedAt.After(transcriptions[i-1].CreatedAt) {
			t.Fatal("transcriptions not sorted newest first")
		}
	}
}

func TestListPagination(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.AddAudioFile(ctx, &ingestlog.AudioFile{FileID: "af-1", Filename: "a.mp3", FileExtension: ".mp3", FilePath: "/x"}); err != nil {
		t.Fatalf("add audio file: %v", err)
	}
	for _, id := range []string{"tr-1", "tr-2", "tr-3", "tr-4"} {
		if err := store.AddTranscription(ctx, &ingestlog.Transcription{TranscriptionID: id, FileID: "af-1", Text: "x", Model: "whisper-1"}); err != nil {
			t.Fatalf("add transcription: %v", err)
		}
	}

	page, err := store.ListTranscriptions(ctx, 2, 1)
	if err != nil {
		t.Fatalf("list transcriptions: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 transcriptions, got %d", len(page))
	}
}

func TestExtractionRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	extraction := &ingestlog.Extraction{
		ExtractionID:   "ex-1",
		InputText:      "bench press five reps at 100kg",
		StructuredJSON: `{"exercise_name":"bench press","reps":5}`,
		SchemaJSON:     `{"type":"object"}`,
		Model:          "gpt-4o-mini",
		PromptTokens:   20,
		TotalTokens:    28,
		FinishReason:   "tool_calls",
	}
	if err := store.AddExtraction(ctx, extraction); err != nil {
		t.Fatalf("add extraction: %v", err)
	}

	got, err := store.GetExtraction(ctx, "ex-1")
	if err != nil {
		t.Fatalf("get extraction: %v", err)
	}
	if got == nil || got.StructuredJSON != `{"exercise_name":"bench press","reps":5}` {
		t.Fatalf("unexpected record %+v", got)
	}
	if got.TranscriptionID != "" {
		t.Fatalf("expected empty transcription link, got %q", got.TranscriptionID)
	}
	if got.TotalTokens != 28 || got.FinishReason != "tool_calls" {
		t.Fatalf("metadata not persisted: %+v", got)
	}
}

func TestStatsAndClear(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.AddAudioFile(ctx, &ingestlog.AudioFile{FileID: "af-1", Filename: "a.mp3", FileExtension: ".mp3", FilePath: "/x"}); err != nil {
		t.Fatalf("add audio file: %v", err)
	}
	if err := store.AddTranscription(ctx, &ingestlog.Transcription{TranscriptionID: "tr-1", FileID: "af-1", Text: "x", Model: "whisper-1"}); err != nil {
		t.Fatalf("add transcription: %v", err)
	}
	if err := store.AddExtraction(ctx, &ingestlog.Extraction{ExtractionID: "ex-1", TranscriptionID: "tr-1", InputText: "x", StructuredJSON: "{}", SchemaJSON: "{}", Model: "gpt-4o-mini"}); err != nil {
		t.Fatalf("add extraction: %v", err)
	}

	stats, err := store.GetStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.AudioFiles != 1 || stats.Transcriptions != 1 || stats.Extractions != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	linked, err := store.ListExtractionsByTranscription(ctx, "tr-1")
	if err != nil {
		t.Fatalf("list by transcription: %v", err)
	}
	if len(linked) != 1 {
		t.Fatalf("expected 1 linked extraction, got %d", len(linked))
	}

	if err := store.ClearAll(ctx); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	stats, err = store.GetStats(ctx)
	if err != nil {
		t.Fatalf("stats after clear: %v", err)
	}
	if stats.AudioFiles != 0 || stats.Transcriptions != 0 || stats.Extractions != 0 {
		t.Fatalf("expected empty stats, got %+v", stats)
	}
}

func TestDeleteOperations(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.AddAudioFile(ctx, &ingestlog.AudioFile{FileID: "af-1", Filename: "a.mp3", FileExtension: ".mp3", FilePath: "/x"}); err != nil {
		t.Fatalf("add audio file: %v", err)
	}

	deleted, err := store.DeleteAudioFile(ctx, "af-1")
	if err != nil {
		t.Fatalf("delete audio file: %v", err)
	}
	if !deleted {
		t.Fatal("expected deletion")
	}

	deleted, err = store.DeleteAudioFile(ctx, "af-1")
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if deleted {
		t.Fatal("expected no-op on second delete")
	}
}
