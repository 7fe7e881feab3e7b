package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"liftlog/internal/ingestlog"
	"liftlog/internal/logging"
	"liftlog/internal/services/extract"
)

// uploadFormMemory bounds how much of a multipart body is held in memory
// before spilling to temp files.
const uploadFormMemory = 4 << 20

func (s *apiServer) handleUploadAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseMultipartForm(uploadFormMemory); err != nil {
		s.writeError(w, http.StatusBadRequest, "multipart form required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "file field required")
		return
	}
	defer file.Close()

	saved, err := s.daemon.uploads.Save(header.Filename, file)
	if err != nil {
		s.writeValidationError(w, err)
		return
	}

	record := &ingestlog.AudioFile{
		FileID:        saved.FileID,
		Filename:      saved.Filename,
		FileSize:      saved.Size,
		FileExtension: saved.Extension,
		FilePath:      saved.Path,
	}
	if err := s.daemon.ingest.AddAudioFile(r.Context(), record); err != nil {
		_ = s.daemon.uploads.Remove(saved.FileID)
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to record upload: %v", err))
		return
	}

	s.log().Info("audio file uploaded",
		logging.String("file_id", saved.FileID),
		logging.String("filename", saved.Filename),
		logging.Int("size", int(saved.Size)))

	s.writeJSON(w, http.StatusOK, map[string]any{
		"file_id":        saved.FileID,
		"filename":       saved.Filename,
		"file_size":      saved.Size,
		"file_extension": saved.Extension,
		"message":        "file uploaded successfully",
	})
}

func (s *apiServer) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseForm(); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	fileID := strings.TrimSpace(r.FormValue("file_id"))
	if fileID == "" {
		s.writeError(w, http.StatusBadRequest, "file_id required")
		return
	}
	prompt := r.FormValue("prompt")

	audio, err := s.daemon.ingest.GetAudioFile(r.Context(), fileID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if audio == nil {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("audio file %q not found", fileID))
		return
	}

	path := s.daemon.uploads.PathFor(fileID)
	if path == "" {
		path = audio.FilePath
	}

	transcription, err := s.daemon.transcriber.Transcribe(r.Context(), path, prompt)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, fmt.Sprintf("transcription failed: %v", err))
		return
	}

	logID := newLogID()
	record := &ingestlog.Transcription{
		TranscriptionID: logID,
		FileID:          fileID,
		Text:            transcription.Text,
		Prompt:          prompt,
		Language:        transcription.Language,
		Duration:        transcription.Duration,
		Model:           transcription.Model,
	}
	if err := s.daemon.ingest.AddTranscription(r.Context(), record); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to record transcription: %v", err))
		return
	}

	s.log().Info("audio transcribed",
		logging.String("file_id", fileID),
		logging.String("log_id", logID),
		logging.String("language", transcription.Language))

	s.writeJSON(w, http.StatusOK, map[string]any{
		"transcription": transcription.Text,
		"file_id":       fileID,
		"log_id":        logID,
		"metadata": map[string]any{
			"language": transcription.Language,
			"duration": transcription.Duration,
			"model":    transcription.Model,
		},
	})
}

type extractDataRequest struct {
	Text            string         `json:"text"`
	Schema          map[string]any `json:"json_schema"`
	SystemPrompt    string         `json:"system_prompt,omitempty"`
	TranscriptionID string         `json:"transcription_id,omitempty"`
}

func (s *apiServer) handleExtractData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req extractDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.daemon.extractor.Extract(r.Context(), req.Text, req.Schema, req.SystemPrompt)
	if err != nil {
		if errors.Is(err, extract.ErrInvalidInput) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusBadGateway, fmt.Sprintf("extraction failed: %v", err))
		return
	}

	structured, err := json.Marshal(result.Data)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	schemaJSON, err := json.Marshal(req.Schema)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logID := newLogID()
	record := &ingestlog.Extraction{
		ExtractionID:     logID,
		TranscriptionID:  req.TranscriptionID,
		InputText:        req.Text,
		StructuredJSON:   string(structured),
		SchemaJSON:       string(schemaJSON),
		SystemPrompt:     req.SystemPrompt,
		Model:            result.Model,
		PromptTokens:     result.Usage.PromptTokens,
		CompletionTokens: result.Usage.CompletionTokens,
		TotalTokens:      result.Usage.TotalTokens,
		FinishReason:     result.FinishReason,
	}
	if err := s.daemon.ingest.AddExtraction(r.Context(), record); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to record extraction: %v", err))
		return
	}

	s.log().Info("structured data extracted",
		logging.String("log_id", logID),
		logging.Int("total_tokens", result.Usage.TotalTokens))

	s.writeJSON(w, http.StatusOK, map[string]any{
		"structured_data": result.Data,
		"log_id":          logID,
		"metadata": map[string]any{
			"model":             result.Model,
			"finish_reason":     result.FinishReason,
			"prompt_tokens":     result.Usage.PromptTokens,
			"completion_tokens": result.Usage.CompletionTokens,
			"total_tokens":      result.Usage.TotalTokens,
		},
	})
}
