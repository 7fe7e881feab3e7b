package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

func (s *apiServer) handleDB(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/db/")

	switch {
	case rest == "stats":
		s.handleDBStats(w, r)
	case rest == "clear":
		s.handleDBClear(w, r)
	case rest == "audio-files" || strings.HasPrefix(rest, "audio-files/"):
		s.handleDBAudioFiles(w, r, strings.TrimPrefix(rest, "audio-files"))
	case rest == "transcriptions" || strings.HasPrefix(rest, "transcriptions/"):
		s.handleDBTranscriptions(w, r, strings.TrimPrefix(rest, "transcriptions"))
	case rest == "extractions" || strings.HasPrefix(rest, "extractions/"):
		s.handleDBExtractions(w, r, strings.TrimPrefix(rest, "extractions"))
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

// listParams parses limit and offset query parameters, reporting the error
// itself. The second return is false when the request was already answered.
func (s *apiServer) listParams(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	limit = defaultListLimit
	if value := r.URL.Query().Get("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 || parsed > maxListLimit {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxListLimit))
			return 0, 0, false
		}
		limit = parsed
	}
	if value := r.URL.Query().Get("offset"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "offset must be zero or greater")
			return 0, 0, false
		}
		offset = parsed
	}
	return limit, offset, true
}

func (s *apiServer) handleDBAudioFiles(w http.ResponseWriter, r *http.Request, rest string) {
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		limit, offset, ok := s.listParams(w, r)
		if !ok {
			return
		}
		files, err := s.daemon.ingest.ListAudioFiles(r.Context(), limit, offset)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{
			"audio_files": files,
			"count":       len(files),
			"limit":       limit,
			"offset":      offset,
		})
		return
	}

	fileID, action, _ := strings.Cut(rest, "/")

	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			file, err := s.daemon.ingest.GetAudioFile(r.Context(), fileID)
			if err != nil {
				s.writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if file == nil {
				s.writeError(w, http.StatusNotFound, fmt.Sprintf("audio file %q not found", fileID))
				return
			}
			s.writeJSON(w, http.StatusOK, file)
		case http.MethodDelete:
			deleted, err := s.daemon.ingest.DeleteAudioFile(r.Context(), fileID)
			if err != nil {
				s.writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if !deleted {
				s.writeError(w, http.StatusNotFound, fmt.Sprintf("audio file %q not found", fileID))
				return
			}
			_ = s.daemon.uploads.Remove(fileID)
			s.writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "file_id": fileID})
		default:
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case "rename":
		if r.Method != http.MethodPatch {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var body struct {
			Filename string `json:"filename"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(body.Filename) == "" {
			s.writeError(w, http.StatusBadRequest, "filename required")
			return
		}
		file, err := s.daemon.ingest.RenameAudioFile(r.Context(), fileID, body.Filename)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if file == nil {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("audio file %q not found", fileID))
			return
		}
		s.writeJSON(w, http.StatusOK, file)
	case "transcriptions":
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		transcriptions, err := s.daemon.ingest.ListTranscriptionsByFile(r.Context(), fileID)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{
			"file_id":        fileID,
			"transcriptions": transcriptions,
			"count":          len(transcriptions),
		})
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *apiServer) handleDBTranscriptions(w http.ResponseWriter, r *http.Request, rest string) {
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		limit, offset, ok := s.listParams(w, r)
		if !ok {
			return
		}
		transcriptions, err := s.daemon.ingest.ListTranscriptions(r.Context(), limit, offset)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{
			"transcriptions": transcriptions,
			"count":          len(transcriptions),
			"limit":          limit,
			"offset":         offset,
		})
		return
	}

	transcriptionID, action, _ := strings.Cut(rest, "/")

	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			transcription, err := s.daemon.ingest.GetTranscription(r.Context(), transcriptionID)
			if err != nil {
				s.writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if transcription == nil {
				s.writeError(w, http.StatusNotFound, fmt.Sprintf("transcription %q not found", transcriptionID))
				return
			}
			s.writeJSON(w, http.StatusOK, transcription)
		case http.MethodDelete:
			deleted, err := s.daemon.ingest.DeleteTranscription(r.Context(), transcriptionID)
			if err != nil {
				s.writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if !deleted {
				s.writeError(w, http.StatusNotFound, fmt.Sprintf("transcription %q not found", transcriptionID))
				return
			}
			s.writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "transcription_id": transcriptionID})
		default:
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case "extractions":
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		extractions, err := s.daemon.ingest.ListExtractionsByTranscription(r.Context(), transcriptionID)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{
			"transcription_id": transcriptionID,
			"extractions":      extractions,
			"count":            len(extractions),
		})
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *apiServer) handleDBExtractions(w http.ResponseWriter, r *http.Request, rest string) {
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		limit, offset, ok := s.listParams(w, r)
		if !ok {
			return
		}
		extractions, err := s.daemon.ingest.ListExtractions(r.Context(), limit, offset)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{
			"extractions": extractions,
			"count":       len(extractions),
			"limit":       limit,
			"offset":      offset,
		})
		return
	}

	extractionID, action, _ := strings.Cut(rest, "/")
	if action != "" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		extraction, err := s.daemon.ingest.GetExtraction(r.Context(), extractionID)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if extraction == nil {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("extraction %q not found", extractionID))
			return
		}
		s.writeJSON(w, http.StatusOK, extraction)
	case http.MethodDelete:
		deleted, err := s.daemon.ingest.DeleteExtraction(r.Context(), extractionID)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !deleted {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("extraction %q not found", extractionID))
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "extraction_id": extractionID})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleDBStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	stats, err := s.daemon.ingest.GetStats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *apiServer) handleDBClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.daemon.ingest.ClearAll(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log().Info("ingestion log cleared")
	s.writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}
