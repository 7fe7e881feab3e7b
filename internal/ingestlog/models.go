package ingestlog

import "time"

// AudioFile records an uploaded audio file.
type AudioFile struct {
	FileID        string    `json:"file_id"`
	Filename      string    `json:"filename"`
	FileSize      int64     `json:"file_size"`
	FileExtension string    `json:"file_extension"`
	FilePath      string    `json:"file_path"`
	CreatedAt     time.Time `json:"created_at"`
}

// Transcription records one transcription run over an uploaded file.
type Transcription struct {
	TranscriptionID string    `json:"transcription_id"`
	FileID          string    `json:"file_id"`
	Text            string    `json:"transcription_text"`
	Prompt          string    `json:"prompt,omitempty"`
	Language        string    `json:"language,omitempty"`
	Duration        float64   `json:"duration,omitempty"`
	Model           string    `json:"model"`
	CreatedAt       time.Time `json:"created_at"`
}

// Extraction records one structured data extraction.
type Extraction struct {
	ExtractionID     string    `json:"extraction_id"`
	TranscriptionID  string    `json:"transcription_id,omitempty"`
	InputText        string    `json:"input_text"`
	StructuredJSON   string    `json:"structured_data"`
	SchemaJSON       string    `json:"json_schema"`
	SystemPrompt     string    `json:"system_prompt,omitempty"`
	Model            string    `json:"model"`
	PromptTokens     int       `json:"prompt_tokens,omitempty"`
	CompletionTokens int       `json:"completion_tokens,omitempty"`
	TotalTokens      int       `json:"total_tokens,omitempty"`
	FinishReason     string    `json:"finish_reason,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Stats summarizes the stored row counts.
type Stats struct {
	AudioFiles     int `json:"audio_files"`
	Transcriptions int `json:"transcriptions"`
	Extractions    int `json:"extractions"`
}
