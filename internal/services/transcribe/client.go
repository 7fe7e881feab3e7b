// Package transcribe wraps the Whisper-style audio transcription API.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultHTTPTimeout = 120 * time.Second

// Config captures the runtime settings for the transcription API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client uploads audio files for transcription.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a transcription client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://api.openai.com/v1/audio/transcriptions"
	}
	if client.cfg.Model == "" {
		client.cfg.Model = "whisper-1"
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Transcription is the verbose transcription payload returned by the API.
type Transcription struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Model    string  `json:"-"`
}

// Transcribe uploads the audio file at path and returns its transcription.
// The optional prompt guides the model toward expected vocabulary.
func (c *Client) Transcribe(ctx context.Context, path, prompt string) (Transcription, error) {
	var empty Transcription
	if strings.TrimSpace(path) == "" {
		return empty, errors.New("transcribe: audio path required")
	}
	if c.cfg.APIKey == "" {
		return empty, errors.New("transcribe: api key required")
	}

	file, err := os.Open(path)
	if err != nil {
		return empty, fmt.Errorf("transcribe: open audio: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return empty, fmt.Errorf("transcribe: build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return empty, fmt.Errorf("transcribe: copy audio: %w", err)
	}
	if err := writer.WriteField("model", c.cfg.Model); err != nil {
		return empty, fmt.Errorf("transcribe: build form: %w", err)
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return empty, fmt.Errorf("transcribe: build form: %w", err)
	}
	if prompt = strings.TrimSpace(prompt); prompt != "" {
		if err := writer.WriteField("prompt", prompt); err != nil {
			return empty, fmt.Errorf("transcribe: build form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return empty, fmt.Errorf("transcribe: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, &body)
	if err != nil {
		return empty, fmt.Errorf("transcribe: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("transcribe: http error: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("transcribe: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return empty, fmt.Errorf("transcribe: http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed Transcription
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return empty, fmt.Errorf("transcribe: decode response: %w", err)
	}
	if parsed.Language == "" {
		parsed.Language = "unknown"
	}
	parsed.Model = c.cfg.Model
	return parsed, nil
}
