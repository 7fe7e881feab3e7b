// Package extract turns free-form transcription text into structured data
// by forcing a schema-bound tool call against the chat model.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"liftlog/internal/services/llm"
)

// DefaultSystemPrompt guides extraction when the caller does not supply one.
const DefaultSystemPrompt = "Extract structured information from the provided text according to the given schema. " +
	"Be accurate and only include information explicitly stated in the text. " +
	"If a field's value is not found, use null."

const (
	toolName        = "extract_data"
	toolDescription = "Extract structured data from text"
)

// ErrInvalidInput marks extraction requests rejected before any model call.
var ErrInvalidInput = errors.New("invalid extraction input")

// Completer is the slice of the llm client extraction needs.
type Completer interface {
	CallFunction(ctx context.Context, systemPrompt, userPrompt, name, description string, parameters json.RawMessage) (llm.FunctionResult, error)
}

// Service extracts structured data from text.
type Service struct {
	client Completer
	model  string
}

// NewService constructs the extraction service. The model name is recorded
// in results for audit purposes.
func NewService(client Completer, model string) *Service {
	return &Service{client: client, model: strings.TrimSpace(model)}
}

// Result is a completed extraction.
type Result struct {
	Data         map[string]any `json:"structured_data"`
	Model        string         `json:"model"`
	FinishReason string         `json:"finish_reason"`
	Usage        llm.Usage      `json:"usage"`
}

// Extract runs a schema-driven extraction over text. The schema must be a
// JSON schema object with a top-level "type" field.
func (s *Service) Extract(ctx context.Context, text string, schema map[string]any, systemPrompt string) (Result, error) {
	var empty Result
	if strings.TrimSpace(text) == "" {
		return empty, fmt.Errorf("%w: text required", ErrInvalidInput)
	}
	if len(schema) == 0 {
		return empty, fmt.Errorf("%w: schema required", ErrInvalidInput)
	}
	if _, ok := schema["type"]; !ok {
		return empty, fmt.Errorf("%w: schema must include a 'type' field", ErrInvalidInput)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt
	}

	parameters, err := json.Marshal(schema)
	if err != nil {
		return empty, fmt.Errorf("extract: encode schema: %w", err)
	}

	call, err := s.client.CallFunction(ctx, systemPrompt, text, toolName, toolDescription, parameters)
	if err != nil {
		return empty, fmt.Errorf("extract: %w", err)
	}

	data := map[string]any{}
	if err := llm.DecodeLLMJSON(call.Arguments, &data); err != nil {
		return empty, fmt.Errorf("extract: parse arguments: %w", err)
	}

	return Result{
		Data:         data,
		Model:        s.model,
		FinishReason: call.FinishReason,
		Usage:        call.Usage,
	}, nil
}
