package llm

import (
	"context"
	"errors"

	"github.com/alexschlessinger/pollytool/llm"
	"github.com/alexschlessinger/pollytool/messages"

	"pkdindustries/toolshack/internal/config"
)

// PollyModel wraps pollytool's MultiPass for full-message completions.
// It drains the event stream and hands back the final assistant message,
// which is what the conversation loop and the report pipeline want.
type PollyModel struct {
	client    *llm.MultiPass
	ollamaURL string
}

// NewPollyModel creates a pollytool-based model client
func NewPollyModel(api config.APIConfig) *PollyModel {
	// Map our API keys to pollytool's expected format
	apiKeys := map[string]string{
		"openai":    api.OpenAIKey,
		"anthropic": api.AnthropicKey,
		"gemini":    api.GeminiKey,
		"ollama":    api.OllamaKey,
	}

	return &PollyModel{
		client:    llm.NewMultiPass(apiKeys),
		ollamaURL: api.OllamaURL,
	}
}

// Invoke runs one completion and blocks until the model finishes or ctx ends.
func (p *PollyModel) Invoke(ctx context.Context, req *CompletionRequest) (messages.ChatMessage, error) {
	if p.ollamaURL != "" && req.BaseURL == "" {
		req.BaseURL = p.ollamaURL
	}

	eventChan := p.client.ChatCompletionStream(ctx, req, &llm.SimpleProcessor{})
	for event := range eventChan {
		switch event.Type {
		case messages.EventTypeComplete:
			if event.Message != nil {
				return *event.Message, nil
			}
			return messages.ChatMessage{}, errors.New("completion ended without a message")
		case messages.EventTypeError:
			if event.Error != nil {
				return messages.ChatMessage{}, event.Error
			}
			return messages.ChatMessage{}, errors.New("completion stream error")
		}
	}
	if err := ctx.Err(); err != nil {
		return messages.ChatMessage{}, err
	}
	return messages.ChatMessage{}, errors.New("completion stream closed early")
}
