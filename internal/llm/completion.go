package llm

import (
	"github.com/alexschlessinger/pollytool/llm"
	"github.com/alexschlessinger/pollytool/messages"
	"github.com/alexschlessinger/pollytool/tools"

	"pkdindustries/toolshack/internal/config"
)

type CompletionRequest = llm.CompletionRequest

// NewCompletionRequest binds the configured model parameters to one
// transcript and tool set.
func NewCompletionRequest(cfg *config.Configuration, history []messages.ChatMessage, toolset []tools.Tool) *CompletionRequest {
	req := &CompletionRequest{
		Model:       cfg.Model.Model,
		MaxTokens:   cfg.Model.MaxTokens,
		Temperature: cfg.Model.Temperature,
		BaseURL:     cfg.API.OpenAIURL,
		Timeout:     cfg.API.Timeout,
		Messages:    history,
		Tools:       toolset,
	}
	if cfg.Model.Thinking {
		req.ThinkingEffort = "medium"
	}
	return req
}
