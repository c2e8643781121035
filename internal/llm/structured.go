package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alexschlessinger/pollytool/messages"
	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"
)

// StructuredAttempts bounds retries on malformed structured output.
const StructuredAttempts = 5

// Invoker is the minimal completion capability InvokeStructured needs.
type Invoker interface {
	Invoke(ctx context.Context, req *CompletionRequest) (messages.ChatMessage, error)
}

// InvokeStructured asks the model for a single JSON object matching schema
// and unmarshals it into out. Malformed responses are retried up to
// StructuredAttempts times; the last failure is returned.
func InvokeStructured(ctx context.Context, model Invoker, req *CompletionRequest, schema *jsonschema.Schema, out any) error {
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	instruction := "Respond with exactly one JSON object conforming to this JSON schema. " +
		"No prose, no markdown fences.\n" + string(schemaJSON)

	base := make([]messages.ChatMessage, len(req.Messages))
	copy(base, req.Messages)

	var lastErr error
	for attempt := 1; attempt <= StructuredAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		attemptReq := *req
		attemptReq.Messages = append(append([]messages.ChatMessage{}, base...), messages.ChatMessage{
			Role:    messages.MessageRoleUser,
			Content: instruction,
		})

		resp, err := model.Invoke(ctx, &attemptReq)
		if err != nil {
			lastErr = err
			zap.S().Debugw("structured_invoke_failed", "attempt", attempt, "error", err)
			continue
		}

		if err := json.Unmarshal([]byte(extractJSON(resp.Content)), out); err != nil {
			lastErr = err
			zap.S().Debugw("structured_parse_failed", "attempt", attempt, "error", err)
			continue
		}
		return nil
	}
	return fmt.Errorf("structured output failed after %d attempts: %w", StructuredAttempts, lastErr)
}

// extractJSON digs the JSON object out of a response that may be wrapped
// in code fences or surrounded by prose.
func extractJSON(content string) string {
	s := strings.TrimSpace(content)
	if fenced, ok := strings.CutPrefix(s, "```json"); ok {
		s = fenced
	} else if fenced, ok := strings.CutPrefix(s, "```"); ok {
		s = fenced
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
