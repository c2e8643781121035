package testing

import (
	"context"
	"sync"
	"time"

	"github.com/alexschlessinger/pollytool/llm"
	"github.com/alexschlessinger/pollytool/messages"

	"pkdindustries/toolshack/internal/core"
)

// ModelStep is one scripted model turn: a message to return or an error.
type ModelStep struct {
	Message messages.ChatMessage
	Err     error
}

// AssistantText scripts a plain assistant reply.
func AssistantText(text string) ModelStep {
	return ModelStep{Message: messages.ChatMessage{
		Role:    messages.MessageRoleAssistant,
		Content: text,
	}}
}

// AssistantToolCalls scripts an assistant turn requesting tool calls.
func AssistantToolCalls(content string, calls ...messages.ChatMessageToolCall) ModelStep {
	return ModelStep{Message: messages.ChatMessage{
		Role:      messages.MessageRoleAssistant,
		Content:   content,
		ToolCalls: calls,
	}}
}

// ModelError scripts a failed model invocation.
func ModelError(err error) ModelStep {
	return ModelStep{Err: err}
}

// MockModel implements core.Model with a scripted sequence of turns.
type MockModel struct {
	Steps []ModelStep
	Delay time.Duration // per-call delay, for timeout tests

	mu       sync.Mutex
	calls    int
	Requests []*llm.CompletionRequest // recorded for assertions
}

var _ core.Model = (*MockModel)(nil)

func NewMockModel(steps ...ModelStep) *MockModel {
	return &MockModel{Steps: steps}
}

func (m *MockModel) Invoke(ctx context.Context, req *llm.CompletionRequest) (messages.ChatMessage, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return messages.ChatMessage{}, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)

	if m.calls >= len(m.Steps) {
		return messages.ChatMessage{
			Role:    messages.MessageRoleAssistant,
			Content: "mock model script exhausted",
		}, nil
	}
	step := m.Steps[m.calls]
	m.calls++
	return step.Message, step.Err
}

// Calls reports how many times Invoke has run.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
