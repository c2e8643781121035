package testing

import (
	"context"
	"sync"

	"github.com/alexschlessinger/pollytool/tools"
	"github.com/google/jsonschema-go/jsonschema"
)

// MockTool is a scripted tool for exercising the conversation loop
type MockTool struct {
	Name   string
	Result string
	Err    error

	mu          sync.Mutex
	Invocations []map[string]any
}

var _ tools.Tool = (*MockTool)(nil)

func (t *MockTool) GetName() string {
	return t.Name
}

func (t *MockTool) GetSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "mock tool for tests",
	}
}

func (t *MockTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Invocations = append(t.Invocations, args)
	return t.Result, t.Err
}

func (t *MockTool) SetContext(any) {}

func (t *MockTool) GetType() string {
	return "native"
}

func (t *MockTool) GetSource() string {
	return "mock"
}

// InvocationCount reports how many times Execute has run.
func (t *MockTool) InvocationCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Invocations)
}
