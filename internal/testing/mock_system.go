package testing

import (
	"context"
	"time"

	"github.com/alexschlessinger/pollytool/sessions"
	"github.com/alexschlessinger/pollytool/tools"

	"pkdindustries/toolshack/internal/config"
	"pkdindustries/toolshack/internal/core"
)

// MockReporter implements core.Reporter with canned output
type MockReporter struct {
	Report string
	Err    error
	Stages []string
}

func (r *MockReporter) RunReport(ctx context.Context, notify func(string)) (string, error) {
	for _, s := range r.Stages {
		if notify != nil {
			notify(s)
		}
	}
	return r.Report, r.Err
}

var _ core.Reporter = (*MockReporter)(nil)

// MockSystem implements core.System for testing
type MockSystem struct {
	ToolRegistry *tools.ToolRegistry
	SessionStore sessions.SessionStore
	Model        core.Model
	Reporter     core.Reporter
}

// NewMockSystem creates a MockSystem with sensible defaults
func NewMockSystem() *MockSystem {
	return &MockSystem{
		ToolRegistry: tools.NewToolRegistry([]tools.Tool{}),
		// no SystemPrompt: stores must not seed system messages, the
		// loop supplies the persona itself
		SessionStore: sessions.NewSyncMapSessionStore(&sessions.Metadata{
			MaxHistoryTokens: 4096,
			TTL:              time.Minute * 10,
		}),
		Model:    NewMockModel(AssistantText("Hello from mock model")),
		Reporter: &MockReporter{Report: "mock report"},
	}
}

// GetToolRegistry implements core.System
func (m *MockSystem) GetToolRegistry() *tools.ToolRegistry {
	return m.ToolRegistry
}

// GetSessionStore implements core.System
func (m *MockSystem) GetSessionStore() sessions.SessionStore {
	return m.SessionStore
}

// GetModel implements core.System
func (m *MockSystem) GetModel() core.Model {
	return m.Model
}

// GetReporter implements core.System
func (m *MockSystem) GetReporter() core.Reporter {
	return m.Reporter
}

// UpdateModel implements core.System
func (m *MockSystem) UpdateModel(cfg config.APIConfig) error {
	// No-op for tests
	return nil
}

// Verify MockSystem implements core.System
var _ core.System = (*MockSystem)(nil)
