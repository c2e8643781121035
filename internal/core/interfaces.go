package core

import (
	"context"

	"github.com/alexschlessinger/pollytool/llm"
	"github.com/alexschlessinger/pollytool/messages"
	"github.com/alexschlessinger/pollytool/sessions"
	"github.com/alexschlessinger/pollytool/tools"
	"github.com/lrstanley/girc"
	"go.uber.org/zap"

	"pkdindustries/toolshack/internal/config"
)

type Event interface {
	IsAddressed() bool
	IsAdmin() bool
	Valid() bool
	IsPrivate() bool
	GetCommand() string
	GetSource() string
	GetArgs() []string
}

type Responder interface {
	Reply(string)
	Action(string)
}

type Controller interface {
	Join(string) bool
	Nick(string) bool
	LookupUser(string) (string, string, bool)
	LookupChannel(string) *girc.Channel
	GetClient() *girc.Client
}

type Runtime interface {
	GetSession() sessions.Session
	GetConfig() *config.Configuration
	GetSystem() System
	GetLogger() *zap.SugaredLogger
	GetTrail() *StatusTrail
}

// ChatContextInterface provides all context needed for handling one request
type ChatContextInterface interface {
	context.Context
	Event
	Responder
	Controller
	Runtime
}

// Model is the non-streaming completion capability. Implementations return
// the full assistant message or an error; they never stream.
type Model interface {
	Invoke(ctx context.Context, req *llm.CompletionRequest) (messages.ChatMessage, error)
}

// Reporter runs the cost-analysis pipeline and returns the report markdown.
// notify receives stage labels as the pipeline advances.
type Reporter interface {
	RunReport(ctx context.Context, notify func(string)) (string, error)
}

type System interface {
	GetToolRegistry() *tools.ToolRegistry
	GetSessionStore() sessions.SessionStore
	GetModel() Model
	GetReporter() Reporter
	UpdateModel(config.APIConfig) error
}
