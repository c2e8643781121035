package testing

import (
	"context"
	"strings"

	"github.com/alexschlessinger/pollytool/sessions"
	"github.com/lrstanley/girc"
	"go.uber.org/zap"

	"pkdindustries/toolshack/internal/config"
	"pkdindustries/toolshack/internal/core"
)

// MockChatContext is a scriptable core.ChatContextInterface. Flag
// fields configure what the accessors report; the slices record what
// the code under test sent back.
type MockChatContext struct {
	context.Context

	Addressed bool
	Admin     bool
	Private   bool
	ValidFlag bool
	Command   string
	Source    string
	Args      []string

	Replies   []string
	Actions   []string
	JoinCalls []string
	NickCalls []string

	Users    map[string]UserInfo
	Channels map[string]*girc.Channel

	session sessions.Session
	cfg     *config.Configuration
	sys     core.System
	logger  *zap.SugaredLogger
	trail   *core.StatusTrail
	client  *girc.Client
}

// UserInfo backs LookupUser responses.
type UserInfo struct {
	Ident string
	Host  string
}

var _ core.ChatContextInterface = (*MockChatContext)(nil)

func NewMockContext() *MockChatContext {
	return &MockChatContext{
		Context:   context.Background(),
		ValidFlag: true,
		Addressed: true,
		Source:    "testuser",
		Args:      []string{},
		Replies:   []string{},
		Actions:   []string{},
		cfg:       DefaultTestConfig(),
		logger:    zap.NewNop().Sugar(),
		trail:     core.NewStatusTrail(),
		client:    NewMockIRCClient(),
		Users:     make(map[string]UserInfo),
		Channels:  make(map[string]*girc.Channel),
	}
}

// Builder setters for fluent test setup.

func (m *MockChatContext) WithContext(ctx context.Context) *MockChatContext {
	m.Context = ctx
	return m
}

func (m *MockChatContext) WithAdmin(admin bool) *MockChatContext {
	m.Admin = admin
	return m
}

func (m *MockChatContext) WithAddressed(addressed bool) *MockChatContext {
	m.Addressed = addressed
	return m
}

func (m *MockChatContext) WithPrivate(private bool) *MockChatContext {
	m.Private = private
	return m
}

func (m *MockChatContext) WithValid(valid bool) *MockChatContext {
	m.ValidFlag = valid
	return m
}

// WithArgs sets the parsed arguments and derives the command from the
// first one, matching what the real context does.
func (m *MockChatContext) WithArgs(args ...string) *MockChatContext {
	m.Args = args
	if len(args) > 0 {
		m.Command = strings.ToLower(args[0])
	}
	return m
}

func (m *MockChatContext) WithSource(source string) *MockChatContext {
	m.Source = source
	return m
}

func (m *MockChatContext) WithConfig(cfg *config.Configuration) *MockChatContext {
	m.cfg = cfg
	return m
}

func (m *MockChatContext) WithSystem(sys core.System) *MockChatContext {
	m.sys = sys
	return m
}

func (m *MockChatContext) WithSession(session sessions.Session) *MockChatContext {
	m.session = session
	return m
}

func (m *MockChatContext) WithLogger(logger *zap.SugaredLogger) *MockChatContext {
	m.logger = logger
	return m
}

func (m *MockChatContext) WithUser(nick, ident, host string) *MockChatContext {
	m.Users[nick] = UserInfo{Ident: ident, Host: host}
	return m
}

// Event accessors.

func (m *MockChatContext) IsAddressed() bool   { return m.Addressed }
func (m *MockChatContext) IsAdmin() bool       { return m.Admin }
func (m *MockChatContext) Valid() bool         { return m.ValidFlag }
func (m *MockChatContext) IsPrivate() bool     { return m.Private }
func (m *MockChatContext) GetCommand() string  { return m.Command }
func (m *MockChatContext) GetSource() string   { return m.Source }
func (m *MockChatContext) GetArgs() []string   { return m.Args }

// Responder and controller methods record their calls.

func (m *MockChatContext) Reply(msg string) {
	m.Replies = append(m.Replies, msg)
}

func (m *MockChatContext) Action(msg string) {
	m.Actions = append(m.Actions, msg)
}

func (m *MockChatContext) Join(channel string) bool {
	m.JoinCalls = append(m.JoinCalls, channel)
	return true
}

func (m *MockChatContext) Nick(nickname string) bool {
	m.NickCalls = append(m.NickCalls, nickname)
	return true
}

func (m *MockChatContext) LookupUser(nick string) (string, string, bool) {
	info, ok := m.Users[nick]
	return info.Ident, info.Host, ok
}

func (m *MockChatContext) LookupChannel(channel string) *girc.Channel {
	return m.Channels[channel]
}

func (m *MockChatContext) GetClient() *girc.Client { return m.client }

// Runtime accessors.

// GetSession returns the injected session, or pulls one from the
// system's store so session-dependent commands work out of the box.
func (m *MockChatContext) GetSession() sessions.Session {
	if m.session != nil {
		return m.session
	}
	if m.sys != nil {
		sess, _ := m.sys.GetSessionStore().Get("test")
		return sess
	}
	return nil
}

func (m *MockChatContext) GetConfig() *config.Configuration { return m.cfg }
func (m *MockChatContext) GetSystem() core.System           { return m.sys }
func (m *MockChatContext) GetLogger() *zap.SugaredLogger    { return m.logger }
func (m *MockChatContext) GetTrail() *core.StatusTrail      { return m.trail }

// Assertion helpers.

// HasReply reports whether any recorded reply contains substring.
func (m *MockChatContext) HasReply(substring string) bool {
	for _, r := range m.Replies {
		if strings.Contains(r, substring) {
			return true
		}
	}
	return false
}

func (m *MockChatContext) LastReply() string {
	if len(m.Replies) == 0 {
		return ""
	}
	return m.Replies[len(m.Replies)-1]
}

func (m *MockChatContext) ReplyCount() int { return len(m.Replies) }
