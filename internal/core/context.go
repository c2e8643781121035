package core

import (
	"context"
	"slices"
	"strings"

	"github.com/alexschlessinger/pollytool/sessions"
	"github.com/google/uuid"
	"github.com/lrstanley/girc"
	"go.uber.org/zap"

	"pkdindustries/toolshack/internal/config"
)

// ChatContext is the per-request context handed to commands. It wraps
// a deadline context with the IRC event, a session keyed by channel or
// nick, a request-scoped logger, and the status trail.
type ChatContext struct {
	context.Context
	Sys       System
	Session   sessions.Session
	Config    *config.Configuration
	client    *girc.Client
	event     *girc.Event
	args      []string
	logger    *zap.SugaredLogger
	trail     *StatusTrail
	requestID string
}

var _ ChatContextInterface = (*ChatContext)(nil)

func NewChatContext(parent context.Context, cfg *config.Configuration, system System, client *girc.Client, e *girc.Event) (ChatContextInterface, context.CancelFunc) {
	timed, cancel := context.WithTimeout(parent, cfg.API.Timeout)

	if e.Source == nil {
		e.Source = &girc.Source{Name: cfg.Server.Channel}
	}

	requestID := uuid.NewString()[:8]
	ctx := ChatContext{
		Context:   timed,
		Config:    cfg,
		Sys:       system,
		client:    client,
		event:     e,
		args:      strings.Fields(e.Last()),
		trail:     NewStatusTrail(),
		requestID: requestID,
		logger: zap.S().With(
			"request_id", requestID,
			"channel", e.Params[0],
			"source", e.Source.Name,
		),
	}

	// Strip the leading "botnick:" when addressed so args start at the
	// command.
	if ctx.IsAddressed() {
		ctx.args = ctx.args[1:]
	}

	// Public messages share one session per channel; direct messages
	// get one per nick.
	key := e.Params[0]
	if !girc.IsValidChannel(key) {
		key = e.Source.Name
	}
	session, err := system.GetSessionStore().Get(key)
	if err != nil {
		zap.S().Fatalw("Failed to get session for key", "key", key, "error", err)
	}
	ctx.Session = session

	return ctx, cancel
}

func (c ChatContext) GetSystem() System                { return c.Sys }
func (c ChatContext) GetConfig() *config.Configuration { return c.Config }
func (c ChatContext) GetLogger() *zap.SugaredLogger    { return c.logger }
func (c ChatContext) GetTrail() *StatusTrail           { return c.trail }
func (c ChatContext) GetArgs() []string                { return c.args }
func (c ChatContext) GetSession() sessions.Session     { return c.Session }
func (c ChatContext) GetClient() *girc.Client          { return c.client }
func (c ChatContext) GetSource() string                { return c.event.Source.Name }

func (c ChatContext) IsAddressed() bool {
	return strings.HasPrefix(c.event.Last(), c.client.GetNick())
}

// Valid reports whether this event should be handled at all: addressed
// to us, or addressed mode is off, or it arrived in a direct message,
// and it carries at least one token.
func (c ChatContext) Valid() bool {
	return (c.IsAddressed() || !c.Config.Bot.Addressed || c.IsPrivate()) && len(c.args) > 0
}

func (c ChatContext) IsPrivate() bool {
	return !strings.HasPrefix(c.event.Params[0], "#")
}

// IsAdmin matches the sender's full hostmask against the configured
// admin list. An empty list grants everyone admin.
func (c ChatContext) IsAdmin() bool {
	if len(c.Config.Bot.Admins) == 0 {
		c.logger.Warn("All hostmasks are admin; please configure admins")
		return true
	}
	hostmask := c.event.Source.String()
	if slices.Contains(c.Config.Bot.Admins, hostmask) {
		c.logger.Debugw("User is admin", "hostmask", hostmask)
		return true
	}
	return false
}

func (c ChatContext) GetCommand() string {
	return strings.ToLower(c.args[0])
}

func (c ChatContext) Reply(message string) {
	c.client.Cmd.Reply(*c.event, message)
}

func (c ChatContext) Action(message string) {
	c.client.Cmd.Action(c.event.Params[0], message)
}

func (c ChatContext) Nick(nickname string) bool {
	c.client.Cmd.Nick(nickname)
	return true
}

func (c ChatContext) Join(channel string) bool {
	c.client.Cmd.Join(channel)
	return true
}

func (c ChatContext) LookupUser(nick string) (string, string, bool) {
	user := c.client.LookupUser(nick)
	if user == nil {
		return "", "", false
	}
	return user.Ident, user.Host, true
}

func (c ChatContext) LookupChannel(channel string) *girc.Channel {
	return c.client.LookupChannel(channel)
}
