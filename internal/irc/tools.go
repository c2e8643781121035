package irc

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexschlessinger/pollytool/tools"
	"github.com/google/jsonschema-go/jsonschema"

	"pkdindustries/toolshack/internal/core"
)

type contextKey string

const kContextKey contextKey = "irc_context"

// GetIRCContext retrieves the chat context injected for IRC tools.
func GetIRCContext(ctx context.Context) (core.ChatContextInterface, error) {
	if chatCtx, ok := ctx.Value(kContextKey).(core.ChatContextInterface); ok {
		return chatCtx, nil
	}
	return nil, fmt.Errorf("no IRC context available")
}

// InjectContext stores the IRC context for tools to retrieve. This must
// be used (rather than direct context.WithValue) to ensure the correct
// key type is used.
func InjectContext(ctx context.Context, chatCtx core.ChatContextInterface) context.Context {
	return context.WithValue(ctx, kContextKey, chatCtx)
}

// BaseIRCTool provides common functionality for all IRC tools
type BaseIRCTool struct{}

func (t *BaseIRCTool) SetContext(ctx any) {}
func (t *BaseIRCTool) GetType() string    { return "native" }
func (t *BaseIRCTool) GetSource() string  { return "builtin" }

// RegisterIRCTools registers IRC tools as native tools with polly's registry
func RegisterIRCTools(registry *tools.ToolRegistry) {
	registry.RegisterNative("irc_action", func() tools.Tool {
		return &IrcActionTool{}
	})
	registry.RegisterNative("irc_whois", func() tools.Tool {
		return &IrcWhoisTool{}
	})
	registry.RegisterNative("irc_names", func() tools.Tool {
		return &IrcNamesTool{}
	})
	registry.RegisterNative("irc_join", func() tools.Tool {
		return &IrcJoinTool{}
	})
}

// IrcActionTool sends an action message to the channel
type IrcActionTool struct {
	BaseIRCTool
}

func (t *IrcActionTool) GetName() string {
	return "irc_action"
}

func (t *IrcActionTool) GetSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:       "irc_action",
		Description: "Send an action (/me) message to the IRC channel",
		Type:        "object",
		Properties: map[string]*jsonschema.Schema{
			"message": {
				Type:        "string",
				Description: "The action message to send",
			},
		},
		Required: []string{"message"},
	}
}

func (t *IrcActionTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	chatCtx, err := GetIRCContext(ctx)
	if err != nil {
		return "", err
	}

	message, ok := args["message"].(string)
	if !ok {
		return "", fmt.Errorf("message must be a string")
	}

	chatCtx.Action(message)
	chatCtx.GetLogger().Infow("IRC ACTION: Sent action", "message", message)
	return fmt.Sprintf("* %s", message), nil
}

// IrcWhoisTool looks up a user from cached channel state
type IrcWhoisTool struct {
	BaseIRCTool
}

func (t *IrcWhoisTool) GetName() string {
	return "irc_whois"
}

func (t *IrcWhoisTool) GetSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:       "irc_whois",
		Description: "Look up a user's ident and host (uses cached state, instant response)",
		Type:        "object",
		Properties: map[string]*jsonschema.Schema{
			"nick": {
				Type:        "string",
				Description: "The nickname to look up",
			},
		},
		Required: []string{"nick"},
	}
}

func (t *IrcWhoisTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	chatCtx, err := GetIRCContext(ctx)
	if err != nil {
		return "", err
	}

	nick, ok := args["nick"].(string)
	if !ok {
		return "", fmt.Errorf("nick must be a string")
	}

	ident, host, found := chatCtx.LookupUser(nick)
	if !found {
		return fmt.Sprintf("User %s not found in cached state", nick), nil
	}

	chatCtx.GetLogger().Infow("IRC WHOIS result", "nick", nick)
	return fmt.Sprintf("User: %s\nHostmask: %s!%s@%s", nick, nick, ident, host), nil
}

// IrcNamesTool lists users in the configured channel
type IrcNamesTool struct {
	BaseIRCTool
}

func (t *IrcNamesTool) GetName() string {
	return "irc_names"
}

func (t *IrcNamesTool) GetSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:       "irc_names",
		Description: "List all users currently in the IRC channel (uses cached state, instant response)",
		Type:        "object",
		Properties:  map[string]*jsonschema.Schema{},
		Required:    []string{},
	}
}

func (t *IrcNamesTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	chatCtx, err := GetIRCContext(ctx)
	if err != nil {
		return "", err
	}

	channel := chatCtx.GetConfig().Server.Channel
	ch := chatCtx.LookupChannel(channel)
	if ch == nil {
		return fmt.Sprintf("Channel %s not found in state (not joined yet?)", channel), nil
	}
	if len(ch.UserList) == 0 {
		return fmt.Sprintf("No users found in %s", channel), nil
	}

	chatCtx.GetLogger().Infow("IRC NAMES: List users", "channel", channel, "count", len(ch.UserList))
	return fmt.Sprintf("Users in %s (%d): %s", channel, len(ch.UserList), strings.Join(ch.UserList, ", ")), nil
}

// IrcJoinTool joins another channel. Admin only.
type IrcJoinTool struct {
	BaseIRCTool
}

func (t *IrcJoinTool) GetName() string {
	return "irc_join"
}

func (t *IrcJoinTool) GetSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:       "irc_join",
		Description: "Join an IRC channel (admin only)",
		Type:        "object",
		Properties: map[string]*jsonschema.Schema{
			"channel": {
				Type:        "string",
				Description: "The channel to join, including the # prefix",
			},
		},
		Required: []string{"channel"},
	}
}

func (t *IrcJoinTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	chatCtx, err := GetIRCContext(ctx)
	if err != nil {
		return "", err
	}
	if !chatCtx.IsAdmin() {
		return "You are not authorized to use this tool", nil
	}

	channel, ok := args["channel"].(string)
	if !ok {
		return "", fmt.Errorf("channel must be a string")
	}

	chatCtx.Join(channel)
	chatCtx.GetLogger().Infow("IRC JOIN: Joined channel", "channel", channel)
	return fmt.Sprintf("Joined %s", channel), nil
}
