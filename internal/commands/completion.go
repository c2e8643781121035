package commands

import (
	"fmt"
	"strings"

	"pkdindustries/toolshack/internal/agent"
	"pkdindustries/toolshack/internal/core"
	"pkdindustries/toolshack/internal/irc"
)

// CompletionCommand is the default command: anything that is not a slash
// command becomes a conversation turn.
type CompletionCommand struct{}

func (c *CompletionCommand) Name() string    { return "" }
func (c *CompletionCommand) AdminOnly() bool { return false }

func (c *CompletionCommand) Execute(ctx core.ChatContextInterface) {
	CompletionResponse(ctx)
}

// CompletionResponse runs one conversation turn through the agent loop
// and delivers the answer to the channel.
func CompletionResponse(ctx core.ChatContextInterface) {
	sys := ctx.GetSystem()
	cfg := ctx.GetConfig()

	loop := agent.NewLoop(cfg, sys.GetModel(), sys.GetToolRegistry())
	loop.Store = sys.GetSessionStore()
	loop.Trail = ctx.GetTrail()
	loop.Logger = ctx.GetLogger()
	if cfg.Bot.ShowToolActions {
		loop.Notify = ctx.Action
	}

	msg := strings.Join(ctx.GetArgs(), " ")
	userText := fmt.Sprintf("(nick:%s) %s", ctx.GetSource(), msg)

	// IRC tools resolve their chat context from the run context
	runCtx := irc.InjectContext(ctx, ctx)

	result, err := loop.Run(runCtx, threadKey(ctx), userText)
	if err != nil {
		ctx.GetLogger().Errorw("completion_failed", "error", err)
		ctx.Reply(fmt.Sprintf("Error: %v", err))
		return
	}

	irc.Deliver(ctx, result.Answer)
	irc.DeliverImages(ctx, result.Images)
}

// threadKey ties a conversation to its channel, or to the sender for
// private messages.
func threadKey(ctx core.ChatContextInterface) string {
	if ctx.IsPrivate() {
		return ctx.GetSource()
	}
	return ctx.GetConfig().Server.Channel
}
