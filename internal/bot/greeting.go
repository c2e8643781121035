package bot

import (
	"pkdindustries/toolshack/internal/agent"
	"pkdindustries/toolshack/internal/core"
	"pkdindustries/toolshack/internal/irc"
)

// Greeting runs the configured greeting prompt through a one-shot
// conversation when the bot joins a channel. No thread ID, so nothing
// lands in the session store.
func Greeting(ctx core.ChatContextInterface) {
	sys := ctx.GetSystem()
	loop := agent.NewLoop(ctx.GetConfig(), sys.GetModel(), sys.GetToolRegistry())
	loop.Logger = ctx.GetLogger()

	runCtx := irc.InjectContext(ctx, ctx)
	result, err := loop.Run(runCtx, "", ctx.GetConfig().Bot.Greeting)
	if err != nil {
		ctx.GetLogger().Warnw("greeting_failed", "error", err)
		return
	}
	irc.Deliver(ctx, result.Answer)
}
