package commands

import (
	"fmt"
	"strings"

	"pkdindustries/toolshack/internal/core"
)

// SetCommand writes a runtime configuration value. Changing any model
// credential rebuilds the client, and every change clears the session
// so stale context cannot leak across configurations.
type SetCommand struct{}

func (c *SetCommand) Name() string    { return "/set" }
func (c *SetCommand) AdminOnly() bool { return true }

func (c *SetCommand) Execute(ctx core.ChatContextInterface) {
	args := ctx.GetArgs()
	if len(args) < 3 {
		ctx.Reply(fmt.Sprintf("Usage: /set <key> <value>. Available keys: %s", strings.Join(getConfigKeys(), ", ")))
		return
	}

	key := args[1]
	value := strings.Join(args[2:], " ")
	cfg := ctx.GetConfig()

	ctx.GetLogger().Debugw("config_change_requested", "param", key, "value", value)

	field, ok := configFields[key]
	if !ok {
		ctx.Reply(fmt.Sprintf("Unknown key. Available keys: %s", strings.Join(getConfigKeys(), ", ")))
		return
	}

	if err := field.setter(cfg, value); err != nil {
		ctx.Reply(err.Error())
		return
	}

	if strings.Contains(key, "key") || strings.Contains(key, "url") || strings.Contains(key, "model") {
		if err := ctx.GetSystem().UpdateModel(*cfg.API); err != nil {
			ctx.GetLogger().Errorw("model_update_failed", "error", err)
			ctx.Reply("Configuration saved, but failed to update model client")
		}
	}

	ctx.Reply(fmt.Sprintf("%s set to: %s", key, field.getter(cfg)))
	ctx.GetSession().Clear()
}
