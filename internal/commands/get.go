package commands

import (
	"fmt"
	"strings"

	"pkdindustries/toolshack/internal/core"
)

// GetCommand reads a runtime configuration value by key.
type GetCommand struct{}

func (c *GetCommand) Name() string    { return "/get" }
func (c *GetCommand) AdminOnly() bool { return false }

func (c *GetCommand) Execute(ctx core.ChatContextInterface) {
	args := ctx.GetArgs()
	if len(args) < 2 {
		ctx.Reply(fmt.Sprintf("Usage: /get <key>. Available keys: %s", strings.Join(getConfigKeys(), ", ")))
		return
	}

	key := args[1]
	cfg := ctx.GetConfig()

	// admins is the one key without a field entry: an empty list has a
	// meaning worth spelling out.
	if key == "admins" {
		if len(cfg.Bot.Admins) == 0 {
			ctx.Reply("empty admin list, all nicks are permitted to use admin commands")
			return
		}
		ctx.Reply(fmt.Sprintf("admins: %s", strings.Join(cfg.Bot.Admins, ", ")))
		return
	}

	field, ok := configFields[key]
	if !ok {
		ctx.Reply(fmt.Sprintf("Unknown key %s. Available keys: %s", key, strings.Join(getConfigKeys(), ", ")))
		return
	}
	ctx.Reply(fmt.Sprintf("%s: %s", key, field.getter(cfg)))
}
