package commands

import (
	"fmt"
	"slices"
	"strings"

	"pkdindustries/toolshack/internal/core"
	"pkdindustries/toolshack/internal/irc"
)

// AdminCommand manages the admin hostmask list at runtime.
type AdminCommand struct{}

func (c *AdminCommand) Name() string    { return "/admins" }
func (c *AdminCommand) AdminOnly() bool { return true }

func (c *AdminCommand) Execute(ctx core.ChatContextInterface) {
	args := ctx.GetArgs()

	if len(args) < 2 || args[1] == "list" {
		admins := ctx.GetConfig().Bot.Admins
		if len(admins) == 0 {
			ctx.Reply("No admins configured")
			return
		}
		ctx.Reply("Admins: " + strings.Join(admins, ", "))
		return
	}

	if len(args) < 3 {
		ctx.Reply("Usage: /admins <add|remove> <hostmask>")
		return
	}
	hostmask := strings.Join(args[2:], " ")

	switch args[1] {
	case "add":
		c.add(ctx, hostmask)
	case "remove":
		c.remove(ctx, hostmask)
	default:
		ctx.Reply(fmt.Sprintf("Unknown subcommand: %s. Usage: /admins [list|add|remove] <hostmask>", args[1]))
	}

	ctx.GetLogger().With("admins", ctx.GetConfig().Bot.Admins).Debug("Admin list updated")
}

func (c *AdminCommand) add(ctx core.ChatContextInterface, hostmask string) {
	if hostmask == "" {
		ctx.Reply("Usage: /admins add <hostmask>")
		return
	}
	// A mask that fails validation would never match a live user.
	if err := irc.ValidateHostmask(hostmask); err != nil {
		ctx.Reply(err.Error())
		return
	}

	cfg := ctx.GetConfig()
	if slices.Contains(cfg.Bot.Admins, hostmask) {
		ctx.Reply(fmt.Sprintf("Already an admin: %s", hostmask))
		return
	}

	cfg.Bot.Admins = append(cfg.Bot.Admins, hostmask)
	ctx.Reply(fmt.Sprintf("Added admin: %s", hostmask))
	ctx.GetSession().Clear()
}

func (c *AdminCommand) remove(ctx core.ChatContextInterface, hostmask string) {
	if hostmask == "" {
		ctx.Reply("Usage: /admins remove <hostmask>")
		return
	}

	cfg := ctx.GetConfig()
	idx := slices.Index(cfg.Bot.Admins, hostmask)
	if idx == -1 {
		ctx.Reply(fmt.Sprintf("Not an admin: %s", hostmask))
		return
	}

	cfg.Bot.Admins = slices.Delete(cfg.Bot.Admins, idx, idx+1)
	ctx.Reply(fmt.Sprintf("Removed admin: %s", hostmask))
	ctx.GetSession().Clear()
}
