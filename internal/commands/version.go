package commands

import (
	"pkdindustries/toolshack/internal/core"
)

// VersionCommand replies with the bot nick and build version.
type VersionCommand struct {
	Version string
}

func (c *VersionCommand) Name() string    { return "/version" }
func (c *VersionCommand) AdminOnly() bool { return false }

func (c *VersionCommand) Execute(ctx core.ChatContextInterface) {
	ctx.Reply(ctx.GetConfig().Server.Nick + " " + c.Version)
}
