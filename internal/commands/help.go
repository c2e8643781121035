package commands

import (
	"strings"

	"pkdindustries/toolshack/internal/core"
)

// HelpCommand lists the commands the asking user may run.
type HelpCommand struct {
	registry *Registry
}

func NewHelpCommand(registry *Registry) *HelpCommand {
	return &HelpCommand{registry: registry}
}

func (c *HelpCommand) Name() string    { return "/help" }
func (c *HelpCommand) AdminOnly() bool { return false }

func (c *HelpCommand) Execute(ctx core.ChatContextInterface) {
	isAdmin := ctx.IsAdmin()

	var names []string
	for _, cmd := range c.registry.All() {
		if cmd.AdminOnly() && !isAdmin {
			continue
		}
		names = append(names, cmd.Name())
	}

	ctx.Reply("Supported commands: " + strings.Join(names, ", "))
}
