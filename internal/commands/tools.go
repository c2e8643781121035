package commands

import (
	"fmt"
	"path"
	"strings"

	"pkdindustries/toolshack/internal/core"
)

// ToolsCommand lists loaded tools and, for admins, adds or removes
// them at runtime.
type ToolsCommand struct{}

func (c *ToolsCommand) Name() string { return "/tools" }

// Listing is open to everyone; mutation is gated inside Execute.
func (c *ToolsCommand) AdminOnly() bool { return false }

func (c *ToolsCommand) Execute(ctx core.ChatContextInterface) {
	args := ctx.GetArgs()

	if len(args) < 2 {
		c.list(ctx)
		return
	}

	if !ctx.IsAdmin() {
		ctx.Reply("You don't have permission to perform this action.")
		return
	}

	rest := strings.Join(args[2:], " ")
	switch args[1] {
	case "add":
		c.add(ctx, rest)
	case "remove":
		c.remove(ctx, rest)
	default:
		ctx.Reply("Usage: /tools [add|remove] <args>")
	}
}

func (c *ToolsCommand) list(ctx core.ChatContextInterface) {
	registry := ctx.GetSystem().GetToolRegistry()

	var names []string
	for _, tool := range registry.All() {
		names = append(names, tool.GetName())
	}
	if len(names) == 0 {
		ctx.Reply("No tools loaded")
		return
	}

	message := "Tools: " + strings.Join(names, ", ")
	limit := ctx.GetConfig().Session.ChunkMax
	if limit <= 0 {
		limit = 350
	}
	if len(message) > limit {
		message = message[:limit-3] + "..."
	}
	ctx.Reply(message)
}

func (c *ToolsCommand) add(ctx core.ChatContextInterface, toolPath string) {
	if toolPath == "" {
		ctx.Reply("Usage: /tools add <path>")
		return
	}

	if _, err := ctx.GetSystem().GetToolRegistry().LoadToolAuto(toolPath); err != nil {
		ctx.Reply(fmt.Sprintf("Failed: %v", err))
		return
	}
	ctx.Reply(fmt.Sprintf("Added tool: %s", toolPath))
}

func (c *ToolsCommand) remove(ctx core.ChatContextInterface, pattern string) {
	if pattern == "" {
		ctx.Reply("Usage: /tools remove <name or pattern>")
		return
	}

	registry := ctx.GetSystem().GetToolRegistry()

	if !strings.Contains(pattern, "*") {
		if _, exists := registry.Get(pattern); !exists {
			ctx.Reply(fmt.Sprintf("Not found: %s", pattern))
			return
		}
		registry.Remove(pattern)
		ctx.Reply(fmt.Sprintf("Removed: %s", pattern))
		return
	}

	var removed []string
	for _, tool := range registry.All() {
		name := tool.GetName()
		if matched, _ := path.Match(pattern, name); matched {
			registry.Remove(name)
			removed = append(removed, name)
		}
	}
	if len(removed) == 0 {
		ctx.Reply(fmt.Sprintf("No tools matched pattern: %s", pattern))
		return
	}
	ctx.Reply(fmt.Sprintf("Removed %d tools: %s", len(removed), strings.Join(removed, ", ")))
}
