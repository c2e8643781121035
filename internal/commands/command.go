package commands

import (
	"pkdindustries/toolshack/internal/core"
)

// Command is one slash command. A command registered with an empty
// name becomes the fallback for plain chat messages.
type Command interface {
	Name() string
	Execute(ctx core.ChatContextInterface)
	AdminOnly() bool
}

// Registry routes incoming messages to commands by name.
type Registry struct {
	commands map[string]Command
	fallback Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

func (r *Registry) Register(cmd Command) {
	if cmd.Name() == "" {
		r.fallback = cmd
		return
	}
	r.commands[cmd.Name()] = cmd
}

func (r *Registry) Get(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Dispatch runs the command named by the context, enforcing admin
// gating, or the fallback when no name matches. It reports whether
// anything ran.
func (r *Registry) Dispatch(ctx core.ChatContextInterface) bool {
	cmd, ok := r.commands[ctx.GetCommand()]
	if !ok {
		if r.fallback == nil {
			return false
		}
		r.fallback.Execute(ctx)
		return true
	}

	if cmd.AdminOnly() && !ctx.IsAdmin() {
		ctx.Reply("You don't have permission to perform this action.")
		return true
	}

	cmd.Execute(ctx)
	return true
}

// All returns the named commands in map order, fallback excluded.
func (r *Registry) All() []Command {
	cmds := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	return cmds
}
