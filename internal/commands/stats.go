package commands

import (
	"fmt"

	"github.com/alexschlessinger/pollytool/sessions"

	"pkdindustries/toolshack/internal/core"
)

// StatsCommand reports token usage and context capacity for the
// current session.
type StatsCommand struct{}

func (c *StatsCommand) Name() string    { return "/stats" }
func (c *StatsCommand) AdminOnly() bool { return false }

func (c *StatsCommand) Execute(ctx core.ChatContextInterface) {
	session := ctx.GetSession()
	meta := session.GetMetadata()

	// Provider-reported counts where present, estimates for the rest.
	var input, output, estimated int
	for _, msg := range session.GetHistory() {
		in, out := msg.GetInputTokens(), msg.GetOutputTokens()
		if in > 0 || out > 0 {
			input += in
			output += out
			continue
		}
		estimated += sessions.EstimateTokens(msg)
	}

	capacity := "unlimited"
	if meta.MaxHistoryTokens > 0 {
		capacity = fmt.Sprintf("%.1f%% of %d", session.GetCapacityPercentage(), meta.MaxHistoryTokens)
	}

	ctx.Reply(fmt.Sprintf("token input: %d, token output: %d, context capacity: %s",
		input, output, capacity))
}
