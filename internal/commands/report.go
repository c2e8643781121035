package commands

import (
	"fmt"

	"pkdindustries/toolshack/internal/core"
	"pkdindustries/toolshack/internal/irc"
)

// ReportCommand handles the /report command: it runs the cost-analysis
// pipeline and posts status updates while it works.
type ReportCommand struct{}

func (c *ReportCommand) Name() string    { return "/report" }
func (c *ReportCommand) AdminOnly() bool { return true }

func (c *ReportCommand) Execute(ctx core.ChatContextInterface) {
	reporter := ctx.GetSystem().GetReporter()
	if reporter == nil {
		ctx.Reply("Reporting is not configured")
		return
	}

	report, err := reporter.RunReport(ctx, func(status string) {
		irc.Deliver(ctx, status)
	})
	if err != nil {
		ctx.GetLogger().Errorw("report_failed", "error", err)
		ctx.Reply(fmt.Sprintf("Report failed: %v", err))
		return
	}

	irc.Deliver(ctx, report)
}
