package bot

import (
	"context"

	"github.com/alexschlessinger/pollytool/sessions"
	"github.com/alexschlessinger/pollytool/tools"
	"go.uber.org/zap"

	"pkdindustries/toolshack/internal/config"
	"pkdindustries/toolshack/internal/core"
	"pkdindustries/toolshack/internal/irc"
	"pkdindustries/toolshack/internal/llm"
	"pkdindustries/toolshack/internal/metrics"
	"pkdindustries/toolshack/internal/report"
	"pkdindustries/toolshack/internal/storage"
)

// NewSystem wires the runtime: tool registry, session store, model client,
// and the cost reporter when a bucket is configured.
func NewSystem(ctx context.Context, c *config.Configuration) core.System {
	s := core.SystemImpl{}
	s.Tools = tools.NewToolRegistry([]tools.Tool{})

	// Register native IRC tools with polly's registry
	irc.RegisterIRCTools(s.Tools)

	// Load all tools from configuration (polly handles native, shell, and MCP tools)
	if len(c.Bot.Tools) > 0 {
		for _, toolSpec := range c.Bot.Tools {
			if _, err := s.Tools.LoadToolAuto(toolSpec); err != nil {
				zap.S().Warnw("Warning loading tool", "tool", toolSpec, "error", err)
				continue
			}
		}
	}
	zap.S().Infow("Loaded tools", "count", len(s.Tools.All()))

	zap.S().Info("Initialized session store: syncmap")
	// No SystemPrompt here: the conversation loop prepends the persona
	// on every model turn, and a store-seeded system message would reach
	// the model twice.
	s.Store = sessions.NewSyncMapSessionStore(&sessions.Metadata{
		MaxHistoryTokens: c.Session.HistoryTokens,
		TTL:              c.Session.TTL,
	})

	s.ModelFactory = func(api config.APIConfig) (core.Model, error) {
		return llm.NewPollyModel(api), nil
	}
	s.Model = llm.NewPollyModel(*c.API)

	s.Reporter = newReporter(ctx, c, &s)
	return &s
}

// newReporter builds the cost-analysis pipeline. Reporting is optional:
// without a bucket the /report command answers "not configured" instead of
// failing at startup on missing AWS credentials.
func newReporter(ctx context.Context, c *config.Configuration, s *core.SystemImpl) core.Reporter {
	if c.Report == nil || c.Report.Bucket == "" {
		zap.S().Info("Reporting disabled: no artifact bucket configured")
		return nil
	}

	source, err := metrics.NewCostExplorerSource(ctx)
	if err != nil {
		zap.S().Warnw("Reporting disabled: cost explorer unavailable", "error", err)
		return nil
	}

	uploader, err := storage.NewS3Uploader(ctx, c.Report.Bucket)
	if err != nil {
		zap.S().Warnw("Reporting disabled: artifact bucket unavailable", "bucket", c.Report.Bucket, "error", err)
		return nil
	}

	pipeline, err := report.NewPipeline(c, s.Model, source, uploader, s.Tools)
	if err != nil {
		zap.S().Warnw("Reporting disabled", "error", err)
		return nil
	}
	zap.S().Infow("Reporting enabled", "bucket", c.Report.Bucket, "days", c.Report.MetricsDays)
	return pipeline
}
