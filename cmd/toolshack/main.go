package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alexschlessinger/pollytool/tools"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pkdindustries/toolshack/internal/agent"
	"pkdindustries/toolshack/internal/bot"
	"pkdindustries/toolshack/internal/config"
	"pkdindustries/toolshack/internal/core"
	"pkdindustries/toolshack/internal/llm"
	"pkdindustries/toolshack/internal/metrics"
	"pkdindustries/toolshack/internal/report"
	"pkdindustries/toolshack/internal/storage"
)

func main() {
	fmt.Printf("%s\n", bot.GetBanner(bot.Version))

	cmd := &cli.Command{
		Name:    "toolshack",
		Usage:   "an irc assistant with tools, sessions, and cost reports",
		Version: "v" + bot.Version + " - http://github.com/pkdindustries/toolshack",
		Flags:   config.GetFlags(),
		Action:  runBot,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "run one conversation turn and print the answer",
				ArgsUsage: "<question>",
				Flags:     config.GetFlags(),
				Action:    runAsk,
			},
			{
				Name:   "report",
				Usage:  "run the cost-analysis pipeline and print the report",
				Flags:  config.GetFlags(),
				Action: runReport,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		// Print to stderr first in case logger isn't initialized
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		zap.S().Fatal(err)
	}
}

func runBot(ctx context.Context, c *cli.Command) error {
	cfg := config.NewConfiguration(c)
	if cfg.Bot.Verbose {
		cfg.PrintConfig()
	}
	return bot.Run(ctx, cfg)
}

// runAsk answers a single question on stdout. No IRC, no session store;
// tools from the configuration are still available to the model.
func runAsk(ctx context.Context, c *cli.Command) error {
	cfg := config.NewConfiguration(c)
	core.InitLogger(cfg.Bot.Verbose)
	defer zap.L().Sync()

	question := strings.Join(c.Args().Slice(), " ")
	if question == "" {
		return fmt.Errorf("nothing to ask")
	}

	registry := tools.NewToolRegistry([]tools.Tool{})
	for _, toolSpec := range cfg.Bot.Tools {
		if _, err := registry.LoadToolAuto(toolSpec); err != nil {
			zap.S().Warnw("Warning loading tool", "tool", toolSpec, "error", err)
		}
	}

	loop := agent.NewLoop(cfg, llm.NewPollyModel(*cfg.API), registry)
	result, err := loop.Run(ctx, "", question)
	if err != nil {
		return err
	}

	fmt.Println(result.Answer)
	for _, url := range result.Images {
		fmt.Println(url)
	}
	return nil
}

// runReport runs the cost pipeline once and prints the report markdown on
// stdout. Status updates go to stderr. Without a bucket the charts land in
// memory and only the text survives.
func runReport(ctx context.Context, c *cli.Command) error {
	cfg := config.NewConfiguration(c)
	core.InitLogger(cfg.Bot.Verbose)
	defer zap.L().Sync()

	source, err := metrics.NewCostExplorerSource(ctx)
	if err != nil {
		return fmt.Errorf("cost explorer unavailable: %w", err)
	}

	var uploader storage.Uploader
	if cfg.Report.Bucket != "" {
		uploader, err = storage.NewS3Uploader(ctx, cfg.Report.Bucket)
		if err != nil {
			return fmt.Errorf("artifact bucket unavailable: %w", err)
		}
	} else {
		zap.S().Warn("No artifact bucket configured; charts will not be persisted")
		uploader = storage.NewMemoryUploader()
	}

	registry := tools.NewToolRegistry([]tools.Tool{})
	for _, toolSpec := range cfg.Bot.Tools {
		if _, err := registry.LoadToolAuto(toolSpec); err != nil {
			zap.S().Warnw("Warning loading tool", "tool", toolSpec, "error", err)
		}
	}

	pipeline, err := report.NewPipeline(cfg, llm.NewPollyModel(*cfg.API), source, uploader, registry)
	if err != nil {
		return err
	}

	out, err := pipeline.RunReport(ctx, func(status string) {
		fmt.Fprintln(os.Stderr, status)
	})
	if err != nil {
		return err
	}

	fmt.Println(out)
	return nil
}
