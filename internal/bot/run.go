package bot

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/lrstanley/girc"
	"go.uber.org/zap"

	"pkdindustries/toolshack/internal/commands"
	"pkdindustries/toolshack/internal/config"
	"pkdindustries/toolshack/internal/core"
	"pkdindustries/toolshack/internal/irc"
)

// Run starts the IRC bot with the given configuration
func Run(ctx context.Context, cfg *config.Configuration) error {
	core.InitLogger(cfg.Bot.Verbose)
	defer zap.L().Sync()

	// A malformed admin mask never matches anything; flag it at startup.
	for _, mask := range cfg.Bot.Admins {
		if err := irc.ValidateHostmask(mask); err != nil {
			zap.S().Warnw("admin hostmask will never match", "error", err)
		}
	}

	sys := NewSystem(ctx, cfg)

	// Initialize command registry
	cmdRegistry := commands.NewRegistry()
	cmdRegistry.Register(&commands.SetCommand{})
	cmdRegistry.Register(&commands.GetCommand{})
	cmdRegistry.Register(commands.NewHelpCommand(cmdRegistry))
	cmdRegistry.Register(&commands.VersionCommand{Version: "v" + Version})
	cmdRegistry.Register(&commands.CompletionCommand{})
	cmdRegistry.Register(&commands.ToolsCommand{})
	cmdRegistry.Register(&commands.AdminCommand{})
	cmdRegistry.Register(&commands.StatsCommand{})
	cmdRegistry.Register(&commands.ReportCommand{})

	ircClient := girc.New(girc.Config{
		Server:    cfg.Server.Server,
		Port:      cfg.Server.Port,
		Nick:      cfg.Server.Nick,
		User:      "toolshack",
		Name:      "toolshack",
		SSL:       cfg.Server.SSL,
		TLSConfig: &tls.Config{InsecureSkipVerify: cfg.Server.TLSInsecure},
	})

	if cfg.Server.SASLNick != "" && cfg.Server.SASLPass != "" {
		ircClient.Config.SASL = &girc.SASLPlain{
			User: cfg.Server.SASLNick,
			Pass: cfg.Server.SASLPass,
		}
	}

	go func() {
		<-ctx.Done()
		ircClient.Quit("Shutting down...")
		zap.S().Info("IRC client closed")
	}()

	ircClient.Handlers.AddBg(girc.CONNECTED, func(client *girc.Client, e girc.Event) {
		zap.S().Infof("Joining channel: %s", cfg.Server.Channel)
		client.Cmd.Join(cfg.Server.Channel)
	})

	ircClient.Handlers.AddBg(girc.JOIN, func(client *girc.Client, e girc.Event) {
		if e.Source.Name == cfg.Server.Nick {
			ctx, cancel := core.NewChatContext(ctx, cfg, sys, client, &e)
			defer cancel()
			Greeting(ctx)
		}
	})

	ircClient.Handlers.AddBg(girc.PRIVMSG, func(client *girc.Client, e girc.Event) {
		ctx, cancel := core.NewChatContext(ctx, cfg, sys, client, &e)
		defer cancel()

		if !ctx.Valid() {
			return
		}

		// One request at a time per channel; private chats lock per nick.
		channelKey := e.Params[0]
		if !girc.IsValidChannel(channelKey) {
			channelKey = e.Source.Name
		}

		core.WithRequestLock(ctx, channelKey, "privmsg", func() {
			ctx.GetLogger().Infof(">> %s", strings.Join(e.Params[1:], " "))
			cmdRegistry.Dispatch(ctx)
		}, func() {
			ctx.Reply("Request timed out waiting for previous operation to complete")
		})
	})

	return connectWithRetry(ctx, ircClient)
}

// connectWithRetry dials the server, backing off a fixed five seconds
// between attempts. A canceled context is a clean shutdown, not an
// error.
func connectWithRetry(ctx context.Context, client *girc.Client) error {
	const (
		attempts = 5
		backoff  = 5 * time.Second
	)

	for i := 1; i <= attempts; i++ {
		if ctx.Err() != nil {
			return nil
		}

		zap.S().Infow("Connecting to server",
			"server", client.Config.Server,
			"port", client.Config.Port,
			"tls", client.Config.SSL,
			"sasl", client.Config.SASL != nil,
		)

		err := client.Connect()
		if err == nil || ctx.Err() != nil {
			return nil
		}

		zap.S().Errorw("Connection failed", "error", err)
		zap.S().Infof("Reconnecting in %s (attempt %d/%d)", backoff, i, attempts)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil
		}
	}

	return fmt.Errorf("failed to connect after %d attempts", attempts)
}
