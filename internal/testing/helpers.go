package testing

import (
	"time"

	"pkdindustries/toolshack/internal/config"
)

// DefaultTestConfig returns a minimal configuration for testing
func DefaultTestConfig() *config.Configuration {
	return &config.Configuration{
		Server: &config.ServerConfig{
			Nick:    "testbot",
			Server:  "irc.test.local",
			Port:    6667,
			Channel: "#test",
			SSL:     false,
		},
		Bot: &config.BotConfig{
			Admins:             []string{},
			Verbose:            false,
			Addressed:          true,
			Prompt:             "You are a test bot.",
			Greeting:           "hello",
			Tools:              []string{},
			ShowThinkingAction: false,
			ShowToolActions:    false,
		},
		Model: &config.ModelConfig{
			Model:       "test/model",
			MaxTokens:   100,
			Temperature: 0.7,
			TopP:        1.0,
			Thinking:    false,
		},
		Session: &config.SessionConfig{
			ChunkMax:      350,
			HistoryTokens: 4096,
			TTL:           time.Minute * 10,
		},
		API: &config.APIConfig{
			Timeout: time.Second * 30,
		},
		Report: &config.ReportConfig{
			MaxIteration:   1,
			StepLimit:      50,
			MetricsDays:    30,
			ArtifactPrefix: "artifacts",
			GradeParallel:  1,
		},
	}
}
