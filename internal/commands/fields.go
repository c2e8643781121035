package commands

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"pkdindustries/toolshack/internal/config"
)

// configField pairs a parser with a formatter for one /set key.
type configField struct {
	setter func(*config.Configuration, string) error
	getter func(*config.Configuration) string
}

func stringField(target func(*config.Configuration) *string) configField {
	return configField{
		setter: func(c *config.Configuration, v string) error { *target(c) = v; return nil },
		getter: func(c *config.Configuration) string { return *target(c) },
	}
}

func maskedField(target func(*config.Configuration) *string) configField {
	f := stringField(target)
	f.getter = func(c *config.Configuration) string { return maskAPIKey(*target(c)) }
	return f
}

func boolField(name string, target func(*config.Configuration) *bool) configField {
	return configField{
		setter: func(c *config.Configuration, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s. Please provide 'true' or 'false'", name)
			}
			*target(c) = b
			return nil
		},
		getter: func(c *config.Configuration) string { return fmt.Sprintf("%t", *target(c)) },
	}
}

func intField(name string, target func(*config.Configuration) *int) configField {
	return configField{
		setter: func(c *config.Configuration, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s. Please provide a valid integer", name)
			}
			*target(c) = n
			return nil
		},
		getter: func(c *config.Configuration) string { return fmt.Sprintf("%d", *target(c)) },
	}
}

func durationField(name, example string, target func(*config.Configuration) *time.Duration) configField {
	return configField{
		setter: func(c *config.Configuration, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s. Please provide a valid duration (e.g. %s)", name, example)
			}
			*target(c) = d
			return nil
		},
		getter: func(c *config.Configuration) string { return target(c).String() },
	}
}

func floatField(name string, unit bool, target func(*config.Configuration) *float32) configField {
	return configField{
		setter: func(c *config.Configuration, v string) error {
			f, err := strconv.ParseFloat(v, 32)
			if err != nil {
				return fmt.Errorf("invalid value for %s. Please provide a valid float", name)
			}
			if unit && (f < 0 || f > 1) {
				return fmt.Errorf("invalid value for %s. Please provide a float between 0 and 1", name)
			}
			*target(c) = float32(f)
			return nil
		},
		getter: func(c *config.Configuration) string { return fmt.Sprintf("%f", *target(c)) },
	}
}

var configFields = map[string]configField{
	"prompt":         stringField(func(c *config.Configuration) *string { return &c.Bot.Prompt }),
	"model":          stringField(func(c *config.Configuration) *string { return &c.Model.Model }),
	"openaiurl":      stringField(func(c *config.Configuration) *string { return &c.API.OpenAIURL }),
	"ollamaurl":      stringField(func(c *config.Configuration) *string { return &c.API.OllamaURL }),
	"bucket":         stringField(func(c *config.Configuration) *string { return &c.Report.Bucket }),
	"artifactprefix": stringField(func(c *config.Configuration) *string { return &c.Report.ArtifactPrefix }),

	"openaikey":    maskedField(func(c *config.Configuration) *string { return &c.API.OpenAIKey }),
	"ollamakey":    maskedField(func(c *config.Configuration) *string { return &c.API.OllamaKey }),
	"anthropickey": maskedField(func(c *config.Configuration) *string { return &c.API.AnthropicKey }),
	"geminikey":    maskedField(func(c *config.Configuration) *string { return &c.API.GeminiKey }),

	"addressed":          boolField("addressed", func(c *config.Configuration) *bool { return &c.Bot.Addressed }),
	"thinking":           boolField("thinking", func(c *config.Configuration) *bool { return &c.Model.Thinking }),
	"showthinkingaction": boolField("showthinkingaction", func(c *config.Configuration) *bool { return &c.Bot.ShowThinkingAction }),
	"showtoolactions":    boolField("showtoolactions", func(c *config.Configuration) *bool { return &c.Bot.ShowToolActions }),

	"maxtokens":      intField("maxtokens", func(c *config.Configuration) *int { return &c.Model.MaxTokens }),
	"sessionhistory": intField("sessionhistory", func(c *config.Configuration) *int { return &c.Session.HistoryTokens }),
	"chunkmax":       intField("chunkmax", func(c *config.Configuration) *int { return &c.Session.ChunkMax }),
	"maxiteration":   intField("maxiteration", func(c *config.Configuration) *int { return &c.Report.MaxIteration }),
	"steplimit":      intField("steplimit", func(c *config.Configuration) *int { return &c.Report.StepLimit }),
	"metricsdays":    intField("metricsdays", func(c *config.Configuration) *int { return &c.Report.MetricsDays }),

	"sessionduration": durationField("sessionduration", "10m, 1h", func(c *config.Configuration) *time.Duration { return &c.Session.TTL }),
	"apitimeout":      durationField("apitimeout", "30s, 5m", func(c *config.Configuration) *time.Duration { return &c.API.Timeout }),

	"temperature": floatField("temperature", false, func(c *config.Configuration) *float32 { return &c.Model.Temperature }),
	"top_p":       floatField("top_p", true, func(c *config.Configuration) *float32 { return &c.Model.TopP }),
}

// getConfigKeys lists every /set key plus the special admins key.
func getConfigKeys() []string {
	keys := make([]string, 0, len(configFields)+1)
	for k := range configFields {
		keys = append(keys, k)
	}
	keys = append(keys, "admins")
	slices.Sort(keys)
	return keys
}

// maskAPIKey hides all but the first four characters of a key.
func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-4)
}
