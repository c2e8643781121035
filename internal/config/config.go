package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Configuration struct {
	Server  *ServerConfig
	Bot     *BotConfig
	Model   *ModelConfig
	Session *SessionConfig
	API     *APIConfig
	Report  *ReportConfig
}

type ServerConfig struct {
	Nick        string
	Server      string
	Port        int
	Channel     string
	SSL         bool
	TLSInsecure bool
	SASLNick    string
	SASLPass    string
}

type BotConfig struct {
	Admins             []string
	Verbose            bool
	Addressed          bool
	Prompt             string
	Greeting           string
	Tools              []string
	ShowThinkingAction bool
	ShowToolActions    bool
}

type ModelConfig struct {
	Model       string
	MaxTokens   int
	Temperature float32
	TopP        float32
	Thinking    bool
}

type SessionConfig struct {
	ChunkMax int
	// HistoryTokens caps session history by token count; pollytool's
	// session store prunes by tokens, not message count. 0 = unlimited.
	HistoryTokens int
	TTL           time.Duration
}

type APIConfig struct {
	Timeout      time.Duration
	OpenAIKey    string
	OpenAIURL    string
	AnthropicKey string
	GeminiKey    string
	OllamaURL    string
	OllamaKey    string
}

// ReportConfig drives the cost-analysis pipeline and document grading.
type ReportConfig struct {
	MaxIteration   int
	StepLimit      int
	MetricsDays    int
	Bucket         string
	ArtifactPrefix string
	GradeModels    []string
	GradeParallel  int
}

// YamlSource adapts one key of a parsed YAML file to cli.ValueSource.
type YamlSource struct {
	data map[string]any
	key  string
}

func (y *YamlSource) Lookup() (string, bool) {
	if v, ok := y.data[y.key]; ok {
		// flatten YAML lists into comma-separated values
		if slice, ok := v.([]any); ok {
			var strs []string
			for _, item := range slice {
				strs = append(strs, fmt.Sprintf("%v", item))
			}
			return strings.Join(strs, ","), true
		}
		return fmt.Sprintf("%v", v), true
	}
	return "", false
}

func (y *YamlSource) String() string   { return "yaml" }
func (y *YamlSource) GoString() string { return "yaml" }

func GetFlags() []cli.Flag {
	// the config file path has to be known before flag parsing
	configPath := getConfigPath()
	var configData map[string]any
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err == nil {
			_ = yaml.Unmarshal(data, &configData)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: failed to read config file %s: %v\n", configPath, err)
		}
	}

	// precedence per flag: environment, then YAML, then the default
	src := func(key string, env ...string) cli.ValueSourceChain {
		chain := cli.ValueSourceChain{}
		for _, e := range env {
			chain.Chain = append(chain.Chain, cli.EnvVar(e))
		}
		if configData != nil {
			chain.Chain = append(chain.Chain, &YamlSource{data: configData, key: key})
		}
		return chain
	}

	return []cli.Flag{
		// Config file
		&cli.StringFlag{Name: "config", Aliases: []string{"b"}, Usage: "use the named configuration file", Sources: cli.EnvVars("TOOLSHACK_CONFIG")},

		// IRC Client Configuration
		&cli.StringFlag{Name: "nick", Aliases: []string{"n"}, Value: "toolshack", Usage: "bot's nickname on the irc server", Sources: src("nick", "TOOLSHACK_NICK")},
		&cli.StringFlag{Name: "server", Aliases: []string{"s"}, Value: "localhost", Usage: "irc server address", Sources: src("server", "TOOLSHACK_SERVER")},
		&cli.BoolFlag{Name: "tls", Aliases: []string{"e"}, Usage: "enable TLS for the IRC connection", Sources: src("tls", "TOOLSHACK_TLS")},
		&cli.BoolFlag{Name: "tlsinsecure", Usage: "skip TLS certificate verification", Sources: src("tlsinsecure", "TOOLSHACK_TLSINSECURE")},
		&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 6667, Usage: "irc server port", Sources: src("port", "TOOLSHACK_PORT")},
		&cli.StringFlag{Name: "channel", Aliases: []string{"c"}, Usage: "irc channel to join", Sources: src("channel", "TOOLSHACK_CHANNEL")},
		&cli.StringFlag{Name: "saslnick", Usage: "nick used for SASL", Sources: src("saslnick", "TOOLSHACK_SASLNICK")},
		&cli.StringFlag{Name: "saslpass", Usage: "password for SASL plain", Sources: src("saslpass", "TOOLSHACK_SASLPASS")},

		// Bot Configuration
		&cli.StringSliceFlag{Name: "admins", Aliases: []string{"A"}, Usage: "comma-separated list of allowed hostmasks to administrate the bot", Sources: src("admins", "TOOLSHACK_ADMINS")},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}, Usage: "enable verbose logging of sessions and configuration", Sources: src("verbose", "TOOLSHACK_VERBOSE")},

		// API Configuration
		&cli.StringFlag{Name: "openaikey", Usage: "OpenAI API key", Sources: src("openaikey", "TOOLSHACK_OPENAIKEY")},
		&cli.StringFlag{Name: "openaiurl", Usage: "OpenAI API URL (for custom endpoints)", Sources: src("openaiurl", "TOOLSHACK_OPENAIURL")},
		&cli.StringFlag{Name: "anthropickey", Usage: "Anthropic API key", Sources: src("anthropickey", "TOOLSHACK_ANTHROPICKEY")},
		&cli.StringFlag{Name: "geminikey", Usage: "Google Gemini API key", Sources: src("geminikey", "TOOLSHACK_GEMINIKEY")},
		&cli.StringFlag{Name: "ollamaurl", Value: "http://localhost:11434", Usage: "Ollama API URL", Sources: src("ollamaurl", "TOOLSHACK_OLLAMAURL")},
		&cli.StringFlag{Name: "ollamakey", Usage: "Ollama API key (Bearer token for authentication)", Sources: src("ollamakey", "TOOLSHACK_OLLAMAKEY")},
		&cli.IntFlag{Name: "maxtokens", Value: 4096, Usage: "maximum number of tokens to generate", Sources: src("maxtokens", "TOOLSHACK_MAXTOKENS")},
		&cli.StringFlag{Name: "model", Value: "ollama/llama3.2", Usage: "model to be used for responses", Sources: src("model", "TOOLSHACK_MODEL")},
		&cli.DurationFlag{Name: "apitimeout", Aliases: []string{"t"}, Value: time.Minute * 5, Usage: "timeout for each completion request", Sources: src("apitimeout", "TOOLSHACK_APITIMEOUT")},
		&cli.FloatFlag{Name: "temperature", Value: 0.7, Usage: "temperature for the completion", Sources: src("temperature", "TOOLSHACK_TEMPERATURE")},
		&cli.FloatFlag{Name: "top_p", Value: 1.0, Usage: "top P value for the completion", Sources: src("top_p", "TOOLSHACK_TOP_P")},
		&cli.BoolFlag{Name: "thinking", Usage: "enable thinking/reasoning for models that support it", Sources: src("thinking", "TOOLSHACK_THINKING")},
		&cli.StringSliceFlag{Name: "tool", Usage: "tools to load (shell scripts, MCP server JSON files, or native tools like irc_action)", Sources: src("tool", "TOOLSHACK_TOOL")},
		&cli.BoolFlag{Name: "showthinkingaction", Value: true, Usage: "show '[thinking]' IRC action when bot is reasoning", Sources: src("showthinkingaction", "TOOLSHACK_SHOWTHINKINGACTION")},
		&cli.BoolFlag{Name: "showtoolactions", Value: true, Usage: "show '[calling toolname]' IRC actions when executing tools", Sources: src("showtoolactions", "TOOLSHACK_SHOWTOOLACTIONS")},

		// Timeouts and Behavior
		&cli.BoolFlag{Name: "addressed", Aliases: []string{"a"}, Value: true, Usage: "require bot be addressed by nick for response", Sources: src("addressed", "TOOLSHACK_ADDRESSED")},
		&cli.DurationFlag{Name: "sessionduration", Aliases: []string{"S"}, Value: time.Minute * 10, Usage: "message context will be cleared after it is unused for this duration", Sources: src("sessionduration", "TOOLSHACK_SESSIONDURATION")},
		&cli.IntFlag{Name: "sessionhistory", Aliases: []string{"H"}, Value: 8192, Usage: "maximum tokens of context to keep per session (0 = unlimited)", Sources: src("sessionhistory", "TOOLSHACK_SESSIONHISTORY")},
		&cli.IntFlag{Name: "chunkmax", Aliases: []string{"m"}, Value: 350, Usage: "maximum number of characters to send as a single message", Sources: src("chunkmax", "TOOLSHACK_CHUNKMAX")},
		&cli.IntFlag{Name: "steplimit", Value: 50, Usage: "maximum model/tool transitions per conversation turn", Sources: src("steplimit", "TOOLSHACK_STEPLIMIT")},

		// Reporting pipeline
		&cli.IntFlag{Name: "maxiteration", Value: 1, Usage: "cost report ends once its iteration count exceeds this", Sources: src("maxiteration", "TOOLSHACK_MAXITERATION")},
		&cli.IntFlag{Name: "metricsdays", Value: 30, Usage: "days of cost history to analyze", Sources: src("metricsdays", "TOOLSHACK_METRICSDAYS")},
		&cli.StringFlag{Name: "bucket", Usage: "object storage bucket for report chart uploads", Sources: src("bucket", "TOOLSHACK_BUCKET")},
		&cli.StringFlag{Name: "artifactprefix", Value: "artifacts", Usage: "key prefix for uploaded report artifacts", Sources: src("artifactprefix", "TOOLSHACK_ARTIFACTPREFIX")},
		&cli.StringSliceFlag{Name: "grademodel", Usage: "models to round-robin document relevance grading across (defaults to the main model)", Sources: src("grademodel", "TOOLSHACK_GRADEMODEL")},
		&cli.IntFlag{Name: "gradeparallel", Value: 4, Usage: "maximum concurrent grading calls (1 disables fan-out)", Sources: src("gradeparallel", "TOOLSHACK_GRADEPARALLEL")},

		// Personality / Prompting
		&cli.StringFlag{Name: "greeting", Value: "hello.", Usage: "prompt to be used when the bot joins the channel", Sources: src("greeting", "TOOLSHACK_GREETING")},
		&cli.StringFlag{Name: "prompt", Value: "you are a helpful assistant. answer from your tools when you can. do not use emoji.", Usage: "initial system prompt", Sources: src("prompt", "TOOLSHACK_PROMPT")},
	}
}

func getConfigPath() string {
	// Check env first
	if v := os.Getenv("TOOLSHACK_CONFIG"); v != "" {
		return v
	}
	// Check args
	for i, arg := range os.Args {
		if arg == "--config" || arg == "-b" {
			if i+1 < len(os.Args) {
				return os.Args[i+1]
			}
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}

func maskKey(key string) string {
	if len(key) > 3 {
		return strings.Repeat("*", len(key)-3) + key[len(key)-3:]
	}
	return key
}

func (c *Configuration) PrintConfig() {
	fmt.Printf("nick: %s\n", c.Server.Nick)
	fmt.Printf("server: %s\n", c.Server.Server)
	fmt.Printf("port: %d\n", c.Server.Port)
	fmt.Printf("channel: %s\n", c.Server.Channel)
	fmt.Printf("tls: %t\n", c.Server.SSL)
	fmt.Printf("tlsinsecure: %t\n", c.Server.TLSInsecure)
	fmt.Printf("saslnick: %s\n", c.Server.SASLNick)
	fmt.Printf("admins: %v\n", c.Bot.Admins)
	fmt.Printf("verbose: %t\n", c.Bot.Verbose)
	fmt.Printf("addressed: %t\n", c.Bot.Addressed)
	fmt.Printf("chunkmax: %d\n", c.Session.ChunkMax)
	fmt.Printf("clienttimeout: %s\n", c.API.Timeout)
	fmt.Printf("sessionhistory: %d\n", c.Session.HistoryTokens)
	fmt.Printf("maxtokens: %d\n", c.Model.MaxTokens)
	fmt.Printf("tool: %v\n", c.Bot.Tools)
	fmt.Printf("showthinkingaction: %t\n", c.Bot.ShowThinkingAction)
	fmt.Printf("showtoolactions: %t\n", c.Bot.ShowToolActions)
	fmt.Printf("sessionduration: %s\n", c.Session.TTL)
	fmt.Printf("openaikey: %s\n", maskKey(c.API.OpenAIKey))
	fmt.Printf("anthropickey: %s\n", maskKey(c.API.AnthropicKey))
	fmt.Printf("geminikey: %s\n", maskKey(c.API.GeminiKey))
	fmt.Printf("openaiurl: %s\n", c.API.OpenAIURL)
	fmt.Printf("ollamaurl: %s\n", c.API.OllamaURL)
	fmt.Printf("model: %s\n", c.Model.Model)
	fmt.Printf("temperature: %f\n", c.Model.Temperature)
	fmt.Printf("topp: %f\n", c.Model.TopP)
	fmt.Printf("thinking: %t\n", c.Model.Thinking)
	fmt.Printf("steplimit: %d\n", c.Report.StepLimit)
	fmt.Printf("maxiteration: %d\n", c.Report.MaxIteration)
	fmt.Printf("metricsdays: %d\n", c.Report.MetricsDays)
	fmt.Printf("bucket: %s\n", c.Report.Bucket)
	fmt.Printf("artifactprefix: %s\n", c.Report.ArtifactPrefix)
	fmt.Printf("grademodel: %v\n", c.Report.GradeModels)
	fmt.Printf("gradeparallel: %d\n", c.Report.GradeParallel)
	fmt.Printf("prompt: %s\n", c.Bot.Prompt)
	fmt.Printf("greeting: %s\n", c.Bot.Greeting)
}

func NewConfiguration(c *cli.Command) *Configuration {
	if c.IsSet("config") {
		zap.S().Infow("Using config file", "path", c.String("config"))
	}

	config := &Configuration{
		Server: &ServerConfig{
			Nick:        c.String("nick"),
			Server:      c.String("server"),
			Port:        c.Int("port"),
			Channel:     c.String("channel"),
			SSL:         c.Bool("tls"),
			TLSInsecure: c.Bool("tlsinsecure"),
			SASLNick:    c.String("saslnick"),
			SASLPass:    c.String("saslpass"),
		},
		Bot: &BotConfig{
			Admins:             c.StringSlice("admins"),
			Verbose:            c.Bool("verbose"),
			Addressed:          c.Bool("addressed"),
			Prompt:             c.String("prompt"),
			Greeting:           c.String("greeting"),
			Tools:              c.StringSlice("tool"),
			ShowThinkingAction: c.Bool("showthinkingaction"),
			ShowToolActions:    c.Bool("showtoolactions"),
		},
		Model: &ModelConfig{
			Model:       c.String("model"),
			MaxTokens:   c.Int("maxtokens"),
			Temperature: float32(c.Float("temperature")),
			TopP:        float32(c.Float("top_p")),
			Thinking:    c.Bool("thinking"),
		},

		Session: &SessionConfig{
			ChunkMax:      c.Int("chunkmax"),
			HistoryTokens: c.Int("sessionhistory"),
			TTL:           c.Duration("sessionduration"),
		},

		API: &APIConfig{
			Timeout:      c.Duration("apitimeout"),
			OpenAIKey:    c.String("openaikey"),
			OpenAIURL:    c.String("openaiurl"),
			AnthropicKey: c.String("anthropickey"),
			GeminiKey:    c.String("geminikey"),
			OllamaURL:    c.String("ollamaurl"),
			OllamaKey:    c.String("ollamakey"),
		},

		Report: &ReportConfig{
			MaxIteration:   c.Int("maxiteration"),
			StepLimit:      c.Int("steplimit"),
			MetricsDays:    c.Int("metricsdays"),
			Bucket:         c.String("bucket"),
			ArtifactPrefix: c.String("artifactprefix"),
			GradeModels:    c.StringSlice("grademodel"),
			GradeParallel:  c.Int("gradeparallel"),
		},
	}

	return config
}
