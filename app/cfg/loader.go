package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath   string `long:"db-path" env:"DB_PATH" default:"./data/news-digest.db" description:"SQLite database file"`
	FeedsDir string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed source files"`

	// HTTP configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port (serve command)"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" default:"http://localhost:3000" description:"Public site URL used in unsubscribe links"`
	APIAccessKey string `long:"api-access-key" env:"API_ACCESS_KEY" description:"API access key for the stats endpoint (disabled when empty)"`

	// Generation service configuration
	GeminiAPIKey   string `long:"gemini-api-key" env:"GEMINI_API_KEY" description:"Gemini API key"`
	GeminiModel    string `long:"gemini-model" env:"GEMINI_MODEL" default:"gemini-2.5-flash" description:"Gemini model used for summaries"`
	GeminiBaseURL  string `long:"gemini-base-url" env:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/" description:"Gemini API base URL"`
	SummaryLimit   int    `long:"summary-limit" env:"SUMMARY_LIMIT" default:"10" description:"Maximum number of articles summarized per run"`
	SummaryRPM     int    `long:"summary-rpm" env:"SUMMARY_RPM" default:"15" description:"Summary requests per minute (0 disables throttling)"`
	SummaryTimeout int    `long:"summary-timeout" env:"SUMMARY_TIMEOUT" default:"30" description:"Summary request timeout in seconds"`

	// Email delivery configuration
	ResendAPIKey  string `long:"resend-api-key" env:"RESEND_API_KEY" description:"Resend API key"`
	ResendBaseURL string `long:"resend-base-url" env:"RESEND_BASE_URL" default:"https://api.resend.com" description:"Resend API base URL"`
	FromEmail     string `long:"from-email" env:"FROM_EMAIL" default:"digest@example.com" description:"Sender address for digest emails"`
	BatchSize     int    `long:"batch-size" env:"BATCH_SIZE" default:"100" description:"Number of subscribers delivered to concurrently"`
	DigestLimit   int    `long:"digest-limit" env:"DIGEST_ARTICLE_LIMIT" default:"10" description:"Maximum number of articles in one digest"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"News Digest/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for the digest day (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Args struct {
		Command string `positional-arg-name:"command" description:"aggregate, send-digest, serve or migrate"`
	} `positional-args:"yes" required:"yes"`
}

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments; nil means os.Args[1:].
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	command, err := parseCommand(raw.Args.Command)
	if err != nil {
		return nil, err
	}

	cfg := &Cfg{
		Command:        command,
		DBPath:         raw.DBPath,
		FeedsDir:       raw.FeedsDir,
		Port:           raw.Port,
		BaseUrl:        raw.BaseUrl,
		APIAccessKey:   raw.APIAccessKey,
		GeminiAPIKey:   raw.GeminiAPIKey,
		GeminiModel:    raw.GeminiModel,
		GeminiBaseURL:  raw.GeminiBaseURL,
		SummaryLimit:   raw.SummaryLimit,
		SummaryRPM:     raw.SummaryRPM,
		SummaryTimeout: raw.SummaryTimeout,
		ResendAPIKey:   raw.ResendAPIKey,
		ResendBaseURL:  raw.ResendBaseURL,
		FromEmail:      raw.FromEmail,
		BatchSize:      raw.BatchSize,
		DigestLimit:    raw.DigestLimit,
		UserAgent:      raw.UserAgent,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func parseCommand(value string) (Command, error) {
	switch Command(value) {
	case CommandAggregate, CommandSendDigest, CommandServe, CommandMigrate:
		return Command(value), nil
	default:
		return "", fmt.Errorf("unknown command '%s' (expected aggregate, send-digest, serve or migrate)", value)
	}
}

func (c *Cfg) validate() error {
	positiveFields := map[string]int{
		"batch size":      c.BatchSize,
		"digest limit":    c.DigestLimit,
		"summary timeout": c.SummaryTimeout,
	}
	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	if c.SummaryLimit < 0 {
		return fmt.Errorf("summary limit must be non-negative")
	}
	if c.SummaryRPM < 0 {
		return fmt.Errorf("summary rpm must be non-negative")
	}

	switch c.Command {
	case CommandAggregate:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the %s command", c.Command)
		}
	case CommandSendDigest:
		if c.ResendAPIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is required for the %s command", c.Command)
		}
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
