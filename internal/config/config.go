package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/job-seekers/harvest/internal/pacing"
)

// DelayBounds aliases the pacing interval type so timing settings read as
// plain configuration data.
type DelayBounds = pacing.Bounds

// Timing holds the human-pacing bounds and per-operation timeout budgets.
type Timing struct {
	ReadDelay   DelayBounds // reading / page-transition pauses
	TypingDelay DelayBounds // per-keystroke pause
	ClickDelay  DelayBounds // before and after clicks
	RecordDelay DelayBounds // between extracted records
	FieldPause  DelayBounds // between focusing a field and typing

	PageLoadTimeout time.Duration
	ElementTimeout  time.Duration
	ResultsTimeout  time.Duration
}

// Retry holds the backoff parameters shared by the navigation and
// search-submission policies.
type Retry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
}

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Target
	BaseURL   string
	Source    string
	UserAgent string
	Proxy     string

	// Browser
	Headless   bool
	ChromePath string

	// Scrape defaults
	JobTitle string
	Location string
	MaxJobs  int

	// Engine
	Timing    Timing
	Retry     Retry
	Selectors Selectors

	// Courtesy rate limit on navigations
	NavRateRPS   float64
	NavRateBurst int

	// Output
	OutputDir  string
	FilePrefix string
}

// Load builds a Config by combining defaults, environment variables, and CLI
// flags. Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	// Override from environment variables (simple helpers)
	if v := os.Getenv("HARVEST_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("HARVEST_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("HARVEST_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("HARVEST_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("HARVEST_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}

	// Read CLI flags if provided
	if cmd != nil {
		if f := cmd.Flags().Lookup("base-url"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.BaseURL = s
			}
		}
		if f := cmd.Flags().Lookup("user-agent"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.UserAgent = s
			}
		}
		if f := cmd.Flags().Lookup("proxy"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.Proxy = s
			}
		}
		if f := cmd.Flags().Lookup("timeout"); f != nil {
			if s := f.Value.String(); s != "" {
				if d, err := time.ParseDuration(s); err == nil {
					cfg.Timing.PageLoadTimeout = d
				}
			}
		}
		if f := cmd.Flags().Lookup("json"); f != nil {
			if f.Value.String() == "true" {
				cfg.JSONLog = true
			}
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "debug"
			}
		}
		if f := cmd.Flags().Lookup("quiet"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "error"
			}
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:  DefaultLogLevel,
		JSONLog:   DefaultJSONLog,
		BaseURL:   DefaultBaseURL,
		Source:    DefaultSource,
		UserAgent: DefaultUserAgent,
		Headless:  DefaultHeadless,
		JobTitle:  DefaultJobTitle,
		Location:  DefaultLocation,
		MaxJobs:   DefaultMaxJobs,
		Timing: Timing{
			ReadDelay:       DefaultReadDelay,
			TypingDelay:     DefaultTypingDelay,
			ClickDelay:      DefaultClickDelay,
			RecordDelay:     DefaultRecordDelay,
			FieldPause:      DefaultFieldPause,
			PageLoadTimeout: DefaultPageLoadTimeout,
			ElementTimeout:  DefaultElementTimeout,
			ResultsTimeout:  DefaultResultsTimeout,
		},
		Retry: Retry{
			MaxAttempts: DefaultRetryAttempts,
			BaseDelay:   DefaultRetryBaseDelay,
			MaxDelay:    DefaultRetryMaxDelay,
			Multiplier:  DefaultRetryMultiplier,
		},
		Selectors:    DefaultSelectors(),
		NavRateRPS:   DefaultNavRateRPS,
		NavRateBurst: DefaultNavRateBurst,
		OutputDir:    DefaultOutputDir,
		FilePrefix:   DefaultFilePref,
	}
}
