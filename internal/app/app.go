// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/job-seekers/harvest/internal/config"
	"github.com/job-seekers/harvest/internal/engine/chromium"
	"github.com/job-seekers/harvest/internal/inspect"
	"github.com/job-seekers/harvest/internal/ratelimit"
)

// Application holds shared dependencies and manages their lifecycle.
// It is created once at startup and shared across all CLI commands.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	RateLimiter ratelimit.RateLimiter
	Prober      *inspect.Prober
	startTime   time.Time
}

// New creates an Application: logger, rate limiter, and prober. The browser
// is not started here; scrape runs launch it on demand via LaunchBrowser.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	level := zerolog.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	logger := zerolog.New(logWriter).With().Timestamp().Logger()
	// Engine packages log through the global logger.
	log.Logger = logger

	logger.Debug().Str("level", cfg.LogLevel).Bool("json", cfg.JSONLog).Msg("Logger initialized")

	limiter := ratelimit.NewDomainLimiter(cfg.NavRateRPS, cfg.NavRateBurst)
	logger.Debug().
		Float64("nav_rps", cfg.NavRateRPS).
		Int("nav_burst", cfg.NavRateBurst).
		Msg("Rate limiter initialized")

	prober := inspect.New(limiter, cfg.Timing.PageLoadTimeout, cfg.UserAgent)

	return &Application{
		Config:      cfg,
		Logger:      &logger,
		RateLimiter: limiter,
		Prober:      prober,
		startTime:   time.Now(),
	}, nil
}

// LaunchBrowser starts Chrome configured from the application config. The
// caller owns the returned browser and must Close it.
func (a *Application) LaunchBrowser(ctx context.Context) (*chromium.Browser, error) {
	return chromium.Launch(ctx, chromium.Options{
		Headless:  a.Config.Headless,
		UserAgent: a.Config.UserAgent,
		Proxy:     a.Config.Proxy,
		ExecPath:  a.Config.ChromePath,
	})
}

// Close shuts the application down. Browsers are owned per run and are
// already closed by the time this is called.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Dur("uptime", time.Since(a.startTime)).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
