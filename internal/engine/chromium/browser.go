// Package chromium drives a real Chrome instance behind the engine's Page
// interface, over the DevTools protocol.
package chromium

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/job-seekers/harvest/internal/engine"
)

// Options configures the browser launch.
type Options struct {
	// Headless hides the browser window. Visible mode is useful when
	// debugging why a session fails on the live site.
	Headless  bool
	UserAgent string
	Proxy     string
	// ExecPath overrides browser discovery; empty means FindChrome.
	ExecPath string
}

// Browser owns one Chrome process and its DevTools connection. A Browser
// yields Pages; closing it tears down every page and the process.
type Browser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// Launch starts Chrome and connects to it. The browser runs until Close or
// until the parent context is cancelled.
func Launch(ctx context.Context, opts Options) (*Browser, error) {
	execPath := opts.ExecPath
	if execPath == "" {
		execPath = FindChrome()
	}
	if execPath == "" {
		return nil, engine.ErrBrowserNotFound
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.ExecPath(execPath),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		// Without this flag Chrome advertises automation through
		// navigator.webdriver and the target blocks the session.
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.Flag("lang", "en-US"),
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Run with no actions starts the process now, so launch failures
	// surface here instead of on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}

	log.Debug().Str("exec_path", execPath).Bool("headless", opts.Headless).Msg("Browser started")

	return &Browser{ctx: browserCtx, cancel: browserCancel, allocCancel: allocCancel}, nil
}

// Page returns the browser's tab as an engine Page.
func (b *Browser) Page() *Page {
	return &Page{ctx: b.ctx}
}

// Close shuts the browser down and releases the process.
func (b *Browser) Close() {
	b.cancel()
	b.allocCancel()
}
