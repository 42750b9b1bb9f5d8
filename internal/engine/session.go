package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/job-seekers/harvest/internal/config"
	"github.com/job-seekers/harvest/internal/pacing"
	"github.com/job-seekers/harvest/internal/ratelimit"
	"github.com/job-seekers/harvest/internal/retry"
	"github.com/job-seekers/harvest/pkg/models"
)

// State is the navigation state of one scraping session. Transitions are
// one-directional except Failed, which is reachable from any state and is
// terminal for the session.
type State string

const (
	StateHome            State = "Home"
	StateConsentHandled  State = "ConsentHandled"
	StateSearchSubmitted State = "SearchSubmitted"
	StateResultsReady    State = "ResultsReady"
	StateExtracted       State = "Extracted"
	StateFailed          State = "Failed"
)

const resultsPollInterval = 500 * time.Millisecond

// Options configures a session. Policies are data: the navigation policy
// retries timeouts only, the search policy retries the broader submission
// class.
type Options struct {
	BaseURL     string
	Source      string
	Timing      config.Timing
	Selectors   config.Selectors
	NavRetry    retry.Policy
	SearchRetry retry.Policy
}

// NavPolicy builds the homepage-navigation retry policy from config.
func NavPolicy(r config.Retry) retry.Policy {
	return retry.Policy{
		MaxAttempts:      r.MaxAttempts,
		BaseDelay:        r.BaseDelay,
		MaxDelay:         r.MaxDelay,
		Multiplier:       r.Multiplier,
		RetryableClasses: []string{retry.ClassTimeout},
	}
}

// SearchPolicy builds the search-submission retry policy from config.
func SearchPolicy(r config.Retry) retry.Policy {
	return retry.Policy{
		MaxAttempts:      r.MaxAttempts,
		BaseDelay:        r.BaseDelay,
		MaxDelay:         r.MaxDelay,
		Multiplier:       r.Multiplier,
		RetryableClasses: []string{retry.ClassSubmission, retry.ClassTimeout},
	}
}

// Result is the outcome of one session: the ordered records plus the state
// reached. A failed session carries its cause and diagnostics, never a
// silent empty result indistinguishable from "zero jobs found".
type Result struct {
	Records []models.JobRecord
	State   State
	Cause   error
	Trace   *Trace
	// FailureShot is a best-effort screenshot captured when the session
	// failed; nil on success or when capture itself failed.
	FailureShot []byte
}

// Session drives one page from landing to extracted results. Single logical
// flow: every resolution, fill, click, and wait is sequential against the
// one page; pacing delays between operations are required behavior.
type Session struct {
	page     Page
	opts     Options
	pace     *pacing.Sampler
	limiter  ratelimit.RateLimiter
	resolver *Resolver
	trace    *Trace
	state    State
	log      zerolog.Logger
}

// NewSession creates a session around an open page. The page's lifetime is
// owned by the caller; the session never closes it.
func NewSession(page Page, opts Options, pace *pacing.Sampler, limiter ratelimit.RateLimiter) *Session {
	trace := NewTrace()
	return &Session{
		page:     page,
		opts:     opts,
		pace:     pace,
		limiter:  limiter,
		resolver: NewResolver(trace),
		trace:    trace,
		state:    StateHome,
		log:      log.With().Str("component", "session").Logger(),
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	return s.state
}

// Run executes the full state machine: Home -> ConsentHandled ->
// SearchSubmitted -> ResultsReady -> Extracted. Any unrecoverable error or
// retry exhaustion routes to Failed. The returned Result is always non-nil.
func (s *Session) Run(ctx context.Context, params models.ScrapeParams) (*Result, error) {
	result := &Result{State: s.state, Trace: s.trace}

	if err := s.navigateHome(ctx); err != nil {
		return s.fail(ctx, result, err)
	}

	if err := s.handleConsent(ctx); err != nil {
		return s.fail(ctx, result, err)
	}
	s.transition(StateConsentHandled)

	if err := retry.Do(ctx, s.opts.SearchRetry, func() error {
		return s.submitSearch(ctx, params)
	}); err != nil {
		return s.fail(ctx, result, err)
	}
	s.transition(StateSearchSubmitted)

	if err := s.awaitResults(ctx); err != nil {
		return s.fail(ctx, result, err)
	}
	s.transition(StateResultsReady)

	records, err := s.extract(ctx, params)
	result.Records = records
	if err != nil {
		return s.fail(ctx, result, err)
	}

	s.transition(StateExtracted)
	result.State = s.state
	s.log.Info().Int("records", len(records)).Msg("Session complete")
	return result, nil
}

func (s *Session) transition(to State) {
	s.trace.RecordTransition(s.state, to)
	s.log.Debug().Str("from", string(s.state)).Str("to", string(to)).Msg("State transition")
	s.state = to
}

func (s *Session) fail(ctx context.Context, result *Result, cause error) (*Result, error) {
	s.transition(StateFailed)
	result.State = StateFailed
	result.Cause = cause

	// Best-effort screenshot; the session is already failing.
	if shot, err := s.page.Screenshot(ctx); err == nil {
		result.FailureShot = shot
	}

	s.log.Error().Err(cause).Str("state_at_failure", string(StateFailed)).Msg("Session failed")
	return result, cause
}

// navigateHome loads the landing page, retrying on the timeout class only,
// then waits for load-complete and a reading pause before proceeding.
func (s *Session) navigateHome(ctx context.Context) error {
	if err := s.limiter.Wait(ctx, s.opts.BaseURL); err != nil {
		return err
	}

	s.log.Info().Str("url", s.opts.BaseURL).Msg("Navigating to homepage")

	return retry.Do(ctx, s.opts.NavRetry, func() error {
		navCtx, cancel := context.WithTimeout(ctx, s.opts.Timing.PageLoadTimeout)
		defer cancel()

		if err := s.page.Navigate(navCtx, s.opts.BaseURL); err != nil {
			return s.classifyNav(ctx, navCtx, err)
		}
		if err := s.page.WaitReady(navCtx); err != nil {
			return s.classifyNav(ctx, navCtx, err)
		}
		return s.pace.Sleep(ctx, s.opts.Timing.ReadDelay)
	})
}

// classifyNav turns budget expiry into the retryable navigation-timeout
// class while letting caller-initiated cancellation escape untouched.
func (s *Session) classifyNav(ctx, navCtx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) || navCtx.Err() != nil {
		return &NavigationTimeoutError{URL: s.opts.BaseURL, Budget: s.opts.Timing.PageLoadTimeout, Err: err}
	}
	return err
}

// handleConsent dismisses the cookie banner when present. The cascade is
// optional: unresolved means no banner, and the session proceeds anyway.
func (s *Session) handleConsent(ctx context.Context) error {
	res, err := s.resolver.Resolve(ctx, s.opts.Selectors.CookieConsent, s.page)
	if err != nil {
		return err
	}
	if res == nil {
		s.log.Debug().Msg("No consent banner found")
		return nil
	}

	s.log.Info().Str("selector", res.Selector).Msg("Accepting consent banner")
	return s.pacedClick(ctx, res.Element)
}

// submitSearch fills the search form and submits it. Every failure in here
// is wrapped as the broad retryable submission class, except cancellation.
func (s *Session) submitSearch(ctx context.Context, params models.ScrapeParams) error {
	err := s.doSubmitSearch(ctx, params)
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	return &SearchSubmissionError{Err: err}
}

func (s *Session) doSubmitSearch(ctx context.Context, params models.ScrapeParams) error {
	s.log.Info().Str("title", params.JobTitle).Str("location", params.Location).Msg("Submitting job search")

	// Wait for the search form to render before resolving against it.
	formSelector := strings.Join(s.opts.Selectors.JobTitleInput.Candidates, ", ")
	if err := s.page.WaitVisible(ctx, formSelector, s.opts.Timing.ElementTimeout); err != nil {
		return err
	}
	if err := s.pace.Sleep(ctx, s.opts.Timing.ReadDelay); err != nil {
		return err
	}

	title, err := s.resolver.ResolveMandatory(ctx, s.opts.Selectors.JobTitleInput, s.page)
	if err != nil {
		return err
	}
	if err := s.fillField(ctx, title.Element, params.JobTitle); err != nil {
		return err
	}

	// The location field is optional: proceed without it when unresolved.
	loc, err := s.resolver.Resolve(ctx, s.opts.Selectors.LocationInput, s.page)
	if err != nil {
		return err
	}
	if loc != nil {
		if err := s.fillField(ctx, loc.Element, params.Location); err != nil {
			return err
		}
	} else {
		s.log.Warn().Msg("Location input not found, continuing without it")
	}

	// Submit via the button, or the Enter key when no button resolves.
	button, err := s.resolver.Resolve(ctx, s.opts.Selectors.SearchButton, s.page)
	if err != nil {
		return err
	}
	if button != nil {
		return s.pacedClick(ctx, button.Element)
	}
	s.log.Info().Msg("Search button not found, pressing Enter")
	return title.Element.Press(ctx, "Enter")
}

// fillField clears prior content, then types character-by-character with an
// independent pacing delay per keystroke. Clearing first mirrors how a human
// overwrites a field and avoids residual placeholder text.
func (s *Session) fillField(ctx context.Context, el Element, text string) error {
	if err := el.Click(ctx); err != nil {
		return err
	}
	if err := s.pace.Sleep(ctx, s.opts.Timing.FieldPause); err != nil {
		return err
	}
	if err := el.Clear(ctx); err != nil {
		return err
	}
	for _, c := range text {
		if err := el.TypeChar(ctx, c); err != nil {
			return err
		}
		if err := s.pace.Sleep(ctx, s.opts.Timing.TypingDelay); err != nil {
			return err
		}
	}
	return s.pace.Sleep(ctx, s.opts.Timing.FieldPause)
}

func (s *Session) pacedClick(ctx context.Context, el Element) error {
	if err := s.pace.Sleep(ctx, s.opts.Timing.ClickDelay); err != nil {
		return err
	}
	if err := el.Click(ctx); err != nil {
		return err
	}
	return s.pace.Sleep(ctx, s.opts.Timing.ReadDelay)
}

// awaitResults polls for the results indicator or the listing cascade within
// the results budget. Expiry here is terminal: it routes to Failed with a
// diagnostic snapshot rather than being retried indefinitely, because markup
// that never produced results will not change on retry.
func (s *Session) awaitResults(ctx context.Context) error {
	deadline := time.Now().Add(s.opts.Timing.ResultsTimeout)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		indicator, err := s.resolver.Resolve(ctx, s.opts.Selectors.ResultsIndicator, s.page)
		if err != nil {
			return err
		}
		if indicator != nil {
			s.log.Info().Str("selector", indicator.Selector).Msg("Results indicator found")
			return s.pace.Sleep(ctx, s.opts.Timing.ReadDelay)
		}

		listings, err := s.resolver.Resolve(ctx, s.opts.Selectors.JobListings, s.page)
		if err != nil {
			return err
		}
		if listings != nil {
			s.log.Info().Str("selector", listings.Selector).Msg("Listings visible before indicator")
			return s.pace.Sleep(ctx, s.opts.Timing.ReadDelay)
		}

		if time.Now().After(deadline) {
			snap := s.snapshot(ctx)
			return &UnrecognizedPageStructureError{
				Reason:   "results did not appear within budget",
				Snapshot: snap,
			}
		}

		timer := time.NewTimer(resultsPollInterval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// snapshot captures the diagnostic view of an unrecognized page: a body
// text preview and coarse element counts.
func (s *Session) snapshot(ctx context.Context) PageSnapshot {
	snap := PageSnapshot{}

	if u, err := s.page.URL(ctx); err == nil {
		snap.URL = u
	}
	if text, err := s.page.BodyText(ctx); err == nil {
		text = strings.TrimSpace(text)
		if len(text) > 500 {
			text = text[:500]
		}
		snap.TextPreview = text
	}
	if counts, err := s.page.TagCounts(ctx, "article", "li", "div", "a"); err == nil {
		snap.TagCounts = counts
	}
	return snap
}
