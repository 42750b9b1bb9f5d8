package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/job-seekers/harvest/internal/config"
	"github.com/job-seekers/harvest/internal/pacing"
	"github.com/job-seekers/harvest/internal/retry"
	"github.com/job-seekers/harvest/pkg/models"
)

const testBaseURL = "https://careers.example.com/v2/global/en/home.html"

const homeHTML = `<html><body>
	<div id="cookie-banner"><button id="accept-cookies">Accept all cookies</button></div>
	<input id="search-box9" placeholder="Search by job title">
	<input id="location-box9" placeholder="City or region">
	<button id="find-jobs">Find jobs</button>
</body></html>`

const resultsHTML = `<html><body>
	<h1>3 results found for "AI"</h1>
	<ul role="list">
		<li><div class="ms-List-cell" role="listitem" data-job-id="1001">
			<h2 class="MZGzlrn8gfgSs8TZHhv2">AI Engineer</h2>
			<i data-icon-name="POI"></i><span>Seattle, WA</span>
			<i data-icon-name="Clock"></i><span>Posted 3 days ago</span>
			<span aria-label="job description">Build and ship large-scale models for search ranking.</span>
			<a href="/v2/global/en/job/1001/ai-engineer">See details</a>
		</div></li>
		<li><div class="ms-List-cell" role="listitem" data-job-id="1002">
			<h2 class="MZGzlrn8gfgSs8TZHhv2">Machine Learning Scientist</h2>
			<i data-icon-name="POI"></i><span>Redmond, WA</span>
			<i data-icon-name="Clock"></i><span>Posted today</span>
			<span aria-label="job description">Research applied to production recommendation systems.</span>
			<a href="/v2/global/en/job/1002/ml-scientist">See details</a>
		</div></li>
		<li><div class="ms-List-cell" role="listitem" data-job-id="1003">
			<h2 class="MZGzlrn8gfgSs8TZHhv2">AI Product Manager</h2>
			<i data-icon-name="POI"></i><span>Redmond, WA</span>
			<i data-icon-name="Clock"></i><span>Posted 1 week ago</span>
			<span aria-label="job description">Own the roadmap for generative assistant features.</span>
			<a href="/v2/global/en/job/1003/ai-pm">See details</a>
		</div></li>
	</ul>
</body></html>`

func instantTiming() config.Timing {
	zero := config.DelayBounds{}
	return config.Timing{
		ReadDelay:       zero,
		TypingDelay:     zero,
		ClickDelay:      zero,
		RecordDelay:     zero,
		FieldPause:      zero,
		PageLoadTimeout: time.Second,
		ElementTimeout:  time.Second,
		ResultsTimeout:  200 * time.Millisecond,
	}
}

func instantPolicy(attempts int, classes ...string) retry.Policy {
	return retry.Policy{
		MaxAttempts:      attempts,
		BaseDelay:        4 * time.Second,
		MaxDelay:         30 * time.Second,
		Multiplier:       2,
		RetryableClasses: classes,
		Sleep:            func(context.Context, time.Duration) error { return nil },
	}
}

func testOptions() Options {
	return Options{
		BaseURL:     testBaseURL,
		Source:      "careers.example.com",
		Timing:      instantTiming(),
		Selectors:   config.DefaultSelectors(),
		NavRetry:    instantPolicy(3, retry.ClassTimeout),
		SearchRetry: instantPolicy(3, retry.ClassSubmission, retry.ClassTimeout),
	}
}

type nopLimiter struct{}

func (nopLimiter) Wait(context.Context, string) error { return nil }
func (nopLimiter) Allow(string) bool                  { return true }

func newTestSession(page Page, opts Options) *Session {
	return NewSession(page, opts, pacing.NewSeeded(1), nopLimiter{})
}

// searchFlowPage wires a home document whose search button swaps in the
// results document, the way the live site reacts to a submission.
func searchFlowPage(home string) *fakePage {
	p := newFakePage(map[string]string{testBaseURL: home})
	p.onClick = func(p *fakePage, sel *goquery.Selection) {
		if id, _ := sel.Attr("id"); id == "find-jobs" {
			p.setHTML(resultsHTML)
		}
	}
	return p
}

func TestRunHappyPath(t *testing.T) {
	page := searchFlowPage(homeHTML)
	s := newTestSession(page, testOptions())

	res, err := s.Run(context.Background(), models.ScrapeParams{
		JobTitle: "AI", Location: "Seattle", MaxJobs: 50,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.State != StateExtracted {
		t.Fatalf("expected Extracted, got %s", res.State)
	}
	if len(res.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(res.Records))
	}

	wantTitles := []string{"AI Engineer", "Machine Learning Scientist", "AI Product Manager"}
	wantLocations := []string{"Seattle, WA", "Redmond, WA", "Redmond, WA"}
	for i, rec := range res.Records {
		if rec.Title.String() != wantTitles[i] {
			t.Errorf("record %d title = %q, want %q", i, rec.Title.String(), wantTitles[i])
		}
		if rec.Location.String() != wantLocations[i] {
			t.Errorf("record %d location = %q, want %q", i, rec.Location.String(), wantLocations[i])
		}
		if !rec.PostedDate.Resolved() {
			t.Errorf("record %d has no posted date", i)
		}
		if !rec.Description.Resolved() {
			t.Errorf("record %d has no description", i)
		}
		if rec.SearchTerm != "AI" || rec.SearchLocation != "Seattle" {
			t.Errorf("record %d search echo wrong: %q %q", i, rec.SearchTerm, rec.SearchLocation)
		}
		if rec.ScrapedAt.IsZero() {
			t.Errorf("record %d missing scrape timestamp", i)
		}
	}

	if url := res.Records[0].URL.String(); !strings.HasSuffix(url, "/v2/global/en/job/1001/ai-engineer") {
		t.Errorf("record URL not resolved against base: %q", url)
	}
	if !strings.HasPrefix(res.Records[0].URL.String(), "https://careers.example.com/") {
		t.Errorf("record URL not absolute: %q", res.Records[0].URL.String())
	}

	// Consent was accepted, both fields were focused, and the button was
	// clicked, in that order.
	wantClicks := []string{"#accept-cookies", "#search-box9", "#location-box9", "#find-jobs"}
	if len(page.clicks) != len(wantClicks) {
		t.Fatalf("clicks = %v, want %v", page.clicks, wantClicks)
	}
	for i := range wantClicks {
		if page.clicks[i] != wantClicks[i] {
			t.Fatalf("clicks = %v, want %v", page.clicks, wantClicks)
		}
	}
}

func TestRunTransitionOrder(t *testing.T) {
	page := searchFlowPage(homeHTML)
	s := newTestSession(page, testOptions())

	if _, err := s.Run(context.Background(), models.ScrapeParams{JobTitle: "AI", MaxJobs: 10}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []struct{ from, to State }{
		{StateHome, StateConsentHandled},
		{StateConsentHandled, StateSearchSubmitted},
		{StateSearchSubmitted, StateResultsReady},
		{StateResultsReady, StateExtracted},
	}
	got := s.trace.Transitions()
	if len(got) != len(want) {
		t.Fatalf("transitions = %v", got)
	}
	for i, w := range want {
		if got[i].From != w.from || got[i].To != w.to {
			t.Errorf("transition %d = %s -> %s, want %s -> %s", i, got[i].From, got[i].To, w.from, w.to)
		}
	}
}

func TestRunTypesExactTextIntoLateCandidate(t *testing.T) {
	// Candidates 1-2 of the title cascade miss; only the placeholder
	// candidate matches. The session must still type the full search term
	// into that input, character by character.
	const altHome = `<html><body>
		<input placeholder="Search by keyword" id="kw">
		<button id="find-jobs">Find jobs</button>
	</body></html>`

	page := searchFlowPage(altHome)
	var typed string
	base := page.onClick
	page.onClick = func(p *fakePage, sel *goquery.Selection) {
		if id, _ := sel.Attr("id"); id == "find-jobs" {
			typed = p.value(`input[placeholder*="keyword"]`)
		}
		base(p, sel)
	}

	s := newTestSession(page, testOptions())
	res, err := s.Run(context.Background(), models.ScrapeParams{JobTitle: "Machine Learning", MaxJobs: 5})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.State != StateExtracted {
		t.Fatalf("expected Extracted, got %s", res.State)
	}
	if typed != "Machine Learning" {
		t.Errorf("typed %q, want %q", typed, "Machine Learning")
	}
}

func TestRunWithoutLocationInput(t *testing.T) {
	// No location field anywhere: the session proceeds on the title alone.
	const noLocHome = `<html><body>
		<input id="search-box9">
		<button id="find-jobs">Find jobs</button>
	</body></html>`

	page := searchFlowPage(noLocHome)
	s := newTestSession(page, testOptions())

	res, err := s.Run(context.Background(), models.ScrapeParams{JobTitle: "AI", Location: "Seattle", MaxJobs: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.State != StateExtracted {
		t.Fatalf("expected Extracted, got %s", res.State)
	}
}

func TestRunEnterFallbackWhenNoButton(t *testing.T) {
	const buttonlessHome = `<html><body>
		<input id="search-box9">
	</body></html>`

	page := newFakePage(map[string]string{testBaseURL: buttonlessHome})
	page.onEnter = func(p *fakePage) { p.setHTML(resultsHTML) }

	s := newTestSession(page, testOptions())
	res, err := s.Run(context.Background(), models.ScrapeParams{JobTitle: "AI", MaxJobs: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.State != StateExtracted || len(res.Records) != 3 {
		t.Fatalf("expected 3 records via Enter submission, got state=%s records=%d", res.State, len(res.Records))
	}
}

func TestRunRetriesNavigationTimeout(t *testing.T) {
	page := searchFlowPage(homeHTML)
	page.navTimeouts = 1

	s := newTestSession(page, testOptions())
	res, err := s.Run(context.Background(), models.ScrapeParams{JobTitle: "AI", MaxJobs: 10})
	if err != nil {
		t.Fatalf("expected recovery on second navigation, got %v", err)
	}
	if res.State != StateExtracted {
		t.Fatalf("expected Extracted, got %s", res.State)
	}
	if page.navCount != 2 {
		t.Errorf("expected 2 navigation attempts, got %d", page.navCount)
	}
}

func TestRunNavigationExhaustionFails(t *testing.T) {
	page := searchFlowPage(homeHTML)
	page.navTimeouts = 10

	s := newTestSession(page, testOptions())
	res, err := s.Run(context.Background(), models.ScrapeParams{JobTitle: "AI", MaxJobs: 10})
	if err == nil {
		t.Fatal("expected failure after exhausting navigation retries")
	}
	if res.State != StateFailed {
		t.Fatalf("expected Failed, got %s", res.State)
	}

	var navErr *NavigationTimeoutError
	if !errors.As(err, &navErr) {
		t.Fatalf("expected NavigationTimeoutError, got %v", err)
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("expected exhaustion annotation, got %q", err)
	}
	if page.navCount != 3 {
		t.Errorf("expected 3 navigation attempts, got %d", page.navCount)
	}
}

func TestRunUnrecognizedResultsPageFails(t *testing.T) {
	// The submission lands on a page with neither a results indicator nor
	// anything the listing cascade recognizes. That must surface as a
	// structure failure with diagnostics, not as an empty success.
	const degradedResults = `<html><body>
		<div class="obfuscated-x7">loading experience</div>
	</body></html>`

	page := newFakePage(map[string]string{testBaseURL: homeHTML})
	page.onClick = func(p *fakePage, sel *goquery.Selection) {
		if id, _ := sel.Attr("id"); id == "find-jobs" {
			p.setHTML(degradedResults)
		}
	}

	opts := testOptions()
	opts.Timing.ResultsTimeout = 0

	s := newTestSession(page, opts)
	res, err := s.Run(context.Background(), models.ScrapeParams{JobTitle: "AI", MaxJobs: 10})
	if err == nil {
		t.Fatal("expected failure on unrecognized results page")
	}
	if res.State != StateFailed {
		t.Fatalf("expected Failed, got %s", res.State)
	}
	if len(res.Records) != 0 {
		t.Fatalf("failed session must not carry records, got %d", len(res.Records))
	}

	var structErr *UnrecognizedPageStructureError
	if !errors.As(err, &structErr) {
		t.Fatalf("expected UnrecognizedPageStructureError, got %v", err)
	}
	if structErr.Snapshot.TextPreview == "" {
		t.Error("expected a body text preview in the snapshot")
	}
	if res.Cause == nil {
		t.Error("result must carry its cause")
	}
}

func TestRunMissingSearchFormFails(t *testing.T) {
	// A homepage with no recognizable search input exhausts the submission
	// retries and fails with the cascade's tried list.
	const bareHome = `<html><body><p>redesigned landing page</p></body></html>`

	page := newFakePage(map[string]string{testBaseURL: bareHome})

	opts := testOptions()
	opts.Timing.ElementTimeout = 10 * time.Millisecond

	s := newTestSession(page, opts)
	res, err := s.Run(context.Background(), models.ScrapeParams{JobTitle: "AI", MaxJobs: 10})
	if err == nil {
		t.Fatal("expected failure when no search input exists")
	}
	if res.State != StateFailed {
		t.Fatalf("expected Failed, got %s", res.State)
	}

	var subErr *SearchSubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected SearchSubmissionError, got %v", err)
	}
}

func TestRunCancellationPropagates(t *testing.T) {
	page := searchFlowPage(homeHTML)
	s := newTestSession(page, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.Run(ctx, models.ScrapeParams{JobTitle: "AI", MaxJobs: 10})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.State != StateFailed {
		t.Fatalf("expected Failed, got %s", res.State)
	}
}
