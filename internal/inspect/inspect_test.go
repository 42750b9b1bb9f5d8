package inspect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/job-seekers/harvest/internal/ratelimit"
	"github.com/job-seekers/harvest/pkg/models"
)

func docFrom(t *testing.T, raw string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestAuditReportsPerCandidate(t *testing.T) {
	doc := docFrom(t, `<html><body>
		<input placeholder="Search by keyword">
		<h2>AI Engineer</h2><h2>Data Scientist</h2>
	</body></html>`)

	roles := []models.SelectorSet{
		{
			Role: "job_title_input",
			Candidates: []string{
				"#search-box9",
				`input[placeholder*="keyword"]`,
			},
		},
		{
			Role:       "job_title",
			Candidates: []string{"h2"},
		},
		{
			Role:       "job_location",
			Candidates: []string{`[class*="location"]`},
		},
	}

	reports := Audit(doc, roles)
	if len(reports) != 3 {
		t.Fatalf("expected 3 role reports, got %d", len(reports))
	}

	input := reports[0]
	if !input.Resolved {
		t.Error("input role should resolve")
	}
	if input.Candidates[0].Matches != 0 || input.Candidates[1].Matches != 1 {
		t.Errorf("input candidates = %+v", input.Candidates)
	}

	title := reports[1]
	if title.Candidates[0].Matches != 2 {
		t.Errorf("title matches = %d, want 2", title.Candidates[0].Matches)
	}
	if title.Candidates[0].Sample != "AI Engineer" {
		t.Errorf("sample = %q", title.Candidates[0].Sample)
	}

	if reports[2].Resolved {
		t.Error("location role should not resolve")
	}
}

func TestAuditTruncatesSample(t *testing.T) {
	doc := docFrom(t, "<html><body><h2>"+strings.Repeat("long title ", 30)+"</h2></body></html>")

	reports := Audit(doc, []models.SelectorSet{{Role: "job_title", Candidates: []string{"h2"}}})
	if got := len(reports[0].Candidates[0].Sample); got > 80 {
		t.Errorf("sample length = %d", got)
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "harvest-test" {
			t.Errorf("user agent = %q", ua)
		}
		w.Write([]byte(`<html><body><h1>42 results found</h1></body></html>`))
	}))
	defer srv.Close()

	p := New(ratelimit.NewDomainLimiter(100, 10), 5*time.Second, "harvest-test")
	doc, err := p.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if got := doc.Find("h1").Text(); got != "42 results found" {
		t.Errorf("h1 = %q", got)
	}
}

func TestFetchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	p := New(ratelimit.NewDomainLimiter(100, 10), 5*time.Second, "harvest-test")
	if _, err := p.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error on HTTP 403")
	}
}
