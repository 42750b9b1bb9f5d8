// Package inspect audits selector cascades against a fetched page. It is
// the diagnostic side of the scraper: when the live site's markup drifts,
// the probe shows which candidates still match before anyone edits the
// cascades.
package inspect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/job-seekers/harvest/internal/ratelimit"
	"github.com/job-seekers/harvest/pkg/models"
)

// maxBodySize caps how much of a response the probe reads.
const maxBodySize = 10 << 20

// CandidateReport is the audit outcome for one selector candidate.
type CandidateReport struct {
	Selector string `json:"selector"`
	Matches  int    `json:"matches"`
	// Sample is the trimmed text of the first match, truncated.
	Sample string `json:"sample,omitempty"`
}

// RoleReport is the audit outcome for one cascade.
type RoleReport struct {
	Role       string            `json:"role"`
	Resolved   bool              `json:"resolved"`
	Candidates []CandidateReport `json:"candidates"`
}

// Prober fetches pages over plain HTTP and audits cascades against them.
// It sees the server-rendered document only; roles that exist solely in the
// scripted page report zero matches here, which is itself a useful signal.
type Prober struct {
	client    *http.Client
	limiter   ratelimit.RateLimiter
	userAgent string
}

// New creates a Prober.
func New(limiter ratelimit.RateLimiter, timeout time.Duration, userAgent string) *Prober {
	return &Prober{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: timeout,
		},
		limiter:   limiter,
		userAgent: userAgent,
	}
}

// Fetch retrieves the page and parses it.
func (p *Prober) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if err := p.limiter.Wait(ctx, url); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch failed: HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	log.Debug().Str("url", url).Dur("elapsed", time.Since(start)).Msg("Page fetched")
	return doc, nil
}

// Audit runs every cascade against the document and reports per-candidate
// match counts in cascade order.
func Audit(doc *goquery.Document, roles []models.SelectorSet) []RoleReport {
	reports := make([]RoleReport, 0, len(roles))
	for _, set := range roles {
		report := RoleReport{Role: set.Role}
		for _, candidate := range set.Candidates {
			sel := doc.Find(candidate)
			cr := CandidateReport{Selector: candidate, Matches: sel.Length()}
			if sel.Length() > 0 {
				cr.Sample = sampleText(sel.First())
				report.Resolved = true
			}
			report.Candidates = append(report.Candidates, cr)
		}
		reports = append(reports, report)
	}
	return reports
}

func sampleText(sel *goquery.Selection) string {
	text := strings.Join(strings.Fields(sel.Text()), " ")
	if len(text) > 80 {
		text = text[:80]
	}
	return text
}
