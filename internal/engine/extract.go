package engine

import (
	"context"
	"strings"
	"time"

	"github.com/job-seekers/harvest/internal/urlutil"
	"github.com/job-seekers/harvest/pkg/models"
)

// fallbackAnchorCap bounds the anchor-ancestor fallback walk, matching the
// maximum listing count the target renders per page.
const fallbackAnchorCap = 50

const descriptionFallbackLen = 500

// extract walks the listing elements and emits one record per listing.
// Optional fields resolve independently, scoped to their listing; an
// unresolved optional field yields NotAvailable, never aborts the record.
// It raises only when the mandatory listing role fails with no fallback
// match at all.
func (s *Session) extract(ctx context.Context, params models.ScrapeParams) ([]models.JobRecord, error) {
	listings, selector, err := s.resolver.ResolveAll(ctx, s.opts.Selectors.JobListings, s.page)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		// Container class names are the most volatile part of the markup;
		// anchor href patterns are comparatively stable.
		listings, selector, err = s.anchorFallback(ctx)
		if err != nil {
			return nil, err
		}
	}
	if len(listings) == 0 {
		return nil, &UnrecognizedPageStructureError{
			Reason:   "no listing matched any cascade candidate or job anchor",
			Snapshot: s.snapshot(ctx),
		}
	}

	if len(listings) > params.MaxJobs {
		listings = listings[:params.MaxJobs]
	}
	s.log.Info().Int("count", len(listings)).Str("selector", selector).Msg("Extracting listings")

	records := make([]models.JobRecord, 0, len(listings))
	for i, listing := range listings {
		// Pacing between records preserves the human-timing contract over
		// the whole page, not just per field.
		if err := s.pace.Sleep(ctx, s.opts.Timing.RecordDelay); err != nil {
			return records, err
		}

		rec := s.extractRecord(ctx, listing, params)
		records = append(records, rec)
		s.log.Debug().Int("index", i+1).Str("title", rec.Title.String()).Msg("Scraped listing")
	}

	return records, nil
}

// anchorFallback locates job-detail anchors and walks up to the nearest
// list-item/container ancestor, treating those ancestors as the listing set.
func (s *Session) anchorFallback(ctx context.Context) ([]Element, string, error) {
	sel := s.opts.Selectors.JobLinkFallback
	anchors, err := s.page.Query(ctx, sel)
	if err != nil {
		return nil, "", err
	}
	s.trace.RecordAttempt("job_listings_fallback", sel, len(anchors) > 0)
	if len(anchors) == 0 {
		return nil, "", nil
	}
	if len(anchors) > fallbackAnchorCap {
		anchors = anchors[:fallbackAnchorCap]
	}

	s.log.Warn().Int("anchors", len(anchors)).Msg("Listing cascade failed, using anchor ancestors")

	containers := make([]Element, 0, len(anchors))
	for _, a := range anchors {
		ancestor, err := a.Closest(ctx, s.opts.Selectors.ListingAncestor)
		if err != nil || ancestor == nil {
			continue
		}
		containers = append(containers, ancestor)
	}
	return containers, "ancestor of " + sel, nil
}

// extractRecord resolves each field independently within the listing scope.
// Fields never resolve globally: a title matched outside this listing would
// poison the record.
func (s *Session) extractRecord(ctx context.Context, listing Element, params models.ScrapeParams) models.JobRecord {
	rec := models.JobRecord{
		ScrapedAt:      time.Now(),
		SearchTerm:     params.JobTitle,
		SearchLocation: params.Location,
		Source:         s.opts.Source,
	}

	rec.Title = s.optionalText(ctx, s.opts.Selectors.JobTitle, listing)
	rec.Location = s.optionalText(ctx, s.opts.Selectors.JobLocation, listing)
	rec.PostedDate = s.optionalText(ctx, s.opts.Selectors.JobDate, listing)
	rec.Description = s.description(ctx, listing)
	rec.URL = s.jobURL(ctx, listing)

	return rec
}

// optionalText resolves an optional field role scoped to the listing.
// Unresolved or empty yields the absent Field.
func (s *Session) optionalText(ctx context.Context, set models.SelectorSet, listing Element) models.Field {
	res, err := s.resolver.Resolve(ctx, set, listing)
	if err != nil || res == nil {
		return models.Field{}
	}
	text, err := res.Element.Text(ctx)
	if err != nil {
		return models.Field{}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Field{}
	}
	return models.FieldOf(text)
}

// description prefers the description role's inner HTML (the sink renders it
// to markdown); when no sub-element resolves, the listing's own text is
// informative enough, truncated.
func (s *Session) description(ctx context.Context, listing Element) models.Field {
	res, err := s.resolver.Resolve(ctx, s.opts.Selectors.JobDescription, listing)
	if err == nil && res != nil {
		if html, err := res.Element.HTML(ctx); err == nil && strings.TrimSpace(html) != "" {
			return models.FieldOf(strings.TrimSpace(html))
		}
		if text, err := res.Element.Text(ctx); err == nil && strings.TrimSpace(text) != "" {
			return models.FieldOf(strings.TrimSpace(text))
		}
	}

	text, err := listing.Text(ctx)
	if err != nil {
		return models.Field{}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Field{}
	}
	if len(text) > descriptionFallbackLen {
		text = text[:descriptionFallbackLen]
	}
	return models.FieldOf(text)
}

// jobURL resolves the listing's detail link: an anchor href made absolute
// against the base URL, or the data-job-id attribute when no anchor exists.
func (s *Session) jobURL(ctx context.Context, listing Element) models.Field {
	res, err := s.resolver.Resolve(ctx, s.opts.Selectors.JobLink, listing)
	if err == nil && res != nil {
		if href, ok, err := res.Element.Attribute(ctx, "href"); err == nil && ok && href != "" {
			return models.FieldOf(urlutil.ResolveURL(s.opts.BaseURL, href))
		}
	}

	if id, ok, err := listing.Attribute(ctx, "data-job-id"); err == nil && ok && id != "" {
		return models.FieldOf(urlutil.ResolveURL(s.opts.BaseURL, "/job/"+id))
	}
	return models.Field{}
}
