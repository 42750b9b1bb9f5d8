package config

import "github.com/job-seekers/harvest/pkg/models"

// Selectors holds the per-role selector cascades for the target site.
// These are configuration data, not logic: the resolver applies one
// resolution algorithm to every role. The site's DOM changes frequently;
// update the cascades here when scraping breaks.
type Selectors struct {
	JobTitleInput    models.SelectorSet
	LocationInput    models.SelectorSet
	SearchButton     models.SelectorSet
	CookieConsent    models.SelectorSet
	ResultsIndicator models.SelectorSet
	JobListings      models.SelectorSet
	JobTitle         models.SelectorSet
	JobLocation      models.SelectorSet
	JobDate          models.SelectorSet
	JobDescription   models.SelectorSet
	JobLink          models.SelectorSet

	// JobLinkFallback matches job-detail anchors anywhere on the page.
	// Anchor href patterns are the most stable part of the markup, so when
	// the listing cascade fails the pipeline falls back to these anchors
	// and walks up to ListingAncestor.
	JobLinkFallback string
	ListingAncestor string
}

// DefaultSelectors returns the cascades for the target careers site,
// ordered most specific first.
func DefaultSelectors() Selectors {
	return Selectors{
		JobTitleInput: models.SelectorSet{
			Role:      "job_title_input",
			Mandatory: true,
			Candidates: []string{
				"#search-box9",
				"input.ms-SearchBox-field",
				`input[placeholder*="keyword"]`,
				`input[placeholder*="job title"]`,
				`input[aria-label*="job title"]`,
				`input[aria-label*="keyword"]`,
				`input[role="searchbox"]`,
				`input[type="search"]`,
				"#keyword",
			},
		},
		LocationInput: models.SelectorSet{
			Role: "location_input",
			Candidates: []string{
				"input#location-box9",
				`input[id*="location"]`,
				`input[placeholder*="location"]`,
				`input[aria-label*="location"]`,
				`input[placeholder*="city"]`,
				`input[placeholder*="where"]`,
				`input[name*="location"]`,
				"#location",
			},
		},
		SearchButton: models.SelectorSet{
			Role:         "search_button",
			TextContains: []string{"find", "search"},
			Candidates: []string{
				"button",
				`button[type="submit"]`,
				`input[type="submit"]`,
				".search-button",
				`button[aria-label*="search"]`,
				`button[aria-label*="find"]`,
			},
		},
		CookieConsent: models.SelectorSet{
			Role:         "cookie_consent",
			TextContains: []string{"accept", "i agree"},
			Candidates: []string{
				"button",
				"#cookie-banner button",
			},
		},
		ResultsIndicator: models.SelectorSet{
			Role:         "results_indicator",
			TextContains: []string{"result"},
			Candidates:   []string{"h1"},
		},
		JobListings: models.SelectorSet{
			Role:       "job_listings",
			Mandatory:  true,
			MinTextLen: 30,
			Candidates: []string{
				`div.ms-List-cell[role="listitem"]`,
				`[role="listitem"].ms-List-cell`,
				".ms-List-cell",
				`[role="listitem"]`,
				"[data-job-id]",
				`[data-automation*="job"]`,
				"article",
				`ul[role="list"] > li`,
				`[class*="jobCard"]`,
				`[class*="job-card"]`,
				`[class*="JobCard"]`,
				".job-listing",
				".job-item",
				`[class*="searchResult"]`,
				`[class*="result-item"]`,
			},
		},
		JobTitle: models.SelectorSet{
			Role: "job_title",
			Candidates: []string{
				"h2.MZGzlrn8gfgSs8TZHhv2",
				"h2", "h3", "h4",
				`[class*="title"]`,
				`[class*="Title"]`,
				`[data-automation*="title"]`,
				`a[class*="title"]`,
				".ms-Link",
			},
		},
		JobLocation: models.SelectorSet{
			Role: "job_location",
			Candidates: []string{
				`i[data-icon-name="POI"] + span`,
				"i.wwxC8vs2c2O5YaFddx7C + span",
				`[class*="location"]`,
				`[class*="Location"]`,
				`[aria-label*="location"]`,
				`[data-automation*="location"]`,
				`span[class*="city"]`,
				`div[class*="city"]`,
			},
		},
		JobDate: models.SelectorSet{
			Role: "job_date",
			Candidates: []string{
				`i[data-icon-name="Clock"] + span`,
				`[class*="date"]`,
				`[class*="Date"]`,
				`[class*="posted"]`,
				`[class*="Posted"]`,
				`[data-automation*="date"]`,
				"time",
			},
		},
		JobDescription: models.SelectorSet{
			Role:       "job_description",
			MinTextLen: 20,
			Candidates: []string{
				`span[aria-label="job description"]`,
				"span.css-544",
				"p",
				`[class*="description"]`,
				`[class*="Description"]`,
				`[class*="snippet"]`,
				`[data-automation*="description"]`,
			},
		},
		JobLink: models.SelectorSet{
			Role:       "job_link",
			Candidates: []string{`a[href*="/job/"]`, "a[href]"},
		},

		JobLinkFallback: `a[href*="/job/"]`,
		ListingAncestor: "li, div, article",
	}
}

// Roles returns every cascade in a stable order, for diagnostics and the
// probe command.
func (s Selectors) Roles() []models.SelectorSet {
	return []models.SelectorSet{
		s.JobTitleInput,
		s.LocationInput,
		s.SearchButton,
		s.CookieConsent,
		s.ResultsIndicator,
		s.JobListings,
		s.JobTitle,
		s.JobLocation,
		s.JobDate,
		s.JobDescription,
		s.JobLink,
	}
}
