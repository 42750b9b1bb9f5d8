package models

import (
	"encoding/json"
	"time"
)

// NotAvailable is the marker written for optional fields that could not be
// resolved from the page. Records always carry every field; absence is data,
// not an error.
const NotAvailable = "N/A"

// Field is an optional record value: either resolved text or absent.
// The zero value is absent.
type Field struct {
	value string
	ok    bool
}

// FieldOf returns a resolved Field. An empty string still counts as resolved;
// use the zero value for absence.
func FieldOf(value string) Field {
	return Field{value: value, ok: true}
}

// Value returns the resolved text and whether the field was resolved.
func (f Field) Value() (string, bool) {
	return f.value, f.ok
}

// Resolved reports whether the field carries a value.
func (f Field) Resolved() bool {
	return f.ok
}

// String returns the resolved text, or the NotAvailable marker.
func (f Field) String() string {
	if !f.ok {
		return NotAvailable
	}
	return f.value
}

// MarshalJSON writes the resolved text or the NotAvailable marker.
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON reads a string; the NotAvailable marker round-trips to absent.
func (f *Field) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == NotAvailable {
		*f = Field{}
		return nil
	}
	*f = FieldOf(s)
	return nil
}

// JobRecord is one extracted job posting. Optional fields degrade to the
// NotAvailable marker. A record is created once per matched listing element
// and never mutated after being appended to the result sequence.
type JobRecord struct {
	Title          Field     `json:"title"`
	Location       Field     `json:"job_location"`
	PostedDate     Field     `json:"posted_date"`
	Description    Field     `json:"description"`
	URL            Field     `json:"url"`
	ScrapedAt      time.Time `json:"scraped_at"`
	SearchTerm     string    `json:"search_term"`
	SearchLocation string    `json:"search_location"`
	Source         string    `json:"source"`
}

// ScrapeParams describes one scraping session request.
type ScrapeParams struct {
	JobTitle string
	Location string
	MaxJobs  int
	Headless bool
}
