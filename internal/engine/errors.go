package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/job-seekers/harvest/internal/retry"
)

// Common engine errors
var (
	ErrBrowserNotFound = errors.New("chrome browser not found")
	ErrSessionClosed   = errors.New("browser session closed")
)

// ElementNotFoundError reports a mandatory resolution that exhausted every
// candidate in its cascade. It carries the role and the full list of
// selectors tried, for diagnosability.
type ElementNotFoundError struct {
	Role  string
	Tried []string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("no element found for mandatory role %q after trying %d selectors", e.Role, len(e.Tried))
}

// FailureClass implements retry.Classifier.
func (e *ElementNotFoundError) FailureClass() string { return retry.ClassNotFound }

// NavigationTimeoutError reports a page load that exceeded its budget.
// Retryable for homepage navigation.
type NavigationTimeoutError struct {
	URL    string
	Budget time.Duration
	Err    error
}

func (e *NavigationTimeoutError) Error() string {
	return fmt.Sprintf("navigation to %s timed out after %s: %v", e.URL, e.Budget, e.Err)
}

func (e *NavigationTimeoutError) Unwrap() error { return e.Err }

// FailureClass implements retry.Classifier.
func (e *NavigationTimeoutError) FailureClass() string { return retry.ClassTimeout }

// SearchSubmissionError wraps any failure during the search step. The
// failure surface there (selector drift, transient render delay) is broad
// and poorly classifiable, so the whole class is retryable.
type SearchSubmissionError struct {
	Err error
}

func (e *SearchSubmissionError) Error() string {
	return fmt.Sprintf("search submission failed: %v", e.Err)
}

func (e *SearchSubmissionError) Unwrap() error { return e.Err }

// FailureClass implements retry.Classifier.
func (e *SearchSubmissionError) FailureClass() string { return retry.ClassSubmission }

// PageSnapshot is a diagnostic capture of an unrecognized page: a preview of
// the body text and counts of common container tags.
type PageSnapshot struct {
	URL         string         `json:"url"`
	TextPreview string         `json:"text_preview"`
	TagCounts   map[string]int `json:"tag_counts"`
}

// UnrecognizedPageStructureError reports that the listing cascade and its
// anchor-based fallback both failed, or that results never appeared. Fatal:
// retrying will not change the markup.
type UnrecognizedPageStructureError struct {
	Reason   string
	Snapshot PageSnapshot
}

func (e *UnrecognizedPageStructureError) Error() string {
	return fmt.Sprintf("unrecognized page structure: %s", e.Reason)
}

// FailureClass implements retry.Classifier.
func (e *UnrecognizedPageStructureError) FailureClass() string { return retry.ClassStructure }
