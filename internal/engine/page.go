// Package engine implements the resilient extraction core: selector cascade
// resolution, the navigation state machine, and the listing extraction
// pipeline. It is defined purely in terms of the Page capabilities below and
// is agnostic to which automation backend supplies them.
package engine

import (
	"context"
	"time"
)

// Element is a handle to exactly one matched DOM node. Ephemeral: valid only
// for the current page state, never cached across navigation transitions
// because the DOM is replaced.
type Element interface {
	Queryable

	// Text returns the trimmed text content of the node.
	Text(ctx context.Context) (string, error)
	// HTML returns the inner HTML of the node.
	HTML(ctx context.Context) (string, error)
	// Attribute returns the named attribute and whether it is present.
	Attribute(ctx context.Context, name string) (string, bool, error)
	// Click dispatches a click on the node.
	Click(ctx context.Context) error
	// Clear empties an input's value.
	Clear(ctx context.Context) error
	// TypeChar sends a single keystroke to the node. The caller owns the
	// pacing between keystrokes.
	TypeChar(ctx context.Context, c rune) error
	// Press sends a named key (e.g. "Enter") to the node.
	Press(ctx context.Context, key string) error
	// Closest walks up the DOM to the nearest ancestor (or self) matching
	// the selector. Returns nil when no ancestor matches.
	Closest(ctx context.Context, selector string) (Element, error)
}

// Queryable scopes a selector query: the whole page or a sub-element.
type Queryable interface {
	// Query returns all elements matching the CSS selector within this
	// scope. A miss is an empty slice, not an error.
	Query(ctx context.Context, selector string) ([]Element, error)
}

// Page is the browser-automation surface the engine drives. One session
// owns one page; the engine never issues two operations concurrently
// against it.
type Page interface {
	Queryable

	// Navigate loads the URL and returns once navigation commits.
	Navigate(ctx context.Context, url string) error
	// WaitReady blocks until the document load-complete signal.
	WaitReady(ctx context.Context) error
	// WaitVisible blocks until the selector matches a visible element, or
	// the timeout elapses.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	// BodyText returns the page's visible text.
	BodyText(ctx context.Context) (string, error)
	// TagCounts counts elements per tag name, for diagnostic snapshots.
	TagCounts(ctx context.Context, tags ...string) (map[string]int, error)
	// URL returns the current page URL.
	URL(ctx context.Context) (string, error)
	// Screenshot captures the viewport as PNG, for failure diagnostics.
	Screenshot(ctx context.Context) ([]byte, error)
}
