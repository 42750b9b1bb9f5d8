package models

// SelectorSet is an ordered sequence of candidate CSS selectors for one
// semantic role. Earlier candidates are more specific and are tried first;
// later entries are generic fallbacks. Immutable once loaded; the resolver
// references it, never copies it.
type SelectorSet struct {
	// Role names the semantic purpose, e.g. "job_title_input".
	Role string
	// Candidates are tried in order; the first match that validates wins.
	Candidates []string
	// Mandatory roles abort the current operation when no candidate
	// resolves; optional roles degrade to NotAvailable.
	Mandatory bool
	// MinTextLen, when > 0, rejects matches whose trimmed text content is
	// shorter. Guards against container class names matching visually
	// empty wrappers.
	MinTextLen int
	// TextContains, when non-empty, accepts a match only if its text
	// contains one of these substrings (case-insensitive). Used for roles
	// the markup distinguishes by label rather than structure, e.g.
	// consent buttons.
	TextContains []string
}
