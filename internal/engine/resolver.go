package engine

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/job-seekers/harvest/pkg/models"
)

// validationProbe caps how many matches are content-checked per candidate.
// The first plausible match decides; inspecting the whole set buys nothing.
const validationProbe = 10

// Resolved is the outcome of resolving a SelectorSet: a handle to exactly
// one element plus the selector string that matched.
type Resolved struct {
	Element  Element
	Selector string
}

// Resolver finds the first candidate in a cascade that matches a validated
// element on the live page. First-good-match, not best-match: resolution
// stops at the first candidate that matches and validates, and later
// candidates are never consulted.
type Resolver struct {
	trace *Trace
}

// NewResolver returns a Resolver recording attempts into the given trace.
func NewResolver(trace *Trace) *Resolver {
	return &Resolver{trace: trace}
}

// Resolve iterates the cascade in order against the scope and returns the
// first match that passes the role's content validation. An unresolved
// cascade returns (nil, nil): absence is not an error here; callers decide
// whether it is fatal. Use ResolveMandatory for roles whose absence aborts.
func (r *Resolver) Resolve(ctx context.Context, set models.SelectorSet, scope Queryable) (*Resolved, error) {
	res, _, err := r.resolve(ctx, set, scope)
	return res, err
}

// ResolveAll behaves like Resolve but returns every element matched by the
// winning candidate, for roles that name a collection (job listings).
func (r *Resolver) ResolveAll(ctx context.Context, set models.SelectorSet, scope Queryable) ([]Element, string, error) {
	res, all, err := r.resolve(ctx, set, scope)
	if err != nil || res == nil {
		return nil, "", err
	}
	return all, res.Selector, nil
}

// ResolveMandatory resolves a mandatory role; exhaustion of the cascade is
// an ElementNotFoundError carrying every candidate tried.
func (r *Resolver) ResolveMandatory(ctx context.Context, set models.SelectorSet, scope Queryable) (*Resolved, error) {
	res, err := r.Resolve(ctx, set, scope)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, &ElementNotFoundError{Role: set.Role, Tried: append([]string(nil), set.Candidates...)}
	}
	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, set models.SelectorSet, scope Queryable) (*Resolved, []Element, error) {
	for _, candidate := range set.Candidates {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		matches, err := scope.Query(ctx, candidate)
		if err != nil {
			// A selector the backend cannot evaluate is treated as a miss;
			// the next candidate may still resolve.
			log.Debug().Str("role", set.Role).Str("selector", candidate).Err(err).Msg("Candidate query failed")
			r.trace.RecordAttempt(set.Role, candidate, false)
			continue
		}
		if len(matches) == 0 {
			r.trace.RecordAttempt(set.Role, candidate, false)
			continue
		}

		el := r.validate(ctx, set, matches)
		if el == nil {
			log.Debug().Str("role", set.Role).Str("selector", candidate).
				Int("matches", len(matches)).Msg("Matches failed content validation")
			r.trace.RecordAttempt(set.Role, candidate, false)
			continue
		}

		r.trace.RecordAttempt(set.Role, candidate, true)
		log.Debug().Str("role", set.Role).Str("selector", candidate).
			Int("matches", len(matches)).Msg("Role resolved")
		return &Resolved{Element: el, Selector: candidate}, matches, nil
	}

	return nil, nil, nil
}

// validate returns the first element that passes the set's content checks,
// or nil when none of the probed matches do.
func (r *Resolver) validate(ctx context.Context, set models.SelectorSet, matches []Element) Element {
	if set.MinTextLen == 0 && len(set.TextContains) == 0 {
		return matches[0]
	}

	probe := matches
	if len(probe) > validationProbe {
		probe = probe[:validationProbe]
	}
	for _, el := range probe {
		text, err := el.Text(ctx)
		if err != nil {
			continue
		}
		if plausible(set, strings.TrimSpace(text)) {
			return el
		}
	}
	return nil
}

func plausible(set models.SelectorSet, text string) bool {
	if set.MinTextLen > 0 && len(text) < set.MinTextLen {
		return false
	}
	if len(set.TextContains) > 0 {
		lower := strings.ToLower(text)
		for _, want := range set.TextContains {
			if strings.Contains(lower, strings.ToLower(want)) {
				return true
			}
		}
		return false
	}
	return true
}
