package engine

import (
	"fmt"
	"time"
)

const traceLimit = 50

// SelectorAttempt records one candidate tried during resolution.
type SelectorAttempt struct {
	Role     string    `json:"role"`
	Selector string    `json:"selector"`
	Matched  bool      `json:"matched"`
	At       time.Time `json:"at"`
}

// Transition records one state machine step.
type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

// Trace is the per-session diagnostic context: the last attempted selectors
// and state transitions, used for failure reporting. Created per session and
// discarded at session end; there is no global diagnostic state.
type Trace struct {
	attempts    []SelectorAttempt
	transitions []Transition
}

// NewTrace returns an empty trace.
func NewTrace() *Trace {
	return &Trace{}
}

// RecordAttempt appends a selector attempt, keeping only the most recent ones.
func (t *Trace) RecordAttempt(role, selector string, matched bool) {
	t.attempts = append(t.attempts, SelectorAttempt{
		Role:     role,
		Selector: selector,
		Matched:  matched,
		At:       time.Now(),
	})
	if len(t.attempts) > traceLimit {
		t.attempts = t.attempts[len(t.attempts)-traceLimit:]
	}
}

// RecordTransition appends a state transition.
func (t *Trace) RecordTransition(from, to State) {
	t.transitions = append(t.transitions, Transition{From: from, To: to, At: time.Now()})
}

// Attempts returns the recorded selector attempts, oldest first.
func (t *Trace) Attempts() []SelectorAttempt {
	out := make([]SelectorAttempt, len(t.attempts))
	copy(out, t.attempts)
	return out
}

// Transitions returns the recorded state transitions, oldest first.
func (t *Trace) Transitions() []Transition {
	out := make([]Transition, len(t.transitions))
	copy(out, t.transitions)
	return out
}

// Summary renders a short human-readable report for failure output.
func (t *Trace) Summary() string {
	s := ""
	for _, tr := range t.transitions {
		s += fmt.Sprintf("%s -> %s\n", tr.From, tr.To)
	}
	// Only the tail of the attempt log is interesting after a failure
	start := 0
	if len(t.attempts) > 10 {
		start = len(t.attempts) - 10
	}
	for _, a := range t.attempts[start:] {
		mark := "miss"
		if a.Matched {
			mark = "hit"
		}
		s += fmt.Sprintf("  [%s] %s %s\n", a.Role, a.Selector, mark)
	}
	return s
}
