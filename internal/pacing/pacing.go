// Package pacing produces randomized wait intervals that emulate human
// timing for typing, clicking, and reading.
package pacing

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Bounds is an inclusive delay interval.
type Bounds struct {
	Min time.Duration
	Max time.Duration
}

// Sampler draws uniform delays from configured bounds. Safe for use from a
// single session goroutine; the mutex only guards the shared rand source.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Sampler seeded from the wall clock.
func New() *Sampler {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Sampler with a fixed seed, for reproducible tests.
func NewSeeded(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))}
}

// Sample returns a uniformly-distributed duration in [b.Min, b.Max].
func (s *Sampler) Sample(b Bounds) time.Duration {
	if b.Max <= b.Min {
		return b.Min
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return b.Min + time.Duration(s.rng.Int63n(int64(b.Max-b.Min)+1))
}

// Sleep suspends for a sampled delay, or returns early with the context
// error on cancellation. It has no side effect besides the suspension.
func (s *Sampler) Sleep(ctx context.Context, b Bounds) error {
	d := s.Sample(b)
	if d <= 0 {
		return ctx.Err()
	}
	log.Trace().Dur("delay", d).Msg("Pacing")

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
