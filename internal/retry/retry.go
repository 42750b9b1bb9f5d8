// Package retry wraps fallible operations with bounded attempts and
// exponential backoff, differentiated by failure class.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

// Classifier is implemented by errors that know their failure class.
// Errors without a class fall back to ClassTimeout when they look like
// timeouts, ClassGeneric otherwise.
type Classifier interface {
	FailureClass() string
}

// Well-known failure classes.
const (
	ClassTimeout    = "timeout"
	ClassSubmission = "submission"
	ClassNotFound   = "not_found"
	ClassStructure  = "structure"
	ClassGeneric    = "generic"
)

// Policy defines retry behavior with exponential backoff. Stateless and
// reusable across invocations.
type Policy struct {
	MaxAttempts int           // Maximum number of attempts
	BaseDelay   time.Duration // First backoff duration
	MaxDelay    time.Duration // Backoff cap
	Multiplier  float64       // Backoff multiplier
	// RetryableClasses lists the failure classes that trigger another
	// attempt. Any other class propagates immediately.
	RetryableClasses []string

	// Sleep, when set, replaces the backoff wait. Tests use it to record
	// delays without sleeping.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Retryable reports whether the policy retries the given error.
func (p Policy) Retryable(err error) bool {
	class := ClassOf(err)
	for _, c := range p.RetryableClasses {
		if c == class {
			return true
		}
	}
	return false
}

// ClassOf returns the failure class of an error.
func ClassOf(err error) string {
	if err == nil {
		return ""
	}
	var c Classifier
	if errors.As(err, &c) {
		return c.FailureClass()
	}
	if isTimeout(err) {
		return ClassTimeout
	}
	return ClassGeneric
}

// Do executes fn with retry logic. The backoff before attempt n+1 is
// min(MaxDelay, BaseDelay * Multiplier^(n-1)); no jitter is added here, so
// backoff stays deterministic and testable. Randomness belongs to the pacing
// layer. After MaxAttempts the last error propagates, annotated with the
// attempt count.
func Do(ctx context.Context, p Policy, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				log.Debug().Int("attempts", attempt).Msg("Retry succeeded")
			}
			return nil
		}

		lastErr = err

		if !p.Retryable(err) {
			log.Debug().Err(err).Str("class", ClassOf(err)).Msg("Error is not retryable")
			return err
		}

		// Don't sleep after the last attempt
		if attempt < p.MaxAttempts {
			backoff := Backoff(p, attempt)

			log.Debug().
				Int("attempt", attempt).
				Int("max_attempts", p.MaxAttempts).
				Dur("backoff", backoff).
				Err(err).
				Msg("Retrying after backoff")

			if err := sleep(ctx, p, backoff); err != nil {
				return err
			}
		}
	}

	log.Warn().
		Int("attempts", p.MaxAttempts).
		Err(lastErr).
		Msg("Max retry attempts exceeded")

	return fmt.Errorf("operation failed after %d attempts: %w", p.MaxAttempts, lastErr)
}

// Backoff returns the delay after the given 1-based failed attempt.
func Backoff(p Policy, attempt int) time.Duration {
	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	return time.Duration(d)
}

func sleep(ctx context.Context, p Policy, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	if errors.As(err, &t) {
		return t.Timeout()
	}
	return false
}
