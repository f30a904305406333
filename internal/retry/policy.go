// Package retry runs operations that may fail transiently, waiting between
// attempts according to a backoff Policy.
package retry

import (
	"context"
	"time"

	"git.home.luguber.info/inful/vaultmark/internal/foundation/errors"
)

// Mode selects how the delay grows between attempts.
type Mode string

const (
	ModeFixed       Mode = "fixed"
	ModeLinear      Mode = "linear"
	ModeExponential Mode = "exponential"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeFixed, ModeLinear, ModeExponential:
		return true
	default:
		return false
	}
}

// Policy holds backoff settings. It is immutable after construction.
type Policy struct {
	Mode    Mode
	Initial time.Duration
	Max     time.Duration
	// MaxRetries counts attempts after the first failure.
	MaxRetries int
}

// DefaultPolicy is linear backoff from 1s, capped at 30s, retried twice.
func DefaultPolicy() Policy {
	return Policy{Mode: ModeLinear, Initial: time.Second, Max: 30 * time.Second, MaxRetries: 2}
}

// NewPolicy builds a policy from raw settings. Zero or unknown values fall
// back to the defaults and Initial is clamped to Max.
func NewPolicy(mode Mode, initial, maxDelay time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDelay > 0 {
		p.Max = maxDelay
	}
	if mode.Valid() {
		p.Mode = mode
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay is the wait before the given retry (1-based).
func (p Policy) Delay(retry int) time.Duration {
	if retry <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case ModeFixed:
		return p.Initial
	case ModeExponential:
		d = p.Initial << (retry - 1)
		if d <= 0 {
			return p.Max
		}
	default:
		d = time.Duration(retry) * p.Initial
	}
	return min(d, p.Max)
}

// Do calls fn until it succeeds or fails with an error that is not
// retryable. It gives up after MaxRetries retries or when ctx is done,
// returning the last error from fn.
func Do(ctx context.Context, p Policy, fn func(context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil || !errors.IsRetryable(err) || attempt > p.MaxRetries {
			return err
		}
		timer := time.NewTimer(p.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
