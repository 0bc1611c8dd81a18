// Package retry implements the bounded retry-with-backoff policy applied to
// all external model calls (embedding and generation). The policy is explicit
// configuration rather than ad hoc loops: callers declare a maximum attempt
// count and a delay range, and classify each failure as transient (retried)
// or permanent (surfaced immediately) by wrapping permanent errors with
// [Permanent].
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Default policy values applied by [Config.withDefaults].
const (
	// DefaultMaxAttempts bounds the total number of tries (first attempt
	// plus retries).
	DefaultMaxAttempts = 3

	// DefaultBaseDelay is the initial backoff interval.
	DefaultBaseDelay = 500 * time.Millisecond

	// DefaultMaxDelay caps the backoff interval growth.
	DefaultMaxDelay = 10 * time.Second
)

// Config describes one component's retry budget. The zero value is usable
// and resolves to the package defaults.
type Config struct {
	// MaxAttempts is the total number of tries, including the first.
	// Values below 1 resolve to DefaultMaxAttempts.
	MaxAttempts int

	// BaseDelay is the initial backoff interval. Zero resolves to
	// DefaultBaseDelay.
	BaseDelay time.Duration

	// MaxDelay caps the exponential growth of the backoff interval.
	// Zero resolves to DefaultMaxDelay.
	MaxDelay time.Duration
}

// withDefaults returns cfg with zero values replaced by package defaults.
func (c Config) withDefaults() Config {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	return c
}

// Permanent marks err as non-retryable. Do surfaces it immediately without
// consuming further attempts. A nil err returns nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, returns a permanent error, the attempt budget
// is exhausted, or ctx is cancelled. The last error returned by op is
// surfaced to the caller unchanged (unwrapped from its permanent marker).
func Do(ctx context.Context, cfg Config, op func() error) error {
	cfg = cfg.withDefaults()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.BaseDelay
	b.MaxInterval = cfg.MaxDelay
	// Attempt accounting is handled by WithMaxRetries; disable the elapsed
	// time cutoff so the budget is purely attempt-based.
	b.MaxElapsedTime = 0

	policy := backoff.WithMaxRetries(backoff.WithContext(b, ctx), uint64(cfg.MaxAttempts-1)) //nolint:gosec // MaxAttempts >= 1 after withDefaults

	return backoff.Retry(op, policy)
}
