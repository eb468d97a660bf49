// Package retry executes operations with bounded exponential-backoff retries.
package retry

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/relaykit/relay/pkg/observability"
)

// JitterMode controls how a computed backoff delay is perturbed.
type JitterMode string

const (
	// JitterNone sleeps for the exact computed delay.
	JitterNone JitterMode = "none"
	// JitterFull sleeps uniform[0, delay].
	JitterFull JitterMode = "full"
	// JitterEqual sleeps delay/2 + uniform[0, delay/2].
	JitterEqual JitterMode = "equal"
)

// Policy defines the bounds of a retried operation. The delay before the
// k-th attempt (k > 1) is min(InitialDelay * 2^(k-2), MaxDelay), optionally
// perturbed by jitter.
//
// Operations are re-executed as-is: they must be idempotent, or the caller
// must guard against duplicate effects.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// InitialDelay is the delay before the second attempt.
	InitialDelay time.Duration

	// MaxDelay caps the doubled delay.
	MaxDelay time.Duration

	// Jitter selects the perturbation mode. Defaults to JitterNone.
	Jitter JitterMode

	// Logger receives a debug event per retry. Nil discards.
	Logger *slog.Logger

	// sleep and rnd are replaceable for tests.
	sleep func(context.Context, time.Duration) error
	rnd   func() float64
}

// DefaultPolicy mirrors the runtime's built-in transient-failure policy.
var DefaultPolicy = Policy{
	MaxAttempts:  5,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     10 * time.Second,
	Jitter:       JitterNone,
}

// Run executes op until it succeeds or attempts are exhausted, in which case
// the last failure is returned. A cancelled context aborts the backoff wait
// and returns the context's error.
func (p Policy) Run(ctx context.Context, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := p.jittered(p.delayBefore(attempt))
			logger.Debug("retrying operation", "attempt", attempt, "delay", delay)
			observability.RetryAttempts.Inc()

			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
	}

	logger.Debug("final attempt failed", "err", lastErr)
	return lastErr
}

// Value runs op under policy p and returns its result. Method type
// parameters are not a thing, hence the package-level helper.
func Value[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var out T
	err := p.Run(ctx, func(ctx context.Context) error {
		var err error
		out, err = op(ctx)
		return err
	})
	return out, err
}

// delayBefore computes the un-jittered delay preceding the given 1-indexed
// attempt.
func (p Policy) delayBefore(attempt int) time.Duration {
	delay := p.InitialDelay
	for i := 2; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

func (p Policy) jittered(delay time.Duration) time.Duration {
	rnd := p.rnd
	if rnd == nil {
		rnd = rand.Float64
	}

	switch p.Jitter {
	case JitterFull:
		return time.Duration(rnd() * float64(delay))
	case JitterEqual:
		half := delay / 2
		return half + time.Duration(rnd()*float64(half))
	default:
		return delay
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
