package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturePolicy returns p with sleeping stubbed out, recording each delay.
func capturePolicy(p Policy, delays *[]time.Duration) Policy {
	p.sleep = func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return p
}

func TestRun_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	p := Policy{MaxAttempts: 5, InitialDelay: time.Second}
	p.sleep = func(context.Context, time.Duration) error {
		t.Fatal("should not sleep on first-attempt success")
		return nil
	}

	err := p.Run(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRun_ExhaustsAttemptsAndReturnsLastError(t *testing.T) {
	var delays []time.Duration
	p := capturePolicy(Policy{MaxAttempts: 4, InitialDelay: 100 * time.Millisecond, MaxDelay: time.Minute}, &delays)

	calls := 0
	err := p.Run(context.Background(), func(context.Context) error {
		calls++
		return errors.New("attempt " + string(rune('0'+calls)))
	})

	require.Error(t, err)
	assert.Equal(t, 4, calls, "a permanently failing operation runs MaxAttempts times")
	assert.EqualError(t, err, "attempt 4")
}

func TestRun_ExponentialDelaysWithoutJitter(t *testing.T) {
	var delays []time.Duration
	p := capturePolicy(Policy{
		MaxAttempts:  5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     350 * time.Millisecond,
		Jitter:       JitterNone,
	}, &delays)

	_ = p.Run(context.Background(), func(context.Context) error {
		return errors.New("boom")
	})

	// k-th delay = min(initial * 2^(k-1), max): 100ms, 200ms, then capped.
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		350 * time.Millisecond,
		350 * time.Millisecond,
	}, delays)
}

func TestRun_FullJitterBoundedByDelay(t *testing.T) {
	var delays []time.Duration
	p := capturePolicy(Policy{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Jitter:       JitterFull,
	}, &delays)
	p.rnd = func() float64 { return 0.5 }

	_ = p.Run(context.Background(), func(context.Context) error {
		return errors.New("boom")
	})

	assert.Equal(t, []time.Duration{50 * time.Millisecond, 100 * time.Millisecond}, delays)
}

func TestRun_EqualJitterKeepsHalfDelay(t *testing.T) {
	var delays []time.Duration
	p := capturePolicy(Policy{
		MaxAttempts:  2,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Jitter:       JitterEqual,
	}, &delays)
	p.rnd = func() float64 { return 0 }

	_ = p.Run(context.Background(), func(context.Context) error {
		return errors.New("boom")
	})

	require.Len(t, delays, 1)
	assert.Equal(t, 50*time.Millisecond, delays[0], "equal jitter never drops below delay/2")
}

func TestRun_ContextCancelAbortsBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Policy{MaxAttempts: 3, InitialDelay: time.Hour}
	calls := 0
	err := p.Run(ctx, func(context.Context) error {
		calls++
		return errors.New("boom")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestValue_ReturnsOperationResult(t *testing.T) {
	p := Policy{MaxAttempts: 3}
	p.sleep = func(context.Context, time.Duration) error { return nil }

	calls := 0
	got, err := Value(context.Background(), p, func(context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, calls)
}

func TestRun_ZeroAttemptsRunsOnce(t *testing.T) {
	p := Policy{}
	calls := 0
	err := p.Run(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
