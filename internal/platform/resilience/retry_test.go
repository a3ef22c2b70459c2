package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

var (
	errTransient = errors.New("transient")
	errFatal     = errors.New("fatal")
)

type hintedError struct {
	delay time.Duration
}

func (e hintedError) Error() string              { return "slow down" }
func (e hintedError) RetryDelay() time.Duration { return e.delay }

// advanceUntilDone keeps moving the fake clock until done is closed.
func advanceUntilDone(t *testing.T, clock *clockwork.FakeClock, step time.Duration, done <-chan struct{}) {
	t.Helper()
	for {
		select {
		case <-done:
			return
		default:
		}
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		_ = clock.BlockUntilContext(ctx, 1)
		cancel()
		clock.Advance(step)
	}
}

func TestRetrier_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	retrier := NewRetrier(RetryConfig{MaxAttempts: 3, InitialInterval: time.Second}, func(err error) bool {
		return errors.Is(err, errTransient)
	}, clock)

	var calls atomic.Int32
	done := make(chan struct{})
	var err error
	go func() {
		defer close(done)
		err = retrier.Do(context.Background(), func(context.Context, int) error {
			if calls.Add(1) < 3 {
				return errTransient
			}
			return nil
		})
	}()
	advanceUntilDone(t, clock, time.Minute, done)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("unexpected call count: got=%d want=3", got)
	}
}

func TestRetrier_StopsOnNonRetryable(t *testing.T) {
	t.Parallel()

	retrier := NewRetrier(RetryConfig{MaxAttempts: 5}, func(err error) bool {
		return errors.Is(err, errTransient)
	}, clockwork.NewFakeClock())

	var calls int
	err := retrier.Do(context.Background(), func(context.Context, int) error {
		calls++
		return errFatal
	})
	if !errors.Is(err, errFatal) || errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected fatal error unwrapped, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("non-retryable error must not retry, calls=%d", calls)
	}
}

func TestRetrier_ExhaustsAndHonoursHintCap(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	retrier := NewRetrier(RetryConfig{MaxAttempts: 2, MaxDelayHint: 5 * time.Second}, nil, clock)

	start := clock.Now()
	var secondAt time.Time
	done := make(chan struct{})
	var err error
	go func() {
		defer close(done)
		err = retrier.Do(context.Background(), func(_ context.Context, attempt int) error {
			if attempt == 2 {
				secondAt = clock.Now()
			}
			return hintedError{delay: time.Hour}
		})
	}()
	advanceUntilDone(t, clock, time.Second, done)

	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if waited := secondAt.Sub(start); waited != 5*time.Second {
		t.Fatalf("hint must be capped: waited=%v", waited)
	}
}

func TestRetrier_ContextCancelled(t *testing.T) {
	t.Parallel()

	retrier := NewRetrier(RetryConfig{MaxAttempts: 3}, nil, clockwork.NewFakeClock())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retrier.Do(ctx, func(context.Context, int) error { return errTransient })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
