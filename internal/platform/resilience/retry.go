package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jonboulle/clockwork"
)

var ErrRetriesExhausted = errors.New("retries exhausted")

type RetryConfig struct {
	MaxAttempts         int
	InitialInterval     time.Duration
	MaxInterval         time.Duration
	Multiplier          float64
	RandomizationFactor float64
	// MaxDelayHint caps a delay suggested by the failing call itself.
	MaxDelayHint time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:         3,
		InitialInterval:     500 * time.Millisecond,
		MaxInterval:         10 * time.Second,
		Multiplier:          2,
		RandomizationFactor: 0.2,
		MaxDelayHint:        30 * time.Second,
	}
}

func NormalizeRetryConfig(cfg RetryConfig) RetryConfig {
	defaults := DefaultRetryConfig()
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = defaults.InitialInterval
	}
	if cfg.MaxInterval < cfg.InitialInterval {
		cfg.MaxInterval = max(defaults.MaxInterval, cfg.InitialInterval)
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = defaults.Multiplier
	}
	if cfg.RandomizationFactor < 0 || cfg.RandomizationFactor >= 1 {
		cfg.RandomizationFactor = defaults.RandomizationFactor
	}
	if cfg.MaxDelayHint <= 0 {
		cfg.MaxDelayHint = defaults.MaxDelayHint
	}
	return cfg
}

// DelayHinter is implemented by errors that know how long to wait, such as a
// rate-limit response carrying Retry-After.
type DelayHinter interface {
	RetryDelay() time.Duration
}

// Retrier runs an operation a bounded number of times. Only errors accepted by
// the retryable predicate are retried; anything else returns at once.
type Retrier struct {
	cfg       RetryConfig
	retryable func(error) bool
	clock     clockwork.Clock
}

func NewRetrier(cfg RetryConfig, retryable func(error) bool, clock clockwork.Clock) *Retrier {
	if retryable == nil {
		retryable = func(error) bool { return true }
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Retrier{
		cfg:       NormalizeRetryConfig(cfg),
		retryable: retryable,
		clock:     clock,
	}
}

// Do calls op until it succeeds, returns a non-retryable error, ctx ends, or
// MaxAttempts is used up. attempt starts at 1.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) error {
	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = r.cfg.InitialInterval
	schedule.MaxInterval = r.cfg.MaxInterval
	schedule.Multiplier = r.cfg.Multiplier
	schedule.RandomizationFactor = r.cfg.RandomizationFactor
	schedule.Reset()

	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		err := op(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err
		if !r.retryable(err) {
			return err
		}
		if attempt == r.cfg.MaxAttempts {
			break
		}

		wait := schedule.NextBackOff()
		var hinter DelayHinter
		if errors.As(err, &hinter) {
			if hint := hinter.RetryDelay(); hint > 0 {
				wait = min(hint, r.cfg.MaxDelayHint)
			}
		}
		if wait < 0 {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-r.clock.After(wait):
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, r.cfg.MaxAttempts, lastErr)
}
