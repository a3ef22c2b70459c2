package resilience

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreakerConfig tunes one upstream's breaker. A disabled breaker lets
// every call through and records nothing.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

func (c CircuitBreakerConfig) normalized() CircuitBreakerConfig {
	d := DefaultCircuitBreakerConfig()
	if c.FailureThreshold < 1 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = d.OpenTimeout
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = d.HalfOpenMaxReq
	}
	return c
}

// Breaker trips after a run of consecutive failures against one upstream
// (steam, anubis, qstash) and lets a few trial requests through once the
// open window has elapsed.
type Breaker struct {
	name  string
	cfg   CircuitBreakerConfig
	clock clockwork.Clock

	mu       sync.Mutex
	state    CircuitState
	failures int
	openedAt time.Time
	trials   int
	trialOK  int
}

func NewBreaker(name string, cfg CircuitBreakerConfig, clock clockwork.Clock) *Breaker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Breaker{
		name:  name,
		cfg:   cfg.normalized(),
		clock: clock,
		state: CircuitStateClosed,
	}
}

func (b *Breaker) Name() string { return b.name }

// Allow reserves a slot for one call. Every nil return must be paired with a
// Done.
func (b *Breaker) Allow() error {
	if b == nil || !b.cfg.Enabled {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.clock.Since(b.openedAt) < b.cfg.OpenTimeout {
			return fmt.Errorf("%w: %s", ErrCircuitOpen, b.name)
		}
		b.state, b.trials, b.trialOK = CircuitStateHalfOpen, 0, 0
	}
	if b.state == CircuitStateHalfOpen {
		if b.trials >= b.cfg.HalfOpenMaxReq {
			return fmt.Errorf("%w: %s probing", ErrCircuitOpen, b.name)
		}
		b.trials++
	}
	return nil
}

// Done reports the outcome of a call admitted by Allow. Only upstream faults
// should count as failed; a 404 or a bad request says nothing about health.
func (b *Breaker) Done(failed bool) {
	if b == nil || !b.cfg.Enabled {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.trip()
		}
	case CircuitStateHalfOpen:
		b.trials = max(b.trials-1, 0)
		if failed {
			b.trip()
			return
		}
		b.trialOK++
		if b.trialOK >= b.cfg.HalfOpenMaxReq && b.trials == 0 {
			b.state, b.failures, b.trialOK = CircuitStateClosed, 0, 0
			b.openedAt = time.Time{}
		}
	case CircuitStateOpen:
		if failed {
			b.openedAt = b.clock.Now()
		}
	}
}

// State reports half_open once the open window has elapsed, even before the
// next Allow moves the breaker there.
func (b *Breaker) State() CircuitState {
	if b == nil || !b.cfg.Enabled {
		return CircuitStateClosed
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.clock.Since(b.openedAt) >= b.cfg.OpenTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *Breaker) trip() {
	b.state = CircuitStateOpen
	b.openedAt = b.clock.Now()
	b.trials, b.trialOK = 0, 0
}
