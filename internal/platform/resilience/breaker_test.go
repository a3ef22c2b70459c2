package resilience

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_TripsAndRecovers(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	b := NewBreaker("steam", CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      5 * time.Second,
		HalfOpenMaxReq:   1,
	}, clock)

	require.NoError(t, b.Allow())
	b.Done(true)
	assert.Equal(t, CircuitStateClosed, b.State())

	require.NoError(t, b.Allow())
	b.Done(true)
	assert.Equal(t, CircuitStateOpen, b.State())

	err := b.Allow()
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Contains(t, err.Error(), "steam")

	clock.Advance(6 * time.Second)
	assert.Equal(t, CircuitStateHalfOpen, b.State())
	require.NoError(t, b.Allow())
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen, "only one trial admitted")

	b.Done(false)
	assert.Equal(t, CircuitStateClosed, b.State())
}

func TestBreaker_FailedTrialReopens(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	b := NewBreaker("qstash", CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Second}, clock)

	require.NoError(t, b.Allow())
	b.Done(true)
	clock.Advance(2 * time.Second)

	require.NoError(t, b.Allow())
	b.Done(true)
	assert.Equal(t, CircuitStateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestBreaker_SuccessResetsFailureRun(t *testing.T) {
	t.Parallel()

	b := NewBreaker("anubis", CircuitBreakerConfig{Enabled: true, FailureThreshold: 2}, clockwork.NewFakeClock())

	b.Done(true)
	b.Done(false)
	b.Done(true)
	assert.Equal(t, CircuitStateClosed, b.State())
}

func TestBreaker_DisabledAndNil(t *testing.T) {
	t.Parallel()

	b := NewBreaker("steam", CircuitBreakerConfig{Enabled: false, FailureThreshold: 1}, nil)
	for range 5 {
		require.NoError(t, b.Allow())
		b.Done(true)
	}
	assert.Equal(t, CircuitStateClosed, b.State())

	var nilBreaker *Breaker
	assert.NoError(t, nilBreaker.Allow())
	nilBreaker.Done(true)
	assert.Equal(t, CircuitStateClosed, nilBreaker.State())
}
