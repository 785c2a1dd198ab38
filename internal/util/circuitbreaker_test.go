package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestCircuitBreakerOpensAtThreshold(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(2, time.Minute, 0, nil, zap.NewNop()).WithClock(clock.Now)

	cb.RecordFailure(0)
	assert.True(t, cb.CanExecute())

	cb.RecordFailure(0)
	assert.False(t, cb.CanExecute())

	status := cb.GetStatus()
	assert.Equal(t, CircuitStateOpen, status.State)
	require.NotNil(t, status.NextRetryTime)
	assert.Equal(t, clock.now.Add(time.Minute), *status.NextRetryTime)
}

func TestCircuitBreakerHalfOpenAfterTimeout(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(1, time.Minute, 0, nil, zap.NewNop()).WithClock(clock.Now)

	cb.RecordFailure(0)
	assert.Equal(t, CircuitStateOpen, cb.GetState())

	clock.Advance(2 * time.Minute)
	assert.Equal(t, CircuitStateHalfOpen, cb.GetState())

	cb.RecordSuccess()
	assert.Equal(t, CircuitStateClosed, cb.GetState())
	assert.Equal(t, 0, cb.GetStatus().FailureCount)
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(3, time.Minute, 0, nil, zap.NewNop()).WithClock(clock.Now)

	for i := 0; i < 3; i++ {
		cb.RecordFailure(0)
	}
	clock.Advance(2 * time.Minute)
	require.Equal(t, CircuitStateHalfOpen, cb.GetState())

	cb.RecordFailure(10 * time.Minute)
	assert.Equal(t, CircuitStateOpen, cb.GetState())
	assert.Equal(t, clock.now.Add(10*time.Minute), *cb.GetStatus().NextRetryTime)
}

func TestCircuitBreakerHealthCheckRecovers(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	checked := make(chan struct{}, 1)
	cb := NewCircuitBreaker(1, time.Hour, time.Minute, func() bool {
		checked <- struct{}{}
		return true
	}, zap.NewNop()).WithClock(clock.Now)

	cb.RecordFailure(0)
	clock.Advance(2 * time.Minute)
	assert.Equal(t, CircuitStateOpen, cb.GetState())

	select {
	case <-checked:
	case <-time.After(time.Second):
		t.Fatal("health check was not triggered")
	}

	assert.Eventually(t, func() bool {
		return cb.GetStatus().State == CircuitStateHalfOpen
	}, time.Second, 5*time.Millisecond)
}

func TestCircuitBreakerReset(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Hour, 0, nil, nil)
	cb.RecordFailure(0)
	require.False(t, cb.CanExecute())

	cb.Reset()
	assert.True(t, cb.CanExecute())
}
