package patterns

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateRejectsWhileHeld(t *testing.T) {
	g := NewGate("test")
	assert.False(t, g.Busy())

	var inner error
	err := g.Execute(func() error {
		assert.True(t, g.Busy())
		inner = g.Execute(func() error {
			t.Fatal("nested call must not run")
			return nil
		})
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, inner, ErrGateBusy)
	assert.False(t, g.Busy())
}

func TestGateReturnsCallError(t *testing.T) {
	g := NewGate("test")
	boom := errors.New("boom")

	assert.ErrorIs(t, g.Execute(func() error { return boom }), boom)
	assert.False(t, g.Busy())
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker("Test", "patterns-test")
	boom := errors.New("boom")

	for i := 0; i < 5; i++ {
		_, err := cb.Execute(func() (interface{}, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, "open", cb.GetState())

	called := false
	_, err := cb.Execute(func() (interface{}, error) {
		called = true
		return nil, nil
	})
	assert.EqualError(t, err, "circuit breaker Test is open (service unavailable)")
	assert.False(t, called)
}
