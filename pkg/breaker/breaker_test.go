package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	b := New(Settings{Name: "test", MaxFailures: 3, Cooldown: time.Minute})

	for i := 0; i < 3; i++ {
		err := b.Execute(func() error { return errBoom })
		require.ErrorIs(t, err, errBoom)
	}
	assert.Equal(t, StateOpen, b.State())

	err := b.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrOpen)
}

func TestBreakerRecoversAfterCooldown(t *testing.T) {
	b := New(Settings{Name: "test", MaxFailures: 1, Cooldown: 10 * time.Millisecond})

	require.Error(t, b.Execute(func() error { return errBoom }))
	assert.Equal(t, StateOpen, b.State())

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, b.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	b := New(Settings{Name: "test", MaxFailures: 1, Cooldown: 10 * time.Millisecond})

	require.Error(t, b.Execute(func() error { return errBoom }))
	time.Sleep(20 * time.Millisecond)

	require.Error(t, b.Execute(func() error { return errBoom }))
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	b := New(Settings{Name: "test", MaxFailures: 2, Cooldown: time.Minute})

	for i := 0; i < 10; i++ {
		require.NoError(t, b.Execute(func() error { return nil }))
	}
	assert.Equal(t, StateClosed, b.State())
}
