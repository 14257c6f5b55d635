package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DisabledWhenRateNotPositive(t *testing.T) {
	assert.Nil(t, New(0, 1))
	assert.Nil(t, New(-1, 1))
}

func TestLimiter_NilNeverBlocks(t *testing.T) {
	var l *Limiter
	assert.True(t, l.Allow())
	assert.NoError(t, l.Wait(context.Background()))
	l.Backoff(time.Hour)
	assert.True(t, l.Allow())
}

func TestLimiter_Burst(t *testing.T) {
	l := New(1, 2)
	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestLimiter_Backoff(t *testing.T) {
	l := New(100, 10)
	l.Backoff(time.Hour)
	assert.False(t, l.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLimiter_WaitRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var l *Limiter
	assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
}
