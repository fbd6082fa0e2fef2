package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitConsumesBurstThenBlocks(t *testing.T) {
	l := New()
	defer l.Stop()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(ctx, "apply", 3))
	}

	// the next token arrives after 20s; the context expires first
	short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(short, "apply", 3), context.DeadlineExceeded)
}

func TestEndpointsAreIndependent(t *testing.T) {
	l := New()
	defer l.Stop()

	ctx := context.Background()
	require.NoError(t, l.Wait(ctx, "login", 1))
	require.NoError(t, l.Wait(ctx, "register", 1))
}

func TestDisabledLimit(t *testing.T) {
	l := New()
	defer l.Stop()

	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background(), "apply", 0))
	}
}

func TestLimitChangeRebuildsBucket(t *testing.T) {
	l := New()
	defer l.Stop()

	ctx := context.Background()
	require.NoError(t, l.Wait(ctx, "apply", 1))
	require.NoError(t, l.Wait(ctx, "apply", 2))
	require.NoError(t, l.Wait(ctx, "apply", 2))
}
