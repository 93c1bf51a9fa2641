package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/utem-ti/canvas-auth/internal/domain/auth"
)

func TestLoginLimiter_AllowsUnderThreshold(t *testing.T) {
	_, client := newTestClient(t)
	limiter := NewLoginLimiter(client, 3, 5*time.Minute)
	ctx := context.Background()

	assert.NoError(t, limiter.Allow(ctx, "alice@utem.cl"))

	require.NoError(t, limiter.RecordFailure(ctx, "alice@utem.cl"))
	require.NoError(t, limiter.RecordFailure(ctx, "alice@utem.cl"))
	assert.NoError(t, limiter.Allow(ctx, "alice@utem.cl"))
}

func TestLoginLimiter_LocksAtThreshold(t *testing.T) {
	_, client := newTestClient(t)
	limiter := NewLoginLimiter(client, 3, 5*time.Minute)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, limiter.RecordFailure(ctx, "alice@utem.cl"))
	}

	assert.ErrorIs(t, limiter.Allow(ctx, "alice@utem.cl"), domainauth.ErrLoginLocked)

	// Other emails are unaffected.
	assert.NoError(t, limiter.Allow(ctx, "bob@utem.cl"))
}

func TestLoginLimiter_UnlocksAfterWindow(t *testing.T) {
	mr, client := newTestClient(t)
	limiter := NewLoginLimiter(client, 3, time.Minute)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, limiter.RecordFailure(ctx, "alice@utem.cl"))
	}
	require.ErrorIs(t, limiter.Allow(ctx, "alice@utem.cl"), domainauth.ErrLoginLocked)

	mr.FastForward(2 * time.Minute)

	assert.NoError(t, limiter.Allow(ctx, "alice@utem.cl"))
}

func TestLoginLimiter_Reset(t *testing.T) {
	_, client := newTestClient(t)
	limiter := NewLoginLimiter(client, 3, 5*time.Minute)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, limiter.RecordFailure(ctx, "alice@utem.cl"))
	}
	require.ErrorIs(t, limiter.Allow(ctx, "alice@utem.cl"), domainauth.ErrLoginLocked)

	require.NoError(t, limiter.Reset(ctx, "alice@utem.cl"))
	assert.NoError(t, limiter.Allow(ctx, "alice@utem.cl"))
}

func TestLoginLimiter_NormalizesEmail(t *testing.T) {
	_, client := newTestClient(t)
	limiter := NewLoginLimiter(client, 2, 5*time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.RecordFailure(ctx, "Alice@UTEM.cl"))
	require.NoError(t, limiter.RecordFailure(ctx, "alice@utem.cl "))

	assert.ErrorIs(t, limiter.Allow(ctx, "alice@utem.cl"), domainauth.ErrLoginLocked)
}
