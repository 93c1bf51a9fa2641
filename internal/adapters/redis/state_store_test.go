package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/utem-ti/canvas-auth/internal/domain/auth"
)

func testState(token string) domainauth.OAuthState {
	return domainauth.OAuthState{
		Token:          token,
		Nonce:          "nonce-" + token,
		RedirectTarget: "/dashboard",
		CreatedAt:      time.Now(),
	}
}

func TestStateStore_SaveAndConsume(t *testing.T) {
	_, client := newTestClient(t)
	store := NewStateStore(client, 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testState("tok-1")))

	got, err := store.Consume(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "nonce-tok-1", got.Nonce)
	assert.Equal(t, "/dashboard", got.RedirectTarget)
}

func TestStateStore_Consume_SingleUse(t *testing.T) {
	_, client := newTestClient(t)
	store := NewStateStore(client, 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testState("tok-1")))

	_, err := store.Consume(ctx, "tok-1")
	require.NoError(t, err)

	// Replay of the same token fails closed.
	_, err = store.Consume(ctx, "tok-1")
	assert.ErrorIs(t, err, domainauth.ErrStateMismatch)
}

func TestStateStore_Consume_NeverIssued(t *testing.T) {
	_, client := newTestClient(t)
	store := NewStateStore(client, 10*time.Minute)

	_, err := store.Consume(context.Background(), "forged-token")
	assert.ErrorIs(t, err, domainauth.ErrStateMismatch)
}

func TestStateStore_Consume_EmptyToken(t *testing.T) {
	_, client := newTestClient(t)
	store := NewStateStore(client, 10*time.Minute)

	_, err := store.Consume(context.Background(), "")
	assert.ErrorIs(t, err, domainauth.ErrStateMismatch)
}

func TestStateStore_Consume_Expired(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewStateStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testState("tok-1")))

	mr.FastForward(2 * time.Minute)

	_, err := store.Consume(ctx, "tok-1")
	assert.ErrorIs(t, err, domainauth.ErrStateMismatch)
}

func TestStateStore_Save_RejectsDuplicateToken(t *testing.T) {
	_, client := newTestClient(t)
	store := NewStateStore(client, 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testState("tok-1")))
	assert.Error(t, store.Save(ctx, testState("tok-1")))
}

func TestStateStore_Save_RejectsEmptyToken(t *testing.T) {
	_, client := newTestClient(t)
	store := NewStateStore(client, 10*time.Minute)

	assert.Error(t, store.Save(context.Background(), testState("")))
}
