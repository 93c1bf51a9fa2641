package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/utem-ti/canvas-auth/internal/domain/auth"
)

// StateStore holds pending OAuth states keyed by state token. Each entry
// lives at most for the configured TTL and is removed the moment it is
// consumed, so a token can be redeemed exactly once.
type StateStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewStateStore creates a Redis-backed OAuth state store.
func NewStateStore(client redis.UniversalClient, ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StateStore{
		client: client,
		prefix: "oauthstate:",
		ttl:    ttl,
	}
}

func (s *StateStore) Save(ctx context.Context, state domainauth.OAuthState) error {
	if state.Token == "" {
		return errors.New("state token cannot be empty")
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal oauth state: %w", err)
	}

	// SETNX: a token collision would mean a broken RNG; refuse to overwrite.
	ok, err := s.client.SetNX(ctx, s.prefix+state.Token, data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return errors.New("state token already pending")
	}
	return nil
}

// Consume atomically fetches and deletes the state for the token. Unknown,
// expired, and already-consumed tokens all fail closed as a mismatch.
func (s *StateStore) Consume(ctx context.Context, token string) (domainauth.OAuthState, error) {
	if token == "" {
		return domainauth.OAuthState{}, domainauth.ErrStateMismatch
	}

	data, err := s.client.GetDel(ctx, s.prefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.OAuthState{}, domainauth.ErrStateMismatch
		}
		return domainauth.OAuthState{}, fmt.Errorf("redis getdel: %w", err)
	}

	var state domainauth.OAuthState
	if unmarshalErr := json.Unmarshal([]byte(data), &state); unmarshalErr != nil {
		return domainauth.OAuthState{}, fmt.Errorf("unmarshal oauth state: %w", unmarshalErr)
	}
	return state, nil
}
