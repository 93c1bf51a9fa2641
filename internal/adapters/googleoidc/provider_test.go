package googleoidc

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	domainauth "github.com/utem-ti/canvas-auth/internal/domain/auth"
	"golang.org/x/oauth2"
)

func TestIdentityFromClaims(t *testing.T) {
	expiry := time.Now().Add(30 * time.Minute)
	identity := identityFromClaims(googleClaims{
		Email:        "Alice@UTEM.cl",
		Name:         "Alice",
		HostedDomain: "UTEM.cl",
	}, expiry)

	assert.Equal(t, "alice@utem.cl", identity.Email)
	assert.Equal(t, "Alice", identity.Name)
	assert.Equal(t, "utem.cl", identity.HostedDomain)
	assert.Equal(t, expiry, identity.ExpiresAt)
}

func TestIdentityFromClaims_ZeroExpiryGetsFallback(t *testing.T) {
	identity := identityFromClaims(googleClaims{Email: "alice@utem.cl"}, time.Time{})
	assert.WithinDuration(t, time.Now().Add(time.Hour), identity.ExpiresAt, time.Minute)
}

func TestClassifyExchangeError(t *testing.T) {
	rejected := &oauth2.RetrieveError{ErrorCode: "invalid_grant"}
	assert.ErrorIs(t, classifyExchangeError(rejected), domainauth.ErrInvalidGrant)

	serverSide := &oauth2.RetrieveError{ErrorCode: "temporarily_unavailable"}
	assert.ErrorIs(t, classifyExchangeError(serverSide), domainauth.ErrProviderError)

	network := errors.New("dial tcp: connection refused")
	assert.ErrorIs(t, classifyExchangeError(network), domainauth.ErrProviderError)
}
