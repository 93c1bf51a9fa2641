package devauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utem-ti/canvas-auth/internal/ports"
)

func TestNewProvider_RequiresEmail(t *testing.T) {
	_, err := NewProvider(Config{})
	assert.Error(t, err)
}

func TestProvider_AuthCodeURL_PointsAtCallback(t *testing.T) {
	p, err := NewProvider(Config{Email: "dev@utem.cl", Name: "Dev"})
	require.NoError(t, err)

	u := p.AuthCodeURL(ports.BeginInput{State: "abc 123", Nonce: "n"})
	assert.Equal(t, "/auth/callback?code=dev&state=abc+123", u)
}

func TestProvider_Exchange_ReturnsConfiguredIdentity(t *testing.T) {
	p, err := NewProvider(Config{Email: "Dev@UTEM.cl", Name: "Dev User", SessionDuration: time.Hour})
	require.NoError(t, err)

	identity, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "anything"})
	require.NoError(t, err)

	assert.Equal(t, "dev@utem.cl", identity.Email)
	assert.Equal(t, "Dev User", identity.Name)
	assert.WithinDuration(t, time.Now().Add(time.Hour), identity.ExpiresAt, time.Minute)
}
