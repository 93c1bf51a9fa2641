package googleoidc

// Package googleoidc drives the OAuth 2.0 authorization-code grant against
// Google. Endpoint discovery and ID-token verification go through go-oidc;
// token exchange through golang.org/x/oauth2.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/utem-ti/canvas-auth/internal/domain/auth"
	"github.com/utem-ti/canvas-auth/internal/ports"
	"golang.org/x/oauth2"
)

// Provider implements ports.AuthProvider against Google.
type Provider struct {
	config       *oauth2.Config
	hostedDomain string
	httpClient   *http.Client

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

// ProviderConfig holds configuration for the Google provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	IssuerURL    string        // defaults to https://accounts.google.com
	HostedDomain string        // optional "hd" restriction
	Timeout      time.Duration // bounds every outbound provider call
	HTTPClient   *http.Client  // optional, overrides Timeout when set
}

// NewProvider creates a new Google OIDC provider. It performs a single
// discovery fetch against the issuer.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	issuer := config.IssuerURL
	if issuer == "" {
		issuer = "https://accounts.google.com"
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	scope := config.Scope
	if scope == "" {
		scope = "openid email profile"
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       strings.Fields(scope),
			Endpoint:     op.Endpoint(),
		},
		hostedDomain: config.HostedDomain,
		httpClient:   httpClient,
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
	}, nil
}

// AuthCodeURL builds the Google authorization URL embedding the caller's
// state and nonce. The state itself is stored server-side by the flow
// controller; this adapter only formats the URL.
func (p *Provider) AuthCodeURL(in ports.BeginInput) string {
	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("nonce", in.Nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	}
	if p.hostedDomain != "" {
		opts = append(opts, oauth2.SetAuthURLParam("hd", p.hostedDomain))
	}
	return p.config.AuthCodeURL(in.State, opts...)
}

// Exchange redeems the authorization code, verifies the ID token (signature,
// audience, nonce), and returns the authenticated identity. The profile
// fetch falls back to the userinfo endpoint when the ID token lacks claims.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" {
		return domainauth.Identity{}, errors.Join(domainauth.ErrInvalidGrant, errors.New("authorization code is required"))
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, classifyExchangeError(err)
	}

	claims, err := p.verifyIDToken(ctx, token, in.Nonce)
	if err != nil {
		return domainauth.Identity{}, err
	}

	if claims.Email == "" {
		if err := p.fillFromUserInfo(ctx, token.AccessToken, &claims); err != nil {
			return domainauth.Identity{}, err
		}
	}
	if claims.Email == "" {
		return domainauth.Identity{}, errors.Join(domainauth.ErrProviderError, errors.New("provider returned no email"))
	}

	return identityFromClaims(claims, token.Expiry), nil
}

// identityFromClaims maps verified Google claims onto the domain identity.
// A zero token expiry falls back to a one-hour lifetime.
func identityFromClaims(claims googleClaims, tokenExpiry time.Time) domainauth.Identity {
	expiresAt := tokenExpiry
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(time.Hour)
	}
	return domainauth.Identity{
		Email:        domainauth.NormalizeEmail(claims.Email),
		Name:         claims.Name,
		HostedDomain: strings.ToLower(claims.HostedDomain),
		ExpiresAt:    expiresAt,
	}
}

// googleClaims is the subset of Google's ID-token/userinfo payload we use.
type googleClaims struct {
	Email        string `json:"email"`
	Verified     bool   `json:"email_verified"`
	Name         string `json:"name"`
	HostedDomain string `json:"hd"`
	Nonce        string `json:"nonce"`
}

func (p *Provider) verifyIDToken(ctx context.Context, tok *oauth2.Token, expectedNonce string) (googleClaims, error) {
	var claims googleClaims

	rawID, ok := tok.Extra("id_token").(string)
	if !ok || rawID == "" {
		// No openid scope granted; the userinfo fallback takes over.
		return claims, nil
	}

	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return claims, errors.Join(domainauth.ErrProviderError, fmt.Errorf("verify id_token: %w", err))
	}
	if err := idTok.Claims(&claims); err != nil {
		return claims, errors.Join(domainauth.ErrProviderError, fmt.Errorf("parse id_token claims: %w", err))
	}
	if expectedNonce != "" && claims.Nonce != expectedNonce {
		return claims, errors.Join(domainauth.ErrStateMismatch, errors.New("id_token nonce mismatch"))
	}
	if p.hostedDomain != "" && !strings.EqualFold(claims.HostedDomain, p.hostedDomain) {
		return claims, errors.Join(domainauth.ErrProviderError, fmt.Errorf("unexpected hosted domain %q", claims.HostedDomain))
	}
	return claims, nil
}

func (p *Provider) fillFromUserInfo(ctx context.Context, accessToken string, claims *googleClaims) error {
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	if err != nil {
		return errors.Join(domainauth.ErrProviderError, fmt.Errorf("fetch user info: %w", err))
	}
	var info googleClaims
	if err := ui.Claims(&info); err != nil {
		return errors.Join(domainauth.ErrProviderError, fmt.Errorf("decode user info: %w", err))
	}
	if claims.Email == "" {
		claims.Email = info.Email
	}
	if claims.Name == "" {
		claims.Name = info.Name
	}
	return nil
}

// classifyExchangeError separates rejected grants (expired or replayed codes)
// from transport and provider-side failures.
func classifyExchangeError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.ErrorCode == "invalid_grant" {
			return errors.Join(domainauth.ErrInvalidGrant, err)
		}
	}
	return errors.Join(domainauth.ErrProviderError, fmt.Errorf("exchange code for token: %w", err))
}
