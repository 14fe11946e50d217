// Package keycloak implements the IdentityProvider port against a Keycloak
// realm's OpenID Connect token endpoint.
package keycloak

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/ericfisherdev/keyprov/internal/domain/model"
	"github.com/ericfisherdev/keyprov/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.IdentityProvider = (*Client)(nil)

// scopes requested on every password grant. The email and profile scopes are
// needed so the access token carries the claims read downstream.
var scopes = []string{"openid", "profile", "email"}

// Client submits resource-owner password grants to Keycloak.
type Client struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient creates a client for the token endpoint of the given issuer and
// realm. clientSecret may be empty for public clients. httpClient controls
// the request timeout; logger may be nil for slog.Default().
func NewClient(issuer, realm, clientID, clientSecret string, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	tokenURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", strings.TrimRight(issuer, "/"), realm)

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       scopes,
			// Client credentials go in the form body, not a Basic auth header.
			Endpoint: oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams},
		},
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

// PasswordGrant exchanges the user's credentials for a token payload.
// A rejected login or a response without an access token is an error; there
// is no retry.
func (c *Client) PasswordGrant(ctx context.Context, username, password string) (*model.Token, error) {
	c.logger.Debug("requesting password grant", "token_url", c.oauth.Endpoint.TokenURL, "client_id", c.oauth.ClientID, "username", username)

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.oauth.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("keycloak password grant for %q: %w", username, err)
	}
	if tok.AccessToken == "" {
		return nil, errors.New("keycloak response contained no access token")
	}

	out := &model.Token{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		ObtainedAt:   c.now(),
	}
	if id, ok := tok.Extra("id_token").(string); ok {
		out.IDToken = id
	}
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		out.ExpiresIn = int64(v)
	case int64:
		out.ExpiresIn = v
	}

	c.logger.Debug("password grant succeeded", "username", username, "expires_in", out.ExpiresIn)
	return out, nil
}
