package model

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token holds an OIDC token payload as returned by the identity provider.
// The access token is treated as opaque except for the identity claims read
// by Claims.
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresIn    int64     `json:"expires_in,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	ObtainedAt   time.Time `json:"obtained_at,omitempty"`
}

// Identity is the set of claims read from an access token.
type Identity struct {
	Username  string
	Email     string
	Subject   string
	ExpiresAt time.Time
}

// accessClaims maps the JWT claims this tool reads from a Keycloak token.
type accessClaims struct {
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
	jwt.RegisteredClaims
}

// Claims decodes the identity claims embedded in the access token without
// verifying its signature. The claims are read for display and flow control
// only; authorization against the admin API uses a separate service key, so
// the signature is deliberately not a trust boundary here.
func (t *Token) Claims() (Identity, error) {
	claims := &accessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.AccessToken, claims); err != nil {
		return Identity{}, fmt.Errorf("decode access token claims: %w", err)
	}

	id := Identity{
		Username: claims.PreferredUsername,
		Email:    claims.Email,
		Subject:  claims.Subject,
	}
	if id.Username == "" {
		id.Username = claims.Subject
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}
