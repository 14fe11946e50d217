package driven

import (
	"context"

	"github.com/ericfisherdev/keyprov/internal/domain/model"
)

// IdentityProvider defines the driven port for exchanging user credentials
// for an OIDC token.
type IdentityProvider interface {
	// PasswordGrant submits a resource-owner password grant and returns the
	// full token payload. The response missing an access token is an error.
	PasswordGrant(ctx context.Context, username, password string) (*model.Token, error)
}
