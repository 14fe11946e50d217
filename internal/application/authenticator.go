// Package application contains the credential-resolution flow: token
// reuse/validation, account lookup-or-creation, catalog reads, and
// application reuse-or-registration. Each stage depends on the previous
// one's output and any failure is terminal for the run.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/user"
	"time"

	"github.com/ericfisherdev/keyprov/internal/domain/model"
	"github.com/ericfisherdev/keyprov/internal/domain/port/driven"
)

// reuseLeeway is the margin a cached token's expiry must clear before the
// token is reused instead of re-authenticating.
const reuseLeeway = 60 * time.Second

// Session is the outcome of authentication. Password is only set after a
// fresh login; a reused token carries no password, so later stages that need
// one (account signup) must prompt for it.
type Session struct {
	Token      *model.Token
	Identity   model.Identity
	Password   string
	FreshLogin bool
}

// Authenticator resolves a usable token: a cached one when its claims are
// present and its expiry clears the leeway, otherwise a fresh interactive
// password-grant login.
type Authenticator struct {
	idp      driven.IdentityProvider
	cache    driven.TokenCache
	prompter driven.Prompter
	logger   *slog.Logger
}

// NewAuthenticator creates an Authenticator. logger may be nil for
// slog.Default().
func NewAuthenticator(idp driven.IdentityProvider, cache driven.TokenCache, prompter driven.Prompter, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		idp:      idp,
		cache:    cache,
		prompter: prompter,
		logger:   logger,
	}
}

// Authenticate returns a session for the current user. A valid cached token
// is reused without any network call; otherwise the user is prompted for an
// identifier (defaulting to the invoking OS user) and password, and exactly
// one token request is made. On fresh login the full token payload is
// persisted to the cache.
func (a *Authenticator) Authenticate(ctx context.Context) (Session, error) {
	if cached := a.cache.Load(); cached != nil {
		id, err := cached.Claims()
		switch {
		case err != nil:
			a.logger.Debug("cached token is undecodable, re-authenticating", "error", err)
		case id.Username == "" || id.Email == "" || id.ExpiresAt.IsZero():
			a.logger.Debug("cached token is missing required claims, re-authenticating")
		case !id.ExpiresAt.After(time.Now().Add(reuseLeeway)):
			a.logger.Debug("cached token is expired or close to expiry, re-authenticating", "expires_at", id.ExpiresAt)
		default:
			a.logger.Debug("reusing cached token", "username", id.Username, "expires_at", id.ExpiresAt)
			return Session{Token: cached, Identity: id}, nil
		}
	}

	username, err := a.promptUsername()
	if err != nil {
		return Session{}, err
	}

	password, err := a.prompter.Secret(fmt.Sprintf("SSO password for user %q: ", username))
	if err != nil {
		return Session{}, fmt.Errorf("read password: %w", err)
	}

	token, err := a.idp.PasswordGrant(ctx, username, password)
	if err != nil {
		return Session{}, err
	}

	id, err := token.Claims()
	if err != nil {
		a.logger.Warn("could not decode claims from new token", "error", err)
		id = model.Identity{}
	}
	if id.Username == "" {
		id.Username = username
	}
	if id.Email == "" {
		a.logger.Warn("token carries no email claim; one is needed for account creation")
		email, err := a.prompter.Line("Email address for the developer account: ")
		if err != nil {
			return Session{}, fmt.Errorf("read email: %w", err)
		}
		if email == "" {
			return Session{}, errors.New("an email address is required")
		}
		id.Email = email
	}

	if err := a.cache.Store(token); err != nil {
		a.logger.Warn("could not persist token cache", "error", err)
	}

	a.logger.Info("login successful", "username", id.Username, "email", id.Email)
	return Session{Token: token, Identity: id, Password: password, FreshLogin: true}, nil
}

func (a *Authenticator) promptUsername() (string, error) {
	def := currentOSUser()
	label := "SOEID (SSO username): "
	if def != "" {
		label = fmt.Sprintf("SOEID (SSO username) [%s]: ", def)
	}

	username, err := a.prompter.Line(label)
	if err != nil {
		return "", fmt.Errorf("read username: %w", err)
	}
	if username == "" {
		username = def
	}
	if username == "" {
		return "", errors.New("a login identifier is required")
	}
	return username, nil
}

func currentOSUser() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}
