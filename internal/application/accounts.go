package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/keyprov/internal/domain/model"
	"github.com/ericfisherdev/keyprov/internal/domain/port/driven"
)

// AccountService resolves the developer account for a session, provisioning
// one via signup when the lookup reports no match.
type AccountService struct {
	admin    driven.AdminClient
	prompter driven.Prompter
	logger   *slog.Logger
}

// NewAccountService creates an AccountService. logger may be nil for
// slog.Default().
func NewAccountService(admin driven.AdminClient, prompter driven.Prompter, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{admin: admin, prompter: prompter, logger: logger}
}

// ResolveOrCreate looks up the account for the session's identifier. A
// not-found lookup triggers exactly one signup attempt; signup failure is
// fatal for the whole flow. Signup needs a password: the one collected
// during a fresh login is reused, and when the token was reused instead a
// new password is prompted.
func (s *AccountService) ResolveOrCreate(ctx context.Context, sess Session) (model.Account, error) {
	username := sess.Identity.Username

	account, err := s.admin.FindAccount(ctx, username)
	if err == nil {
		s.logger.Debug("account found", "username", username, "account_id", account.ID)
		return account, nil
	}
	if !errors.Is(err, driven.ErrNotFound) {
		return model.Account{}, err
	}

	s.logger.Info("no account for identifier, creating one", "username", username)

	password := sess.Password
	if password == "" {
		password, err = s.prompter.Secret(fmt.Sprintf("Password for the new developer account (user %q): ", username))
		if err != nil {
			return model.Account{}, fmt.Errorf("read account password: %w", err)
		}
		if password == "" {
			return model.Account{}, errors.New("a password is required to create the account")
		}
	}

	account, err = s.admin.Signup(ctx, driven.SignupParams{
		Username: username,
		Email:    sess.Identity.Email,
		OrgName:  sess.Identity.Email,
		Password: password,
	})
	if err != nil {
		return model.Account{}, err
	}

	s.logger.Info("account created", "username", username, "account_id", account.ID)
	return account, nil
}
