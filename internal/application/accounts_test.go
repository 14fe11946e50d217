package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/keyprov/internal/application"
	"github.com/ericfisherdev/keyprov/internal/domain/model"
	"github.com/ericfisherdev/keyprov/internal/domain/port/driven"
)

func freshSession() application.Session {
	return application.Session{
		Identity:   model.Identity{Username: "jdoe", Email: "jdoe@example.com"},
		Password:   "hunter2",
		FreshLogin: true,
	}
}

func reusedSession() application.Session {
	return application.Session{
		Identity: model.Identity{Username: "jdoe", Email: "jdoe@example.com"},
	}
}

func TestResolveOrCreate_AccountFound(t *testing.T) {
	admin := &mockAdminClient{
		findAccount: func(_ context.Context, username string) (model.Account, error) {
			return model.Account{ID: "42", Username: username}, nil
		},
	}

	svc := application.NewAccountService(admin, &mockPrompter{}, nil)
	account, err := svc.ResolveOrCreate(context.Background(), freshSession())

	require.NoError(t, err)
	assert.Equal(t, "42", account.ID)
	assert.Zero(t, admin.signupCalls, "an existing account must not trigger signup")
}

func TestResolveOrCreate_NotFoundProvisionsOnce(t *testing.T) {
	admin := &mockAdminClient{
		signup: func(_ context.Context, params driven.SignupParams) (model.Account, error) {
			assert.Equal(t, "jdoe", params.Username)
			assert.Equal(t, "jdoe@example.com", params.Email)
			assert.Equal(t, "jdoe@example.com", params.OrgName)
			assert.Equal(t, "hunter2", params.Password, "the fresh-login password is reused for signup")
			return model.Account{ID: "77", Username: params.Username}, nil
		},
	}

	svc := application.NewAccountService(admin, &mockPrompter{}, nil)
	account, err := svc.ResolveOrCreate(context.Background(), freshSession())

	require.NoError(t, err)
	assert.Equal(t, "77", account.ID)
	assert.Equal(t, 1, admin.signupCalls, "a not-found lookup must attempt provisioning exactly once")
}

func TestResolveOrCreate_ReusedTokenPromptsForPassword(t *testing.T) {
	admin := &mockAdminClient{
		signup: func(_ context.Context, params driven.SignupParams) (model.Account, error) {
			assert.Equal(t, "fresh-pw", params.Password)
			return model.Account{ID: "77"}, nil
		},
	}
	prompter := &mockPrompter{secrets: []string{"fresh-pw"}}

	svc := application.NewAccountService(admin, prompter, nil)
	_, err := svc.ResolveOrCreate(context.Background(), reusedSession())

	require.NoError(t, err)
	require.Len(t, prompter.secretLabels, 1, "signup after token reuse must prompt for a password")
}

func TestResolveOrCreate_EmptyPromptedPassword(t *testing.T) {
	svc := application.NewAccountService(&mockAdminClient{}, &mockPrompter{}, nil)

	_, err := svc.ResolveOrCreate(context.Background(), reusedSession())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestResolveOrCreate_LookupFailure(t *testing.T) {
	admin := &mockAdminClient{
		findAccount: func(_ context.Context, _ string) (model.Account, error) {
			return model.Account{}, errors.New("admin api returned status 500")
		},
	}

	svc := application.NewAccountService(admin, &mockPrompter{}, nil)
	_, err := svc.ResolveOrCreate(context.Background(), freshSession())

	require.Error(t, err)
	assert.Zero(t, admin.signupCalls, "only a not-found lookup triggers signup")
}

func TestResolveOrCreate_SignupFailureIsFatal(t *testing.T) {
	admin := &mockAdminClient{
		signup: func(_ context.Context, _ driven.SignupParams) (model.Account, error) {
			return model.Account{}, errors.New("signup rejected")
		},
	}

	svc := application.NewAccountService(admin, &mockPrompter{}, nil)
	_, err := svc.ResolveOrCreate(context.Background(), freshSession())

	assert.Error(t, err)
}
