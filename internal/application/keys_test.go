package application_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/keyprov/internal/application"
	"github.com/ericfisherdev/keyprov/internal/domain/model"
)

func TestResolveOrCreate_ReusesMatchingApplication(t *testing.T) {
	admin := &mockAdminClient{
		applications: func(_ context.Context, accountID string) ([]model.Application, error) {
			assert.Equal(t, "42", accountID)
			return []model.Application{
				{ID: "5", ServiceID: "2", PlanID: "9", Key: "other-key"},
				{ID: "6", ServiceID: "1", PlanID: "9", Key: "match-key"},
			}, nil
		},
	}
	keys := application.NewKeyService(application.NewCatalog(admin, nil), admin, nil)

	key, err := keys.ResolveOrCreate(context.Background(), "42", "1", "9", "jdoe")

	require.NoError(t, err)
	assert.Equal(t, "match-key", key.Value)
	assert.Equal(t, "6", key.ApplicationID)
	assert.True(t, key.Reused)
	assert.Zero(t, admin.createCalls, "a matching application must not trigger a create")
}

func TestResolveOrCreate_PlanMismatchCreates(t *testing.T) {
	admin := &mockAdminClient{
		applications: func(_ context.Context, _ string) ([]model.Application, error) {
			// Same service, different plan: not a match.
			return []model.Application{{ID: "5", ServiceID: "1", PlanID: "8", Key: "old"}}, nil
		},
		createApplication: func(_ context.Context, accountID, planID, name string) (model.Application, error) {
			assert.Equal(t, "42", accountID)
			assert.Equal(t, "9", planID)
			return model.Application{ID: "100", ServiceID: "1", PlanID: "9", Key: "abcd1234"}, nil
		},
	}
	keys := application.NewKeyService(application.NewCatalog(admin, nil), admin, nil)

	key, err := keys.ResolveOrCreate(context.Background(), "42", "1", "9", "jdoe")

	require.NoError(t, err)
	assert.Equal(t, "abcd1234", key.Value)
	assert.False(t, key.Reused)
	assert.Equal(t, 1, admin.createCalls)
}

func TestResolveOrCreate_GeneratedName(t *testing.T) {
	var gotName string
	admin := &mockAdminClient{
		applications: func(_ context.Context, _ string) ([]model.Application, error) {
			return nil, nil
		},
		createApplication: func(_ context.Context, _, _, name string) (model.Application, error) {
			gotName = name
			return model.Application{ID: "100", Key: "abcd1234"}, nil
		},
	}
	keys := application.NewKeyService(application.NewCatalog(admin, nil), admin, nil)

	_, err := keys.ResolveOrCreate(context.Background(), "42", "1", "9", "jdoe")

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^keyprov-app-jdoe-1-9-\d{14}$`), gotName)
}

func TestResolveOrCreate_CreateFailure(t *testing.T) {
	admin := &mockAdminClient{
		applications: func(_ context.Context, _ string) ([]model.Application, error) {
			return nil, nil
		},
		createApplication: func(_ context.Context, _, _, _ string) (model.Application, error) {
			return model.Application{}, errors.New("plan rejected")
		},
	}
	keys := application.NewKeyService(application.NewCatalog(admin, nil), admin, nil)

	_, err := keys.ResolveOrCreate(context.Background(), "42", "1", "9", "jdoe")

	assert.Error(t, err)
}

func TestCatalog_MemoizesQueries(t *testing.T) {
	admin := &mockAdminClient{
		services: func(_ context.Context) ([]model.Service, error) {
			return []model.Service{{ID: "1", Name: "orders"}}, nil
		},
		plans: func(_ context.Context, _ string) ([]model.Plan, error) {
			return []model.Plan{{ID: "9", Name: "basic", ServiceID: "1"}}, nil
		},
		applications: func(_ context.Context, _ string) ([]model.Application, error) {
			return nil, nil
		},
	}
	catalog := application.NewCatalog(admin, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := catalog.Services(ctx)
		require.NoError(t, err)
		_, err = catalog.Plans(ctx, "1")
		require.NoError(t, err)
		_, err = catalog.Applications(ctx, "42")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, admin.servicesCalls)
	assert.Equal(t, 1, admin.plansCalls)
	assert.Equal(t, 1, admin.applicationsCalls)
}

func TestCatalog_ServiceLookup(t *testing.T) {
	admin := &mockAdminClient{
		services: func(_ context.Context) ([]model.Service, error) {
			return []model.Service{
				{ID: "1", Name: "orders"},
				{ID: "2", Name: "billing"},
			}, nil
		},
	}
	catalog := application.NewCatalog(admin, nil)
	ctx := context.Background()

	byID, err := catalog.ServiceByID(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "billing", byID.Name)

	byName, err := catalog.ServiceByName(ctx, "ORDERS")
	require.NoError(t, err)
	assert.Equal(t, "1", byName.ID, "name matching ignores case")

	_, err = catalog.ServiceByID(ctx, "3")
	assert.Error(t, err)
	_, err = catalog.ServiceByName(ctx, "payments")
	assert.Error(t, err)
}
