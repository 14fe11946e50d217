package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/keyprov/internal/domain/model"
	"github.com/ericfisherdev/keyprov/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockIdentityProvider struct {
	grant func(ctx context.Context, username, password string) (*model.Token, error)
	calls int
}

func (m *mockIdentityProvider) PasswordGrant(ctx context.Context, username, password string) (*model.Token, error) {
	m.calls++
	if m.grant == nil {
		return nil, nil
	}
	return m.grant(ctx, username, password)
}

type mockTokenCache struct {
	token    *model.Token
	stored   []*model.Token
	storeErr error
}

func (m *mockTokenCache) Load() *model.Token { return m.token }

func (m *mockTokenCache) Store(token *model.Token) error {
	m.stored = append(m.stored, token)
	return m.storeErr
}

// mockPrompter pops scripted answers; an exhausted script returns "".
type mockPrompter struct {
	lines   []string
	secrets []string

	lineLabels   []string
	secretLabels []string
}

func (m *mockPrompter) Line(label string) (string, error) {
	m.lineLabels = append(m.lineLabels, label)
	if len(m.lines) == 0 {
		return "", nil
	}
	answer := m.lines[0]
	m.lines = m.lines[1:]
	return answer, nil
}

func (m *mockPrompter) Secret(label string) (string, error) {
	m.secretLabels = append(m.secretLabels, label)
	if len(m.secrets) == 0 {
		return "", nil
	}
	answer := m.secrets[0]
	m.secrets = m.secrets[1:]
	return answer, nil
}

type mockAdminClient struct {
	findAccount       func(ctx context.Context, username string) (model.Account, error)
	signup            func(ctx context.Context, params driven.SignupParams) (model.Account, error)
	services          func(ctx context.Context) ([]model.Service, error)
	plans             func(ctx context.Context, serviceID string) ([]model.Plan, error)
	applications      func(ctx context.Context, accountID string) ([]model.Application, error)
	createApplication func(ctx context.Context, accountID, planID, name string) (model.Application, error)

	findCalls         int
	signupCalls       int
	servicesCalls     int
	plansCalls        int
	applicationsCalls int
	createCalls       int
}

func (m *mockAdminClient) FindAccount(ctx context.Context, username string) (model.Account, error) {
	m.findCalls++
	if m.findAccount == nil {
		return model.Account{}, driven.ErrNotFound
	}
	return m.findAccount(ctx, username)
}

func (m *mockAdminClient) Signup(ctx context.Context, params driven.SignupParams) (model.Account, error) {
	m.signupCalls++
	if m.signup == nil {
		return model.Account{}, nil
	}
	return m.signup(ctx, params)
}

func (m *mockAdminClient) Services(ctx context.Context) ([]model.Service, error) {
	m.servicesCalls++
	if m.services == nil {
		return nil, nil
	}
	return m.services(ctx)
}

func (m *mockAdminClient) Plans(ctx context.Context, serviceID string) ([]model.Plan, error) {
	m.plansCalls++
	if m.plans == nil {
		return nil, nil
	}
	return m.plans(ctx, serviceID)
}

func (m *mockAdminClient) Applications(ctx context.Context, accountID string) ([]model.Application, error) {
	m.applicationsCalls++
	if m.applications == nil {
		return nil, nil
	}
	return m.applications(ctx, accountID)
}

func (m *mockAdminClient) CreateApplication(ctx context.Context, accountID, planID, name string) (model.Application, error) {
	m.createCalls++
	if m.createApplication == nil {
		return model.Application{}, nil
	}
	return m.createApplication(ctx, accountID, planID, name)
}

type mockHistoryStore struct {
	records   []model.ProvisionRecord
	recordErr error
	listErr   error
}

func (m *mockHistoryStore) Record(_ context.Context, rec model.ProvisionRecord) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *mockHistoryStore) List(_ context.Context) ([]model.ProvisionRecord, error) {
	return m.records, m.listErr
}

// --- Token helpers ---

// unsignedToken builds an alg=none token; claims are decoded without
// signature verification so that is all the flow needs.
func unsignedToken(t *testing.T, claims jwt.MapClaims) *model.Token {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return &model.Token{AccessToken: raw}
}

// validToken carries all required claims with an expiry far past the reuse
// leeway.
func validToken(t *testing.T, username string) *model.Token {
	t.Helper()
	return unsignedToken(t, jwt.MapClaims{
		"preferred_username": username,
		"email":              username + "@example.com",
		"sub":                "uuid-" + username,
		"exp":                time.Now().Add(time.Hour).Unix(),
	})
}

// expiredToken carries all required claims but an expiry inside the reuse
// leeway, forcing re-authentication.
func expiredToken(t *testing.T, username string) *model.Token {
	t.Helper()
	return unsignedToken(t, jwt.MapClaims{
		"preferred_username": username,
		"email":              username + "@example.com",
		"sub":                "uuid-" + username,
		"exp":                time.Now().Add(30 * time.Second).Unix(),
	})
}
