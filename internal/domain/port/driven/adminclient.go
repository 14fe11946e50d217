package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/keyprov/internal/domain/model"
)

// ErrNotFound is returned by AdminClient lookups when the management API
// reports no matching entity. It is a decision branch for callers (account
// missing triggers signup), never a terminal failure by itself.
var ErrNotFound = errors.New("not found")

// SignupParams are the fields required by the account signup endpoint.
type SignupParams struct {
	Username string
	Email    string
	OrgName  string
	Password string
}

// AdminClient defines the driven port for the API-management admin API
// (accounts, service catalog, application registration).
type AdminClient interface {
	// FindAccount looks up the developer account for a login identifier.
	// Returns ErrNotFound when no account exists for the identifier.
	FindAccount(ctx context.Context, username string) (model.Account, error)

	// Signup provisions a new developer account and returns it.
	Signup(ctx context.Context, params SignupParams) (model.Account, error)

	// Services lists the service catalog (single page, fixed cap).
	// Entries missing an id or name are dropped.
	Services(ctx context.Context) ([]model.Service, error)

	// Plans lists the application plans for a service.
	Plans(ctx context.Context, serviceID string) ([]model.Plan, error)

	// Applications lists all registered applications for an account.
	// Incomplete entries are dropped.
	Applications(ctx context.Context, accountID string) ([]model.Application, error)

	// CreateApplication registers a new application under the given plan.
	// The response must carry both an application id and a generated key.
	CreateApplication(ctx context.Context, accountID, planID, name string) (model.Application, error)
}
