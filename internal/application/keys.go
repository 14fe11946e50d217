package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/keyprov/internal/domain/model"
)

// appNameFormat synthesizes a unique application name from the identifier,
// service, plan, and a timestamp.
const appNameFormat = "keyprov-app-%s-%s-%s-%s"

// KeyService resolves the application (API key) for an (account, service,
// plan) target: reuse the first existing match, or register a new one.
//
// Uniqueness per (account, service, plan) is not enforced server-side; the
// scan-then-create here is the only guard, so two concurrent runs against
// the same account can race and both create an application. Deliberately
// left unlocked.
type KeyService struct {
	catalog *Catalog
	admin   appCreator
	logger  *slog.Logger
}

// appCreator is the slice of the admin client this service mutates through.
type appCreator interface {
	CreateApplication(ctx context.Context, accountID, planID, name string) (model.Application, error)
}

// NewKeyService creates a KeyService. logger may be nil for slog.Default().
func NewKeyService(catalog *Catalog, admin appCreator, logger *slog.Logger) *KeyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &KeyService{catalog: catalog, admin: admin, logger: logger}
}

// ResolveOrCreate scans the account's applications for the first entry
// matching (serviceID, planID) — order is whatever the API returns — and
// returns its key. On no match it registers exactly one new application;
// the response must carry both an id and a generated key. The Reused flag
// on the result is informational only.
func (s *KeyService) ResolveOrCreate(ctx context.Context, accountID, serviceID, planID, namingSeed string) (model.ProvisionedKey, error) {
	apps, err := s.catalog.Applications(ctx, accountID)
	if err != nil {
		return model.ProvisionedKey{}, err
	}

	for _, app := range apps {
		if app.ServiceID == serviceID && app.PlanID == planID {
			s.logger.Debug("existing application matches target",
				"application_id", app.ID, "service_id", serviceID, "plan_id", planID)
			return model.ProvisionedKey{ApplicationID: app.ID, Value: app.Key, Reused: true}, nil
		}
	}

	name := fmt.Sprintf(appNameFormat, namingSeed, serviceID, planID, time.Now().Format("20060102150405"))
	s.logger.Info("registering new application", "name", name, "service_id", serviceID, "plan_id", planID)

	app, err := s.admin.CreateApplication(ctx, accountID, planID, name)
	if err != nil {
		return model.ProvisionedKey{}, err
	}

	return model.ProvisionedKey{ApplicationID: app.ID, Value: app.Key}, nil
}
