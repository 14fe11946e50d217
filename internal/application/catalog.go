package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ericfisherdev/keyprov/internal/domain/model"
	"github.com/ericfisherdev/keyprov/internal/domain/port/driven"
)

// Catalog reads services, plans, and registered applications, memoizing each
// query for the life of the instance. There is no eviction: catalog entries
// are read-only and an instance lives for one process run.
type Catalog struct {
	admin  driven.AdminClient
	logger *slog.Logger

	mu             sync.Mutex
	services       []model.Service
	servicesLoaded bool
	plans          map[string][]model.Plan
	apps           map[string][]model.Application
}

// NewCatalog creates a Catalog. logger may be nil for slog.Default().
func NewCatalog(admin driven.AdminClient, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		admin:  admin,
		logger: logger,
		plans:  make(map[string][]model.Plan),
		apps:   make(map[string][]model.Application),
	}
}

// Services lists the service catalog, fetching it at most once per run.
func (c *Catalog) Services(ctx context.Context) ([]model.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.servicesLoaded {
		return c.services, nil
	}

	services, err := c.admin.Services(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("service catalog loaded", "count", len(services))

	c.services = services
	c.servicesLoaded = true
	return services, nil
}

// Plans lists the application plans for a service, fetching each service's
// plans at most once per run.
func (c *Catalog) Plans(ctx context.Context, serviceID string) ([]model.Plan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if plans, ok := c.plans[serviceID]; ok {
		return plans, nil
	}

	plans, err := c.admin.Plans(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("plans loaded", "service_id", serviceID, "count", len(plans))

	c.plans[serviceID] = plans
	return plans, nil
}

// Applications lists the registered applications for an account, fetching
// each account's applications at most once per run.
func (c *Catalog) Applications(ctx context.Context, accountID string) ([]model.Application, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if apps, ok := c.apps[accountID]; ok {
		return apps, nil
	}

	apps, err := c.admin.Applications(ctx, accountID)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("applications loaded", "account_id", accountID, "count", len(apps))

	c.apps[accountID] = apps
	return apps, nil
}

// ServiceByID returns the catalog entry with the given id.
func (c *Catalog) ServiceByID(ctx context.Context, id string) (model.Service, error) {
	services, err := c.Services(ctx)
	if err != nil {
		return model.Service{}, err
	}
	for _, svc := range services {
		if svc.ID == id {
			return svc, nil
		}
	}
	return model.Service{}, fmt.Errorf("service with id %q: %w", id, driven.ErrNotFound)
}

// ServiceByName returns the catalog entry whose name matches, ignoring case.
func (c *Catalog) ServiceByName(ctx context.Context, name string) (model.Service, error) {
	services, err := c.Services(ctx)
	if err != nil {
		return model.Service{}, err
	}
	for _, svc := range services {
		if strings.EqualFold(svc.Name, name) {
			return svc, nil
		}
	}
	return model.Service{}, fmt.Errorf("service named %q: %w", name, driven.ErrNotFound)
}
