package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/keyprov/internal/domain/model"
	"github.com/ericfisherdev/keyprov/internal/domain/port/driven"
)

// Provision is the outcome of resolving a key for one service.
type Provision struct {
	Account model.Account
	Service model.Service
	Plan    model.Plan
	Key     model.ProvisionedKey
}

// ServiceKeyStatus pairs a catalog service with the account's key for it,
// empty when none is provisioned.
type ServiceKeyStatus struct {
	Service model.Service
	Key     string
}

// Provisioner orchestrates the whole flow: authenticate, resolve the
// account, read the catalog, resolve the application. Stages run strictly
// in that order and any failure aborts the run; there is no retry and no
// rollback (an account created before a later failure is left as-is).
type Provisioner struct {
	auth     *Authenticator
	accounts *AccountService
	catalog  *Catalog
	keys     *KeyService
	history  driven.HistoryStore
	logger   *slog.Logger

	sess     Session
	account  model.Account
	resolved bool
}

// NewProvisioner creates a Provisioner. logger may be nil for slog.Default().
func NewProvisioner(auth *Authenticator, accounts *AccountService, catalog *Catalog, keys *KeyService, history driven.HistoryStore, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{
		auth:     auth,
		accounts: accounts,
		catalog:  catalog,
		keys:     keys,
		history:  history,
		logger:   logger,
	}
}

// Resolve authenticates and resolves the developer account, once per run.
func (p *Provisioner) Resolve(ctx context.Context) (Session, model.Account, error) {
	if p.resolved {
		return p.sess, p.account, nil
	}

	sess, err := p.auth.Authenticate(ctx)
	if err != nil {
		return Session{}, model.Account{}, err
	}

	account, err := p.accounts.ResolveOrCreate(ctx, sess)
	if err != nil {
		return Session{}, model.Account{}, err
	}

	p.sess, p.account, p.resolved = sess, account, true
	return sess, account, nil
}

// Services lists the catalog for the resolved account's run.
func (p *Provisioner) Services(ctx context.Context) ([]model.Service, error) {
	if _, _, err := p.Resolve(ctx); err != nil {
		return nil, err
	}
	return p.catalog.Services(ctx)
}

// FindService selects one service by id or by name (exactly one selector
// must be non-empty).
func (p *Provisioner) FindService(ctx context.Context, id, name string) (model.Service, error) {
	if _, _, err := p.Resolve(ctx); err != nil {
		return model.Service{}, err
	}
	switch {
	case id != "" && name == "":
		return p.catalog.ServiceByID(ctx, id)
	case name != "" && id == "":
		return p.catalog.ServiceByName(ctx, name)
	default:
		return model.Service{}, errors.New("exactly one of service id or name must be given")
	}
}

// Status reports, for every catalog service, whether the account already
// holds a key for it.
func (p *Provisioner) Status(ctx context.Context) ([]ServiceKeyStatus, error) {
	_, account, err := p.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	services, err := p.catalog.Services(ctx)
	if err != nil {
		return nil, err
	}
	apps, err := p.catalog.Applications(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	keyByService := make(map[string]string, len(apps))
	for _, app := range apps {
		if _, ok := keyByService[app.ServiceID]; !ok {
			keyByService[app.ServiceID] = app.Key
		}
	}

	statuses := make([]ServiceKeyStatus, 0, len(services))
	for _, svc := range services {
		statuses = append(statuses, ServiceKeyStatus{Service: svc, Key: keyByService[svc.ID]})
	}
	return statuses, nil
}

// Provision resolves a key for the given service using its first application
// plan, recording the outcome in the local history when one is configured.
func (p *Provisioner) Provision(ctx context.Context, svc model.Service) (*Provision, error) {
	sess, account, err := p.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	plans, err := p.catalog.Plans(ctx, svc.ID)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("no application plans for service %q; cannot provision a key", svc.Name)
	}
	plan := plans[0]
	p.logger.Debug("target plan selected", "service_id", svc.ID, "plan_id", plan.ID, "plan_name", plan.Name)

	key, err := p.keys.ResolveOrCreate(ctx, account.ID, svc.ID, plan.ID, sess.Identity.Username)
	if err != nil {
		return nil, err
	}

	p.record(ctx, model.ProvisionRecord{
		Username:      sess.Identity.Username,
		AccountID:     account.ID,
		ServiceID:     svc.ID,
		ServiceName:   svc.Name,
		PlanID:        plan.ID,
		ApplicationID: key.ApplicationID,
		Key:           key.Value,
		Reused:        key.Reused,
	})

	return &Provision{Account: account, Service: svc, Plan: plan, Key: key}, nil
}

// History returns the locally recorded provisioning history.
func (p *Provisioner) History(ctx context.Context) ([]model.ProvisionRecord, error) {
	return p.history.List(ctx)
}

// record appends to the history log. History is supplemental: a disabled
// store is logged at debug, a failing one at warn, and neither fails the run.
func (p *Provisioner) record(ctx context.Context, rec model.ProvisionRecord) {
	err := p.history.Record(ctx, rec)
	switch {
	case err == nil:
	case errors.Is(err, driven.ErrEncryptionKeyNotSet):
		p.logger.Debug("history recording disabled", "reason", err)
	default:
		p.logger.Warn("could not record provisioning history", "error", err)
	}
}
