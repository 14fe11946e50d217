package model

// Application is a registered API-key grant tying an account to one service
// and one plan. The management API does not enforce uniqueness per
// (account, service, plan); the resolver's scan-then-create logic does.
type Application struct {
	ID        string
	Name      string
	Key       string
	ServiceID string
	PlanID    string
}

// ProvisionedKey is the outcome of resolving an application for a
// (account, service, plan) target. Reused reports whether an existing
// application was matched instead of registering a new one; callers use it
// for logging only.
type ProvisionedKey struct {
	ApplicationID string
	Value         string
	Reused        bool
}
