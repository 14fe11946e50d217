package model

// Service is a read-only catalog entry for an API service (model).
type Service struct {
	ID         string
	Name       string
	BackendURL string // optional; empty when the catalog entry has none
}

// Plan is an application plan tier belonging to a service.
type Plan struct {
	ID        string
	Name      string
	ServiceID string
}
