package model

import "time"

// ProvisionRecord is a local audit entry for one resolved API key.
type ProvisionRecord struct {
	ID            int64
	Username      string
	AccountID     string
	ServiceID     string
	ServiceName   string
	PlanID        string
	ApplicationID string
	Key           string
	Reused        bool
	CreatedAt     time.Time
}
