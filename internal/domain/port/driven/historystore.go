package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/keyprov/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned by HistoryStore operations when
// KEYPROV_SECRET_KEY has not been configured. Callers treat it as "history
// disabled" rather than a failure.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set KEYPROV_SECRET_KEY")

// HistoryStore defines the driven port for the local provisioning audit log.
// The adapter encrypts key values at rest; this interface operates on
// plaintext at the domain boundary.
type HistoryStore interface {
	// Record appends one provisioning outcome. Returns ErrEncryptionKeyNotSet
	// when the store was constructed without an encryption key.
	Record(ctx context.Context, rec model.ProvisionRecord) error

	// List returns all recorded provisions, newest first, with decrypted keys.
	// Returns ErrEncryptionKeyNotSet when no encryption key is configured.
	List(ctx context.Context) ([]model.ProvisionRecord, error)
}
