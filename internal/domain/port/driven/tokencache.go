package driven

import "github.com/ericfisherdev/keyprov/internal/domain/model"

// TokenCache defines the driven port for the persisted token payload.
// The cache is read once at startup and written at most once per run.
type TokenCache interface {
	// Load returns the cached token, or nil when no usable cache exists.
	// A missing or corrupt cache file is not an error; it simply means a
	// fresh login is needed.
	Load() *model.Token

	// Store persists the full token payload after a fresh login.
	Store(token *model.Token) error
}
