// Package tokencache implements the TokenCache port as a JSON file in the
// user's home directory, guarded by a sibling lock file.
package tokencache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/ericfisherdev/keyprov/internal/domain/model"
	"github.com/ericfisherdev/keyprov/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenCache = (*Cache)(nil)

const (
	// lockTimeout bounds how long Load/Store wait for the file lock.
	lockTimeout = 10 * time.Second

	// lockRetryInterval is the poll interval while waiting for the lock.
	lockRetryInterval = 10 * time.Millisecond
)

// Cache persists the last obtained token payload to a single file, readable
// and writable by the current OS user only. The file is read once at startup
// and written at most once per run.
type Cache struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// New returns a cache backed by the given file path. logger may be nil for
// slog.Default().
func New(path string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}
}

// Load returns the cached token, or nil when the cache file is missing or
// unreadable. A corrupt cache is not an error; it just forces a fresh login.
func (c *Cache) Load() *model.Token {
	if _, err := os.Stat(c.path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	unlock, err := c.acquireLock()
	if err != nil {
		c.logger.Debug("could not lock token cache, ignoring it", "path", c.path, "error", err)
		return nil
	}
	defer unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		c.logger.Debug("could not read token cache, ignoring it", "path", c.path, "error", err)
		return nil
	}

	var token model.Token
	if err := json.Unmarshal(data, &token); err != nil {
		c.logger.Debug("token cache is corrupt, ignoring it", "path", c.path, "error", err)
		return nil
	}
	if token.AccessToken == "" {
		return nil
	}
	return &token
}

// Store writes the full token payload, creating the cache directory when
// needed. The file is written with mode 0600.
func (c *Cache) Store(token *model.Token) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("create token cache directory: %w", err)
	}

	unlock, err := c.acquireLock()
	if err != nil {
		return fmt.Errorf("lock token cache: %w", err)
	}
	defer unlock()

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("write token cache: %w", err)
	}

	c.logger.Debug("token cache written", "path", c.path)
	return nil
}

func (c *Cache) acquireLock() (func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	if _, err := c.lock.TryLockContext(ctx, lockRetryInterval); err != nil {
		return nil, err
	}
	return func() {
		if err := c.lock.Unlock(); err != nil {
			c.logger.Debug("could not unlock token cache", "path", c.path, "error", err)
		}
	}, nil
}
