// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// requiredGuidance is appended to the error for a missing required variable
// so a first-time user sees the full set in one place.
const requiredGuidance = `
Required environment variables:
  KEYCLOAK_URL              (e.g. https://sso.example.com)
  KEYCLOAK_REALM            (e.g. your_realm_name)
  KEYCLOAK_CLIENT_ID        (client id registered for this tool)
  THREESCALE_ADMIN_API_URL  (e.g. https://your-org-admin.3scale.net/admin/api/)
  THREESCALE_ADMIN_API_KEY  (3scale admin portal access token)
Optional:
  KEYCLOAK_CLIENT_SECRET    (only for confidential clients)
  KEYPROV_TOKEN_CACHE       (default $HOME/.keyprov/token.json)
  KEYPROV_DB_PATH           (default $HOME/.keyprov/keyprov.db)
  KEYPROV_SECRET_KEY        (32 bytes; enables encrypted provisioning history)
  KEYPROV_HTTP_TIMEOUT      (default 30s)`

// Config holds the application configuration loaded from environment variables.
type Config struct {
	KeycloakURL          string
	KeycloakRealm        string
	KeycloakClientID     string
	KeycloakClientSecret string
	AdminAPIURL          string
	AdminAPIKey          string
	TokenCachePath       string
	DBPath               string
	SecretKey            []byte
	HTTPTimeout          time.Duration
}

// HasSecretKey reports whether an encryption key for the provisioning
// history store was configured.
func (c *Config) HasSecretKey() bool {
	return len(c.SecretKey) > 0
}

// Load reads configuration from environment variables and returns a
// validated Config. Keycloak and 3scale admin settings are required; the
// token cache path, history database path, secret key, and HTTP timeout are
// optional with defaults. KEYPROV_SECRET_KEY, when set, must be exactly
// 32 bytes (AES-256).
func Load() (*Config, error) {
	cfg := &Config{
		KeycloakClientSecret: os.Getenv("KEYCLOAK_CLIENT_SECRET"),
		HTTPTimeout:          30 * time.Second,
	}

	required := []struct {
		name string
		dst  *string
	}{
		{"KEYCLOAK_URL", &cfg.KeycloakURL},
		{"KEYCLOAK_REALM", &cfg.KeycloakRealm},
		{"KEYCLOAK_CLIENT_ID", &cfg.KeycloakClientID},
		{"THREESCALE_ADMIN_API_URL", &cfg.AdminAPIURL},
		{"THREESCALE_ADMIN_API_KEY", &cfg.AdminAPIKey},
	}
	for _, r := range required {
		v := os.Getenv(r.name)
		if v == "" {
			return nil, fmt.Errorf("environment variable %s is not set\n%s", r.name, requiredGuidance)
		}
		*r.dst = v
	}

	if v, ok := os.LookupEnv("KEYPROV_HTTP_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("KEYPROV_HTTP_TIMEOUT has invalid duration %q: %w", v, err)
		}
		cfg.HTTPTimeout = parsed
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	cfg.TokenCachePath = filepath.Join(home, ".keyprov", "token.json")
	if v, ok := os.LookupEnv("KEYPROV_TOKEN_CACHE"); ok {
		cfg.TokenCachePath = v
	}

	cfg.DBPath = filepath.Join(home, ".keyprov", "keyprov.db")
	if v, ok := os.LookupEnv("KEYPROV_DB_PATH"); ok {
		cfg.DBPath = v
	}

	if v := os.Getenv("KEYPROV_SECRET_KEY"); v != "" {
		if len(v) != 32 {
			return nil, fmt.Errorf("KEYPROV_SECRET_KEY must be exactly 32 bytes, got %d", len(v))
		}
		cfg.SecretKey = []byte(v)
	}

	return cfg, nil
}
