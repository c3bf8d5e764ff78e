package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// storage.type must be a known value.
	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	// If storage.type is "postgres", DSN or DSNFile must be set.
	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	// identity.type must be a known value.
	switch c.Identity.Type {
	case "local", "cognito":
		// valid
	default:
		errs = append(errs, fmt.Errorf("identity.type must be \"local\" or \"cognito\", got %q", c.Identity.Type))
	}

	// identity.pool_name drives pool resolution and must not be empty.
	if c.Identity.PoolName == "" {
		errs = append(errs, fmt.Errorf("identity.pool_name is required"))
	}

	// identity.cognito.endpoint is required when the remote provider is selected.
	if c.Identity.Type == "cognito" && c.Identity.Cognito.Endpoint == "" {
		errs = append(errs, fmt.Errorf("identity.cognito.endpoint is required when identity.type is \"cognito\""))
	}

	return errors.Join(errs...)
}
