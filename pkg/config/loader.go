package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, BUCHUNG_CONFIG env, ./config.yaml, /etc/buchung/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	// Apply environment variable overrides.
	applyEnvOverrides(&cfg)

	// Resolve _file references.
	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	// Validate.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. BUCHUNG_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/buchung/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	// Explicit path takes priority.
	if configPath != "" {
		return configPath
	}

	// Check BUCHUNG_CONFIG env var.
	if envPath := os.Getenv("BUCHUNG_CONFIG"); envPath != "" {
		return envPath
	}

	// Check common locations.
	candidates := []string{
		"config.yaml",
		"/etc/buchung/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps BUCHUNG_* environment variables to config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BUCHUNG_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("BUCHUNG_STORAGE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("BUCHUNG_POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("BUCHUNG_IDENTITY"); v != "" {
		cfg.Identity.Type = v
	}
	if v := os.Getenv("BUCHUNG_POOL_NAME"); v != "" {
		cfg.Identity.PoolName = v
	}
	if v := os.Getenv("BUCHUNG_SIGNING_KEY"); v != "" {
		cfg.Identity.Local.SigningKey = v
	}
	if v := os.Getenv("BUCHUNG_COGNITO_ENDPOINT"); v != "" {
		cfg.Identity.Cognito.Endpoint = v
	}
	if v := os.Getenv("BUCHUNG_SERIALIZE_CREATES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Booking.SerializeCreates = b
		}
	}
	if v := os.Getenv("BUCHUNG_WEATHER_URL"); v != "" {
		cfg.Weather.BackendURL = v
	}
	if v := os.Getenv("BUCHUNG_METRICS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Observability.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("BUCHUNG_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}
}

// resolveFileReferences reads _file fields and populates the corresponding
// value fields. For each field ending in _file, if the value field is empty
// and the file field is set, the file is read, whitespace is trimmed, and
// the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// storage.postgres.dsn_file -> storage.postgres.dsn
	if cfg.Storage.Postgres.DSNFile != "" && cfg.Storage.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Storage.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("storage.postgres.dsn_file: %w", err)
		}
		cfg.Storage.Postgres.DSN = val
	}

	// identity.local.signing_key_file -> identity.local.signing_key
	if cfg.Identity.Local.SigningKeyFile != "" && cfg.Identity.Local.SigningKey == "" {
		val, err := readSecretFile(cfg.Identity.Local.SigningKeyFile)
		if err != nil {
			return fmt.Errorf("identity.local.signing_key_file: %w", err)
		}
		cfg.Identity.Local.SigningKey = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
