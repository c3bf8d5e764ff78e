// Package config provides unified configuration for the buchung gateway.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (BUCHUNG_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the buchung gateway.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Identity      IdentityConfig      `yaml:"identity"`
	Booking       BookingConfig       `yaml:"booking"`
	Weather       WeatherConfig       `yaml:"weather"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// LoggingConfig holds log level and debug category settings. The
// BUCHUNG_DEBUG and BUCHUNG_LOG_LEVEL environment variables take
// precedence over these values.
type LoggingConfig struct {
	// Level is the minimum log level: ERROR, WARN, INFO, DEBUG, TRACE.
	Level string `yaml:"level"` // default: "INFO"

	// Debug is a comma-separated list of debug categories, e.g.
	// "identity,booking" or "all".
	Debug string `yaml:"debug"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	MaxBodySize     int64         `yaml:"max_body_size"`    // default: 1 MB
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 30s
}

// StorageConfig holds record store settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"` // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MinConns       int32  `yaml:"min_conns"`        // default: 5
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: true
}

// IdentityConfig holds identity provider settings.
type IdentityConfig struct {
	// Type selects the provider: "local" (in-process pool) or "cognito"
	// (remote Cognito-compatible endpoint). Default: "local".
	Type string `yaml:"type"`

	// PoolName is the pool-name fragment used to resolve the user pool.
	PoolName string `yaml:"pool_name"` // default: "userpool"

	Local   LocalIdentityConfig   `yaml:"local"`
	Cognito CognitoIdentityConfig `yaml:"cognito"`
}

// LocalIdentityConfig holds settings for the in-process provider.
type LocalIdentityConfig struct {
	SigningKey     string `yaml:"signing_key"`
	SigningKeyFile string `yaml:"signing_key_file"` // _file variant for signing_key
}

// CognitoIdentityConfig holds settings for the remote provider.
type CognitoIdentityConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"` // default: 30s
}

// BookingConfig holds booking component settings.
type BookingConfig struct {
	// SerializeCreates funnels reservation creation through a
	// process-local mutex. Default: false.
	SerializeCreates bool `yaml:"serialize_creates"`
}

// WeatherConfig holds the forecast pass-through settings. An empty
// backend URL disables the /weather route.
type WeatherConfig struct {
	BackendURL string        `yaml:"backend_url"`
	Timeout    time.Duration `yaml:"timeout"` // default: 10s
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"` // default: true
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			MaxBodySize:     1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns:       25,
				MinConns:       5,
				MigrateOnStart: true,
			},
		},
		Identity: IdentityConfig{
			Type:     "local",
			PoolName: "userpool",
			Cognito: CognitoIdentityConfig{
				Timeout: 30 * time.Second,
			},
		},
		Weather: WeatherConfig{
			Timeout: 10 * time.Second,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
			},
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}
