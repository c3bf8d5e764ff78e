// Command server runs the buchung booking gateway.
//
// Configuration is layered: built-in defaults, an optional YAML file
// (-config flag, BUCHUNG_CONFIG, ./config.yaml, /etc/buchung/config.yaml),
// then BUCHUNG_* environment overrides. See pkg/config for the full set.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/rhuss/buchung/pkg/auth"
	"github.com/rhuss/buchung/pkg/booking"
	"github.com/rhuss/buchung/pkg/config"
	"github.com/rhuss/buchung/pkg/debug"
	"github.com/rhuss/buchung/pkg/identity"
	"github.com/rhuss/buchung/pkg/identity/cognito"
	"github.com/rhuss/buchung/pkg/identity/local"
	"github.com/rhuss/buchung/pkg/storage"
	"github.com/rhuss/buchung/pkg/storage/memory"
	"github.com/rhuss/buchung/pkg/storage/postgres"
	transporthttp "github.com/rhuss/buchung/pkg/transport/http"
	"github.com/rhuss/buchung/pkg/weather"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	debug.Init(cfg.Logging.Debug, cfg.Logging.Level)
	logger := slog.Default()

	ctx := context.Background()

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer store.Close()

	provider, err := newIdentityClient(cfg)
	if err != nil {
		return fmt.Errorf("creating identity client: %w", err)
	}

	authSvc, err := auth.NewService(ctx, provider, auth.Config{
		PoolNameFragment: cfg.Identity.PoolName,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating auth service: %w", err)
	}

	bookingSvc, err := booking.NewService(store, booking.Config{
		SerializeCreates: cfg.Booking.SerializeCreates,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating booking service: %w", err)
	}

	var weatherSvc *weather.Service
	if cfg.Weather.BackendURL != "" {
		weatherSvc, err = weather.NewService(weather.Config{
			BackendURL: cfg.Weather.BackendURL,
			Timeout:    cfg.Weather.Timeout,
		}, store, logger)
		if err != nil {
			return fmt.Errorf("creating weather service: %w", err)
		}
	}

	srv := transporthttp.NewServer(
		transporthttp.AdapterDeps{
			Auth:    authSvc,
			Booking: bookingSvc,
			Weather: weatherSvc,
			Store:   store,
		},
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithMetrics(cfg.Observability.Metrics.Enabled),
		transporthttp.WithLogger(logger),
	)

	return srv.ListenAndServe()
}

// newStore builds the configured record store backend.
func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Storage.Type {
	case "postgres":
		logger.Info("storage enabled", "type", "postgres")
		return postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MinConns:       cfg.Storage.Postgres.MinConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
	default:
		logger.Info("storage enabled", "type", "memory")
		return memory.New(), nil
	}
}

// newIdentityClient builds the configured identity provider client.
func newIdentityClient(cfg *config.Config) (identity.Client, error) {
	switch cfg.Identity.Type {
	case "cognito":
		return cognito.NewClient(cfg.Identity.Cognito.Endpoint, cfg.Identity.Cognito.Timeout), nil
	default:
		signingKey := cfg.Identity.Local.SigningKey
		if signingKey == "" {
			return nil, fmt.Errorf("identity.local.signing_key is required for the local provider")
		}
		return local.New(local.Config{
			PoolName:   cfg.Identity.PoolName,
			ClientName: "client-app",
			SigningKey: signingKey,
		}), nil
	}
}
