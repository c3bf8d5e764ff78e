// Package postgres provides a PostgreSQL implementation of storage.Store.
// It uses pgx/v5 for connection pooling and keeps each record as a JSONB
// document addressed by (collection, key).
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhuss/buchung/pkg/storage"
)

// Store is a PostgreSQL-backed record store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Put upserts a record. An existing (collection, key) row is replaced;
// last write wins.
func (s *Store) Put(ctx context.Context, collection, key string, rec storage.Record) error {
	attrs, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO records (collection, key, attributes)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, key)
		DO UPDATE SET attributes = EXCLUDED.attributes, updated_at = now()
	`, collection, key, attrs)
	if err != nil {
		return fmt.Errorf("upserting record: %w", err)
	}

	return nil
}

// Get returns the record for a key, or storage.ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, key string) (storage.Record, error) {
	var attrs []byte
	err := s.pool.QueryRow(ctx, `
		SELECT attributes FROM records
		WHERE collection = $1 AND key = $2
	`, collection, key).Scan(&attrs)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying record: %w", err)
	}

	return unmarshalRecord(attrs)
}

// Scan returns all records of a collection. Order is store-defined.
func (s *Store) Scan(ctx context.Context, collection string) ([]storage.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT attributes FROM records
		WHERE collection = $1
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("scanning collection %s: %w", collection, err)
	}
	defer rows.Close()

	records := make([]storage.Record, 0)
	for rows.Next() {
		var attrs []byte
		if err := rows.Scan(&attrs); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		rec, err := unmarshalRecord(attrs)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return records, nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func unmarshalRecord(attrs []byte) (storage.Record, error) {
	var rec storage.Record
	if err := json.Unmarshal(attrs, &rec); err != nil {
		return nil, fmt.Errorf("unmarshaling record: %w", err)
	}
	return rec, nil
}
