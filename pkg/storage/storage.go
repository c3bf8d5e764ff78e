package storage

import "context"

// Collection names used by the gateway.
const (
	// CollectionTables holds table records keyed by the table ID.
	CollectionTables = "tables"

	// CollectionReservations holds reservation records keyed by UUID.
	CollectionReservations = "reservations"

	// CollectionWeather holds forecast snapshots keyed by UUID.
	CollectionWeather = "weather"
)

// Record is a schemaless attribute record. Values are restricted to what
// JSON round-trips cleanly: strings, booleans, float64 numbers, nested
// maps and slices thereof.
type Record map[string]any

// Store is key-addressed durable storage for attribute records.
//
// Put is an upsert: writing an existing (collection, key) replaces the
// record, last write wins. Get returns ErrNotFound for a missing key; a
// missing key is always an error, never an empty record. Scan returns all
// records of a collection in store-defined order; callers must not depend
// on ordering.
type Store interface {
	Put(ctx context.Context, collection, key string, rec Record) error
	Get(ctx context.Context, collection, key string) (Record, error)
	Scan(ctx context.Context, collection string) ([]Record, error)

	// HealthCheck verifies the store connection is functional.
	HealthCheck(ctx context.Context) error

	// Close releases connections and resources.
	Close() error
}
