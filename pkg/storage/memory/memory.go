// Package memory provides an in-memory implementation of storage.Store for
// testing and lightweight deployments. Records are lost when the process
// restarts.
package memory

import (
	"context"
	"sync"

	"github.com/rhuss/buchung/pkg/storage"
)

// Store is an in-memory record store. It is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]storage.Record
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		collections: make(map[string]map[string]storage.Record),
	}
}

// Put upserts a record. The record is copied so later mutation by the
// caller cannot alias stored state.
func (s *Store) Put(_ context.Context, collection, key string, rec storage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]storage.Record)
		s.collections[collection] = coll
	}

	coll[key] = copyRecord(rec)
	return nil
}

// Get returns the record for a key, or storage.ErrNotFound.
func (s *Store) Get(_ context.Context, collection, key string) (storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.collections[collection][key]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return copyRecord(rec), nil
}

// Scan returns all records of a collection. Order is undefined (map
// iteration order).
func (s *Store) Scan(_ context.Context, collection string) ([]storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll := s.collections[collection]
	records := make([]storage.Record, 0, len(coll))
	for _, rec := range coll {
		records = append(records, copyRecord(rec))
	}

	return records, nil
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// copyRecord makes a shallow copy of a record. Attribute values are plain
// JSON scalars in practice, so a shallow copy is sufficient isolation.
func copyRecord(rec storage.Record) storage.Record {
	cp := make(storage.Record, len(rec))
	for k, v := range rec {
		cp[k] = v
	}
	return cp
}
