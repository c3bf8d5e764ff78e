// Package storage defines the record store contract the booking components
// depend on: attribute records addressed by (collection, key), with upsert
// put, point get, and full scan. Two backends implement it: an in-memory
// store for tests and lightweight deployments, and a PostgreSQL store for
// durable deployments.
//
// A single Put or Get is atomic, but the contract offers no transactions
// across calls. Read-then-write sequences built on top of it (such as the
// reservation overlap check) are therefore not serializable; see the
// booking package for the consequences and the opt-in mitigation.
package storage
