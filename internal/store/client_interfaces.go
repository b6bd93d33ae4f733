package store

import (
	"context"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/kv_store_mock.go -package=mock

// KVStore persists named collections, one JSON document per key.
//
// Every method is safe for concurrent use. Update and UpdateMany run their
// callback inside a single write transaction, so a read-modify-write of one
// or several collections cannot interleave with another writer.
type KVStore interface {
	// Get returns the document stored under key or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// GetMany returns the documents of keys read in one consistent
	// snapshot. Absent keys are missing from the result.
	GetMany(ctx context.Context, keys []string) (map[string][]byte, error)

	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte) error

	// SetMany stores all values in one transaction.
	SetMany(ctx context.Context, values map[string][]byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Update replaces the document under key with fn(old). old is nil when
	// the key is absent; returning nil deletes the key. An error from fn
	// aborts the transaction and is returned as is.
	Update(ctx context.Context, key string, fn func(old []byte) ([]byte, error)) error

	// UpdateMany is Update over several keys at once. fn receives the
	// current documents of keys (absent keys missing) and returns the
	// documents to write; a nil value deletes that key, keys not returned
	// are left untouched.
	UpdateMany(ctx context.Context, keys []string, fn func(current map[string][]byte) (map[string][]byte, error)) error

	// Close releases the underlying database.
	Close() error
}
