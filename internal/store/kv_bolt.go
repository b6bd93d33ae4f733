// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/MKhiriev/notesync/internal/logger"
)

var collectionsBucket = []byte("collections")

// boltStore is the bbolt implementation of [KVStore]. bbolt allows a single
// writer at a time, which gives Update and UpdateMany their atomicity.
type boltStore struct {
	db     *bbolt.DB
	logger *logger.Logger
}

// NewBoltStore opens (creating if needed) the bbolt file at path.
func NewBoltStore(path string, log *logger.Logger) (KVStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("error creating store directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		log.Err(err).Str("func", "NewBoltStore").Str("path", path).Msg("error opening bolt database")
		return nil, fmt.Errorf("error opening bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(collectionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating bucket: %w", err)
	}

	log.Debug().Str("func", "NewBoltStore").Str("path", path).Msg("opened bolt database")
	return &boltStore{db: db, logger: log}, nil
}

func (s *boltStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		// bbolt memory is only valid inside the transaction
		doc = copyBytes(tx.Bucket(collectionsBucket).Get([]byte(key)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrKeyNotFound
	}
	return doc, nil
}

func (s *boltStore) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	docs := make(map[string][]byte, len(keys))
	err := s.db.View(func(tx *bbolt.Tx) error {
		readDocuments(tx, keys, docs)
		return nil
	})
	return docs, err
}

func (s *boltStore) Set(ctx context.Context, key string, value []byte) error {
	return s.SetMany(ctx, map[string][]byte{key: value})
}

func (s *boltStore) SetMany(ctx context.Context, values map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return writeDocuments(tx, values)
	})
}

func (s *boltStore) Delete(ctx context.Context, key string) error {
	return s.SetMany(ctx, map[string][]byte{key: nil})
}

func (s *boltStore) Update(ctx context.Context, key string, fn func(old []byte) ([]byte, error)) error {
	return s.UpdateMany(ctx, []string{key}, func(current map[string][]byte) (map[string][]byte, error) {
		next, err := fn(current[key])
		if err != nil {
			return nil, err
		}
		return map[string][]byte{key: next}, nil
	})
}

func (s *boltStore) UpdateMany(ctx context.Context, keys []string, fn func(current map[string][]byte) (map[string][]byte, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		current := make(map[string][]byte, len(keys))
		readDocuments(tx, keys, current)

		next, err := fn(current)
		if err != nil {
			return err
		}
		return writeDocuments(tx, next)
	})
}

func (s *boltStore) Close() error {
	return s.db.Close()
}

func readDocuments(tx *bbolt.Tx, keys []string, dst map[string][]byte) {
	b := tx.Bucket(collectionsBucket)
	for _, key := range keys {
		if doc := b.Get([]byte(key)); doc != nil {
			dst[key] = copyBytes(doc)
		}
	}
}

func writeDocuments(tx *bbolt.Tx, docs map[string][]byte) error {
	b := tx.Bucket(collectionsBucket)
	for key, doc := range docs {
		var err error
		if doc == nil {
			err = b.Delete([]byte(key))
		} else {
			err = b.Put([]byte(key), doc)
		}
		if err != nil {
			return fmt.Errorf("write %q: %w", key, err)
		}
	}
	return nil
}
