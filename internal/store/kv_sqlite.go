package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/MKhiriev/notesync/internal/clock"
	"github.com/MKhiriev/notesync/internal/logger"
)

// sqliteStore is the SQLite implementation of [KVStore]. Every collection is
// one row of the collections table.
type sqliteStore struct {
	*DB
	clock  clock.Clock
	logger *logger.Logger
}

// NewSQLiteStore wraps an opened and migrated SQLite database.
func NewSQLiteStore(db *DB, log *logger.Logger) KVStore {
	return &sqliteStore{
		DB:     db,
		clock:  clock.New(),
		logger: log,
	}
}

func (s *sqliteStore) Get(ctx context.Context, key string) ([]byte, error) {
	docs, err := s.GetMany(ctx, []string{key})
	if err != nil {
		return nil, err
	}
	doc, ok := docs[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return doc, nil
}

func (s *sqliteStore) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}
	return s.selectDocuments(ctx, s.DB.DB, keys)
}

func (s *sqliteStore) Set(ctx context.Context, key string, value []byte) error {
	return s.SetMany(ctx, map[string][]byte{key: value})
}

func (s *sqliteStore) SetMany(ctx context.Context, values map[string][]byte) error {
	if len(values) == 0 {
		return nil
	}
	return s.inTx(ctx, "sqliteStore.SetMany", func(tx *sql.Tx) error {
		return s.writeDocuments(ctx, tx, values)
	})
}

func (s *sqliteStore) Delete(ctx context.Context, key string) error {
	return s.inTx(ctx, "sqliteStore.Delete", func(tx *sql.Tx) error {
		return s.writeDocuments(ctx, tx, map[string][]byte{key: nil})
	})
}

func (s *sqliteStore) Update(ctx context.Context, key string, fn func(old []byte) ([]byte, error)) error {
	return s.UpdateMany(ctx, []string{key}, func(current map[string][]byte) (map[string][]byte, error) {
		next, err := fn(current[key])
		if err != nil {
			return nil, err
		}
		return map[string][]byte{key: next}, nil
	})
}

func (s *sqliteStore) UpdateMany(ctx context.Context, keys []string, fn func(current map[string][]byte) (map[string][]byte, error)) error {
	return s.inTx(ctx, "sqliteStore.UpdateMany", func(tx *sql.Tx) error {
		current := map[string][]byte{}
		if len(keys) > 0 {
			var err error
			if current, err = s.selectDocuments(ctx, tx, keys); err != nil {
				return err
			}
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		return s.writeDocuments(ctx, tx, next)
	})
}

func (s *sqliteStore) Close() error {
	return s.DB.Close()
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *sqliteStore) selectDocuments(ctx context.Context, q queryer, keys []string) (map[string][]byte, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectCollectionsQuery(keys...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "sqliteStore.selectDocuments").
			Strs("keys", keys).
			Msg("failed to query collections")
		return nil, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}
	defer rows.Close()

	docs := make(map[string][]byte, len(keys))
	for rows.Next() {
		var (
			key string
			doc []byte
		)
		if err := rows.Scan(&key, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScanningRows, err)
		}
		docs[key] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanningRows, err)
	}

	return docs, nil
}

// writeDocuments upserts non-nil documents and deletes keys mapped to nil.
func (s *sqliteStore) writeDocuments(ctx context.Context, tx *sql.Tx, docs map[string][]byte) error {
	var upserts, deletes []string
	for key, doc := range docs {
		if doc == nil {
			deletes = append(deletes, key)
		} else {
			upserts = append(upserts, key)
		}
	}
	// stable statements, mostly for sqlmock
	sort.Strings(upserts)
	sort.Strings(deletes)

	if len(upserts) > 0 {
		query, args, err := buildUpsertCollectionsQuery(upserts, docs, s.clock.Now().UnixMilli())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: %v", ErrExecutingStatement, err)
		}
	}

	if len(deletes) > 0 {
		query, args, err := buildDeleteCollectionsQuery(deletes...)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: %v", ErrExecutingStatement, err)
		}
	}

	return nil
}

// inTx runs fn in a write transaction and commits it when fn succeeds.
func (s *sqliteStore) inTx(ctx context.Context, funcName string, fn func(tx *sql.Tx) error) (err error) {
	log := logger.FromContext(ctx)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("failed to begin transaction")
		return fmt.Errorf("%w: %v", ErrBeginningTransaction, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Err(rbErr).Str("func", funcName).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", funcName).Msg("failed to commit transaction")
		return fmt.Errorf("%w: %v", ErrCommitingTransaction, err)
	}
	return nil
}
