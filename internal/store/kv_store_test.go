package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/notesync/internal/config"
	"github.com/MKhiriev/notesync/internal/logger"
)

// ── helpers ───────────────────────────────────────────────────────────────────

type backendFactory func(t *testing.T) KVStore

func backends() map[string]backendFactory {
	return map[string]backendFactory{
		"bolt": func(t *testing.T) KVStore {
			t.Helper()
			s, err := NewKVStore(context.Background(),
				config.ClientStorage{DSN: "bolt://" + filepath.Join(t.TempDir(), "notes.db")}, logger.Nop())
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
		"sqlite": func(t *testing.T) KVStore {
			t.Helper()
			s, err := NewKVStore(context.Background(),
				config.ClientStorage{DSN: filepath.Join(t.TempDir(), "notes.sqlite")}, logger.Nop())
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func forEachBackend(t *testing.T, test func(t *testing.T, s KVStore)) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			test(t, factory(t))
		})
	}
}

// ── Get / Set / Delete ────────────────────────────────────────────────────────

func TestKVStore_GetMissingKey(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s KVStore) {
		_, err := s.Get(context.Background(), "notes")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})
}

func TestKVStore_SetGetDelete(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s KVStore) {
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "notes", []byte(`{"n1":{"id":"n1"}}`)))
		got, err := s.Get(ctx, "notes")
		require.NoError(t, err)
		assert.JSONEq(t, `{"n1":{"id":"n1"}}`, string(got))

		// overwrite
		require.NoError(t, s.Set(ctx, "notes", []byte(`{}`)))
		got, err = s.Get(ctx, "notes")
		require.NoError(t, err)
		assert.Equal(t, `{}`, string(got))

		require.NoError(t, s.Delete(ctx, "notes"))
		_, err = s.Get(ctx, "notes")
		assert.ErrorIs(t, err, ErrKeyNotFound)

		// deleting twice is fine
		assert.NoError(t, s.Delete(ctx, "notes"))
	})
}

func TestKVStore_SetManyGetMany(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s KVStore) {
		ctx := context.Background()

		require.NoError(t, s.SetMany(ctx, map[string][]byte{
			"notes":   []byte(`{}`),
			"folders": []byte(`{"f1":{}}`),
			"labels":  []byte(`["work"]`),
		}))

		docs, err := s.GetMany(ctx, []string{"notes", "labels", "missing"})
		require.NoError(t, err)
		assert.Len(t, docs, 2)
		assert.Equal(t, `["work"]`, string(docs["labels"]))
		assert.NotContains(t, docs, "missing")

		empty, err := s.GetMany(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

// ── Update / UpdateMany ───────────────────────────────────────────────────────

func TestKVStore_UpdateSeesOldValue(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s KVStore) {
		ctx := context.Background()

		err := s.Update(ctx, "counter", func(old []byte) ([]byte, error) {
			assert.Nil(t, old)
			return []byte("1"), nil
		})
		require.NoError(t, err)

		err = s.Update(ctx, "counter", func(old []byte) ([]byte, error) {
			assert.Equal(t, "1", string(old))
			return nil, nil // delete
		})
		require.NoError(t, err)

		_, err = s.Get(ctx, "counter")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})
}

func TestKVStore_UpdateManyIsAllOrNothing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s KVStore) {
		ctx := context.Background()
		require.NoError(t, s.SetMany(ctx, map[string][]byte{
			"notes":         []byte(`{"old":true}`),
			"sync_metadata": []byte(`{"version":1}`),
		}))

		boom := errors.New("merge failed")
		err := s.UpdateMany(ctx, []string{"notes", "sync_metadata"}, func(cur map[string][]byte) (map[string][]byte, error) {
			assert.Len(t, cur, 2)
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)

		docs, err := s.GetMany(ctx, []string{"notes", "sync_metadata"})
		require.NoError(t, err)
		assert.Equal(t, `{"old":true}`, string(docs["notes"]))
		assert.Equal(t, `{"version":1}`, string(docs["sync_metadata"]))

		// successful run writes returned keys only and may delete
		err = s.UpdateMany(ctx, []string{"notes", "sync_metadata"}, func(cur map[string][]byte) (map[string][]byte, error) {
			return map[string][]byte{
				"notes":   nil,
				"folders": []byte(`{}`),
			}, nil
		})
		require.NoError(t, err)

		docs, err = s.GetMany(ctx, []string{"notes", "folders", "sync_metadata"})
		require.NoError(t, err)
		assert.NotContains(t, docs, "notes")
		assert.Equal(t, `{}`, string(docs["folders"]))
		assert.Equal(t, `{"version":1}`, string(docs["sync_metadata"]))
	})
}

// TestKVStore_ConcurrentUpdates checks that read-modify-write does not lose
// increments under contention.
func TestKVStore_ConcurrentUpdates(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s KVStore) {
		ctx := context.Background()
		const workers, perWorker = 8, 10

		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range perWorker {
					err := UpdateJSON(ctx, s, "counter", func(cur int, _ bool) (int, error) {
						return cur + 1, nil
					})
					assert.NoError(t, err)
				}
			}()
		}
		wg.Wait()

		var got int
		found, err := GetJSON(ctx, s, "counter", &got)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, workers*perWorker, got)
	})
}

func TestKVStore_CanceledContext(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s KVStore) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.Error(t, s.Set(ctx, "notes", []byte(`{}`)))
	})
}

func TestKVStore_ReopenKeepsData(t *testing.T) {
	for _, dsn := range []string{"bolt://notes.db", "sqlite://notes.sqlite"} {
		t.Run(dsn, func(t *testing.T) {
			backend, name, err := parseDSN(dsn)
			require.NoError(t, err)
			cfg := config.ClientStorage{DSN: backend + "://" + filepath.Join(t.TempDir(), name)}

			s, err := NewKVStore(context.Background(), cfg, logger.Nop())
			require.NoError(t, err)
			require.NoError(t, s.Set(context.Background(), "labels", []byte(`["a"]`)))
			require.NoError(t, s.Close())

			s, err = NewKVStore(context.Background(), cfg, logger.Nop())
			require.NoError(t, err)
			defer s.Close()

			got, err := s.Get(context.Background(), "labels")
			require.NoError(t, err)
			assert.Equal(t, `["a"]`, string(got))
		})
	}
}
