package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/notesync/internal/clock"
	"github.com/MKhiriev/notesync/internal/logger"
)

const (
	selectCollectionsSQL = `SELECT collection, document FROM collections WHERE collection`
	upsertCollectionsSQL = `INSERT INTO collections`
	deleteCollectionsSQL = `DELETE FROM collections`
)

var collectionColumns = []string{"collection", "document"}

func newMockSQLiteStore(t *testing.T) (*sqliteStore, sqlmock.Sqlmock, *clock.Mock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clk := clock.NewMock()
	return &sqliteStore{
		DB:     &DB{DB: db, logger: logger.Nop()},
		clock:  clk,
		logger: logger.Nop(),
	}, mock, clk
}

func TestSQLiteStore_Get(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		want    []byte
		wantErr error
	}{
		{
			name: "found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectCollectionsSQL).
					WithArgs("notes").
					WillReturnRows(sqlmock.NewRows(collectionColumns).AddRow("notes", []byte(`{}`)))
			},
			want: []byte(`{}`),
		},
		{
			name: "not found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectCollectionsSQL).
					WithArgs("notes").
					WillReturnRows(sqlmock.NewRows(collectionColumns))
			},
			wantErr: ErrKeyNotFound,
		},
		{
			name: "query error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectCollectionsSQL).
					WithArgs("notes").
					WillReturnError(errors.New("disk I/O error"))
			},
			wantErr: ErrExecutingQuery,
		},
		{
			name: "row error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectCollectionsSQL).
					WithArgs("notes").
					WillReturnRows(sqlmock.NewRows(collectionColumns).
						AddRow("notes", []byte(`{}`)).
						RowError(0, errors.New("corrupt page")))
			},
			wantErr: ErrScanningRows,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock, _ := newMockSQLiteStore(t)
			tt.setup(mock)

			got, err := s.Get(context.Background(), "notes")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLiteStore_SetStampsUpdatedAt(t *testing.T) {
	s, mock, clk := newMockSQLiteStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(upsertCollectionsSQL).
		WithArgs("labels", []byte(`["a"]`), clk.Now().UnixMilli()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Set(context.Background(), "labels", []byte(`["a"]`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_Delete(t *testing.T) {
	s, mock, _ := newMockSQLiteStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(deleteCollectionsSQL).
		WithArgs("labels").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Delete(context.Background(), "labels"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_UpdateMany(t *testing.T) {
	keys := []string{"notes", "sync_metadata"}

	t.Run("reads, writes and commits in one transaction", func(t *testing.T) {
		s, mock, _ := newMockSQLiteStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(selectCollectionsSQL).
			WithArgs("notes", "sync_metadata").
			WillReturnRows(sqlmock.NewRows(collectionColumns).AddRow("notes", []byte(`{}`)))
		mock.ExpectExec(upsertCollectionsSQL).
			WithArgs("notes", []byte(`{"n1":{}}`), sqlmock.AnyArg(), "sync_metadata", []byte(`{"version":2}`), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		err := s.UpdateMany(context.Background(), keys, func(cur map[string][]byte) (map[string][]byte, error) {
			assert.Equal(t, map[string][]byte{"notes": []byte(`{}`)}, cur)
			return map[string][]byte{
				"notes":         []byte(`{"n1":{}}`),
				"sync_metadata": []byte(`{"version":2}`),
			}, nil
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("callback error rolls back", func(t *testing.T) {
		s, mock, _ := newMockSQLiteStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(selectCollectionsSQL).
			WillReturnRows(sqlmock.NewRows(collectionColumns))
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := s.UpdateMany(context.Background(), keys, func(map[string][]byte) (map[string][]byte, error) {
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec error rolls back", func(t *testing.T) {
		s, mock, _ := newMockSQLiteStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(selectCollectionsSQL).
			WillReturnRows(sqlmock.NewRows(collectionColumns))
		mock.ExpectExec(upsertCollectionsSQL).
			WillReturnError(errors.New("database is locked"))
		mock.ExpectRollback()

		err := s.UpdateMany(context.Background(), keys, func(map[string][]byte) (map[string][]byte, error) {
			return map[string][]byte{"notes": []byte(`{}`)}, nil
		})
		assert.ErrorIs(t, err, ErrExecutingStatement)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin error", func(t *testing.T) {
		s, mock, _ := newMockSQLiteStore(t)
		mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

		err := s.UpdateMany(context.Background(), keys, func(map[string][]byte) (map[string][]byte, error) {
			t.Fatal("callback must not run")
			return nil, nil
		})
		assert.ErrorIs(t, err, ErrBeginningTransaction)
	})

	t.Run("commit error", func(t *testing.T) {
		s, mock, _ := newMockSQLiteStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(selectCollectionsSQL).
			WillReturnRows(sqlmock.NewRows(collectionColumns))
		mock.ExpectExec(deleteCollectionsSQL).
			WithArgs("notes").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit().WillReturnError(errors.New("disk full"))

		err := s.UpdateMany(context.Background(), keys, func(map[string][]byte) (map[string][]byte, error) {
			return map[string][]byte{"notes": nil}, nil
		})
		assert.ErrorIs(t, err, ErrCommitingTransaction)
	})
}
