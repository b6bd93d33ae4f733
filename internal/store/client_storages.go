package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MKhiriev/notesync/internal/config"
	"github.com/MKhiriev/notesync/internal/logger"
)

const (
	backendBolt   = "bolt"
	backendSQLite = "sqlite"
)

// NewKVStore opens the local store selected by cfg.DSN:
//   - "bolt://<path>" or a bare path opens a bbolt file;
//   - "sqlite://<path>" or a bare path ending in .sqlite, .sqlite3 or .db3
//     opens a SQLite file and runs the schema migrations.
func NewKVStore(ctx context.Context, cfg config.ClientStorage, log *logger.Logger) (KVStore, error) {
	log.Info().Msg("creating local store...")

	backend, path, err := parseDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}

	switch backend {
	case backendSQLite:
		db, err := NewConnectSQLite(ctx, path, log)
		if err != nil {
			return nil, fmt.Errorf("sqlite connection error: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		return NewSQLiteStore(db, log), nil
	default:
		return NewBoltStore(path, log)
	}
}

func parseDSN(dsn string) (backend, path string, err error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return "", "", fmt.Errorf("%w: empty DSN", ErrUnsupportedDSN)
	}

	if scheme, rest, ok := strings.Cut(dsn, "://"); ok {
		if rest == "" {
			return "", "", fmt.Errorf("%w: %q has no path", ErrUnsupportedDSN, dsn)
		}
		switch strings.ToLower(scheme) {
		case backendBolt, "bbolt":
			return backendBolt, rest, nil
		case backendSQLite, "sqlite3":
			return backendSQLite, rest, nil
		default:
			return "", "", fmt.Errorf("%w: unknown scheme %q", ErrUnsupportedDSN, scheme)
		}
	}

	switch strings.ToLower(filepath.Ext(dsn)) {
	case ".sqlite", ".sqlite3", ".db3":
		return backendSQLite, dsn, nil
	default:
		return backendBolt, dsn, nil
	}
}
