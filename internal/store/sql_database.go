package store

import (
	"database/sql"
	"sync"

	"github.com/MKhiriev/notesync/internal/logger"
	"github.com/MKhiriev/notesync/migrations"
)

// DB wraps the SQLite connection pool. writeMu serialises write
// transactions inside the process; the immediate transaction lock and the
// busy timeout of the DSN cover other processes sharing the file.
type DB struct {
	*sql.DB
	writeMu sync.Mutex
	logger  *logger.Logger
}

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}
