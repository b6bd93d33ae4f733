package remote

import (
	"context"

	"github.com/MKhiriev/notesync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_mock.go -package=mock

// Folder is the scoped storage capability of one sync folder. Paths are
// slash-separated and relative to the folder root; "" or "." is the root.
type Folder interface {
	// Ref returns the reference the folder was opened from.
	Ref() Ref

	// MkdirAll creates path and any missing parents. Existing directories
	// are not an error.
	MkdirAll(ctx context.Context, path string) error

	// Stat describes path or returns ErrNotExist.
	Stat(ctx context.Context, path string) (models.FileEntry, error)

	// ReadFile returns the contents of path or ErrNotExist.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile replaces the contents of path. Readers never observe a
	// partially written file.
	WriteFile(ctx context.Context, path string, data []byte) error

	// ReadDir lists path.
	ReadDir(ctx context.Context, path string) ([]models.FileEntry, error)
}
