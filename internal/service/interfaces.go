package service

import (
	"context"

	"github.com/MKhiriev/notesync/models"
)

// SyncEngine reconciles the local store with the configured sync folder.
type SyncEngine interface {
	// Sync runs one round: bootstrap folder, pull+merge, push, refresh.
	Sync(ctx context.Context) error

	// TrackChange records a local edit of collection key. data == nil is a
	// deletion. Returns the change id.
	TrackChange(ctx context.Context, key string, data any) (string, error)
	// CheckWritable reports ErrFirstSyncRequired while an uninitialized
	// client faces a remote folder that already has history.
	CheckWritable(ctx context.Context) error

	ScheduleSync(immediate bool)
	ForceSyncNow()
	// RemoteChanged schedules a round when the remote version moved past
	// the last one this engine saw or wrote.
	RemoteChanged(ctx context.Context)

	SetPassword(password string)
	SetRefresher(fn Refresher)

	Status() models.SyncStatus
	PendingChanges() []models.PendingChange

	Close()
}

// ChangeTracker is the slice of SyncEngine the note service depends on.
type ChangeTracker interface {
	TrackChange(ctx context.Context, key string, data any) (string, error)
	CheckWritable(ctx context.Context) error
}

// Syncer runs a single sync round.
type Syncer interface {
	Sync(ctx context.Context) error
}

// NoteService applies UI-side edits to the local store and reports them to
// the change tracker.
type NoteService interface {
	PutNote(ctx context.Context, note models.Note) (models.Note, error)
	DeleteNote(ctx context.Context, id string) error
	ListNotes(ctx context.Context) ([]models.Note, error)

	PutFolder(ctx context.Context, folder models.Folder) (models.Folder, error)
	DeleteFolder(ctx context.Context, id string) error
	ListFolders(ctx context.Context) ([]models.Folder, error)

	AddLabel(ctx context.Context, label string) error
	Labels(ctx context.Context) ([]string, error)

	SetNoteLocked(ctx context.Context, id string, locked bool) error
	SetSetting(ctx context.Context, key string, value any) error

	// Reload refreshes the in-memory caches from the store.
	Reload(ctx context.Context) error
}

// SyncJob periodically triggers sync rounds.
type SyncJob interface {
	Start(ctx context.Context, schedule string) error
	Stop()
	// Run starts the job and blocks until ctx is done.
	Run(ctx context.Context) error
}

// PasswordProvider returns the sync password, prompting the user if needed.
// An empty string with a nil error means the user declined.
type PasswordProvider func(ctx context.Context) (string, error)

// Refresher reloads in-memory caches after a successful round.
type Refresher func(ctx context.Context) error

// FolderService serves one sync folder over the folder server.
type FolderService interface {
	Stat(ctx context.Context, path string) (models.FileEntry, error)
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Mkdir(ctx context.Context, path string) error
	List(ctx context.Context, path string) ([]models.FileEntry, error)
}

// FolderServiceWrapper defines middleware composition for FolderService.
type FolderServiceWrapper interface {
	Wrap(FolderService) FolderService
}

type AuthService interface {
	// Enabled reports whether requests must carry a bearer token.
	Enabled() bool
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
