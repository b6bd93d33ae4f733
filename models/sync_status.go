package models

// SyncState is the coarse state shown by status indicators.
type SyncState string

const (
	SyncStateIdle    SyncState = "idle"
	SyncStateSyncing SyncState = "syncing"
	SyncStateSuccess SyncState = "success"
	SyncStateError   SyncState = "error"
)

// SyncStatus is a snapshot of the engine's observable state.
type SyncStatus struct {
	State          SyncState `json:"state"`
	Message        string    `json:"message,omitempty"`
	LastSynced     int64     `json:"lastSynced,omitempty"`
	LocalVersion   int64     `json:"localVersion"`
	RemoteVersion  int64     `json:"remoteVersion"`
	PendingChanges int       `json:"pendingChanges"`
	Folder         string    `json:"folder,omitempty"`
	Encrypted      bool      `json:"encrypted"`
}
