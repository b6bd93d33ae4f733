// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// SyncMetadata is the version record kept both in the local store (under the
// syncMetadata key) and in metadata.json of the sync folder.
//
// Version only ever grows on a given device: TrackChange bumps it by one, a
// pull raises it to the remote version, a push raises it to the version
// written. Timestamps are epoch milliseconds and purely informational.
type SyncMetadata struct {
	Version       int64 `json:"version"`
	LastModified  int64 `json:"lastModified,omitempty"`
	LastSynced    int64 `json:"lastSynced,omitempty"`
	LastPush      int64 `json:"lastPush,omitempty"`
	LastPull      int64 `json:"lastPull,omitempty"`
	IsInitialized bool  `json:"isInitialized"`
}

// PendingChange is one local mutation recorded by the change tracker. Pending
// changes only count how dirty the local state is; merges always work on
// whole collections.
type PendingChange struct {
	ID        string `json:"id"`
	Key       string `json:"key"`
	Data      []byte `json:"data,omitempty"` // nil means deletion
	Version   int64  `json:"version"`
	Timestamp int64  `json:"timestamp"`

	// Seq orders changes inside one process so a sync round can clear
	// exactly the changes it has folded in.
	Seq uint64 `json:"-"`
}

// IsDeletion reports whether the change removed the value under Key.
func (c PendingChange) IsDeletion() bool {
	return c.Data == nil
}
