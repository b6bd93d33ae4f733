// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "encoding/json"

// Local store keys of the synchronized collections.
const (
	KeyNotes            = "notes"
	KeyFolders          = "folders"
	KeyLabels           = "labels"
	KeyLockStatus       = "lockStatus"
	KeyIsLocked         = "isLocked"
	KeySettings         = "settings"
	KeyDeletedIDs       = "deletedIds"
	KeyDeletedFolderIDs = "deletedFolderIds"
	KeySyncMetadata     = "syncMetadata"
)

// Preference keys. Values are JSON strings.
const (
	PrefAutoSync         = "autoSync"
	PrefSyncFolder       = "syncFolder"
	PrefSyncWithPassword = "syncWithPassword"
)

// ChangeKey is the path a pending change is recorded under: the collection
// followed by the id (or setting key) of the member, as in "notes.<id>".
func ChangeKey(collection, member string) string {
	return collection + "." + member
}

// SyncedKeys lists the collections that travel in data.json, in the order
// they are gathered for a push.
var SyncedKeys = []string{
	KeyNotes,
	KeyFolders,
	KeyLabels,
	KeyLockStatus,
	KeyIsLocked,
	KeySettings,
	KeyDeletedIDs,
	KeyDeletedFolderIDs,
}

// Payload maps a collection name to its raw JSON document. It is the unit
// read from and written to data.json.
type Payload map[string]json.RawMessage

// Clone returns a shallow copy of p; the raw documents are shared.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Tombstones maps an entity id to its deletion time in epoch milliseconds.
type Tombstones map[string]int64

// DataFile is the document stored in data.json. Data holds either a JSON
// object (plain payload) or a JSON string (encrypted payload).
type DataFile struct {
	Data json.RawMessage `json:"data"`
}
