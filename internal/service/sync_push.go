package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/notesync/internal/clock"
	"github.com/MKhiriev/notesync/internal/remote"
	"github.com/MKhiriev/notesync/internal/store"
	"github.com/MKhiriev/notesync/models"
)

// push uploads the current value of every synced collection under a version
// above both the local and the remote one. data.json is written before
// metadata.json; local metadata and the pending set move only after both
// writes succeeded.
func (e *syncEngine) push(ctx context.Context, folder remote.Folder, remoteVersion int64) error {
	seq := e.currentSeq()

	names := e.resolver.Registry().Names()
	keys := append(append([]string{}, names...), models.KeySyncMetadata)
	docs, err := e.store.GetMany(ctx, keys)
	if err != nil {
		return fmt.Errorf("read local collections: %w", err)
	}

	var local models.SyncMetadata
	if doc, ok := docs[models.KeySyncMetadata]; ok {
		if err = json.Unmarshal(doc, &local); err != nil {
			return fmt.Errorf("decode local metadata: %w", err)
		}
	}

	payload := make(models.Payload, len(names))
	for _, name := range names {
		if doc, ok := docs[name]; ok {
			payload[name] = doc
		}
	}

	dataFile, encrypted, err := e.encodeDataFile(ctx, payload)
	if err != nil {
		return err
	}

	now := clock.UnixMilli(e.clock)
	newVersion := max(local.Version, remoteVersion) + 1
	remoteMeta := models.SyncMetadata{
		Version:       newVersion,
		LastModified:  local.LastModified,
		LastSynced:    now,
		LastPush:      now,
		IsInitialized: true,
	}
	metaFile, err := json.Marshal(remoteMeta)
	if err != nil {
		return fmt.Errorf("encode remote metadata: %w", err)
	}

	if err = e.writeRemoteFile(ctx, folder, remote.DataFile, dataFile); err != nil {
		return err
	}
	if err = e.writeRemoteFile(ctx, folder, remote.MetadataFile, metaFile); err != nil {
		return err
	}

	var applied models.SyncMetadata
	err = store.UpdateJSON(ctx, e.store, models.KeySyncMetadata, func(cur models.SyncMetadata, _ bool) (models.SyncMetadata, error) {
		cur.Version = max(cur.Version, newVersion)
		cur.LastPush = now
		cur.LastSynced = now
		cur.IsInitialized = true
		applied = cur
		return cur, nil
	})
	if err != nil {
		// the folder already holds newVersion; the next round pulls it back
		return fmt.Errorf("advance local metadata: %w", err)
	}

	e.clearPending(seq)

	e.mu.Lock()
	e.remoteEncrypted = encrypted
	e.knownRemote = max(e.knownRemote, newVersion)
	e.status.LocalVersion = applied.Version
	e.status.RemoteVersion = newVersion
	e.mu.Unlock()

	e.logger.Debug().
		Int64("version", newVersion).
		Bool("encrypted", encrypted).
		Int("collections", len(payload)).
		Msg("pushed local payload")
	return nil
}

func (e *syncEngine) writeRemoteFile(ctx context.Context, folder remote.Folder, name string, data []byte) error {
	err := e.withTimeout(ctx, func(ctx context.Context) error {
		return folder.WriteFile(ctx, name, data)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRemoteWrite, name, err)
	}
	return nil
}
