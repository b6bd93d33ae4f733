package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/notesync/internal/clock"
	"github.com/MKhiriev/notesync/internal/remote"
	"github.com/MKhiriev/notesync/models"
)

// readRemoteMetadata returns the remote metadata record. A folder without
// metadata.json reports exists=false and a zero record.
func (e *syncEngine) readRemoteMetadata(ctx context.Context, folder remote.Folder) (models.SyncMetadata, bool, error) {
	raw, err := e.readRemoteFile(ctx, folder, remote.MetadataFile)
	if errors.Is(err, remote.ErrNotExist) {
		return models.SyncMetadata{}, false, nil
	}
	if err != nil {
		return models.SyncMetadata{}, false, err
	}

	var meta models.SyncMetadata
	if err = json.Unmarshal(raw, &meta); err != nil {
		return models.SyncMetadata{}, true, fmt.Errorf("%w: %s: %v", ErrRemotePayload, remote.MetadataFile, err)
	}
	return meta, true, nil
}

func (e *syncEngine) readRemoteFile(ctx context.Context, folder remote.Folder, name string) ([]byte, error) {
	var raw []byte
	err := e.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		raw, err = folder.ReadFile(ctx, name)
		return err
	})
	if errors.Is(err, remote.ErrNotExist) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRemoteRead, name, err)
	}
	return raw, nil
}

// pull merges the remote payload into the local collections. The merged
// collections and the advanced metadata are written in one store
// transaction, so a failure leaves the local store untouched.
func (e *syncEngine) pull(ctx context.Context, folder remote.Folder, remoteMeta models.SyncMetadata) error {
	log := e.logger.With().Int64("remote_version", remoteMeta.Version).Logger()

	raw, err := e.readRemoteFile(ctx, folder, remote.DataFile)
	if errors.Is(err, remote.ErrNotExist) {
		log.Warn().Msg("remote metadata without data file, merging an empty payload")
		raw = []byte(`{"data":{}}`)
	} else if err != nil {
		return err
	}

	incoming, encrypted, err := e.decodeDataFile(ctx, raw)
	if err != nil {
		return err
	}

	names := e.resolver.Registry().Names()
	keys := append(append([]string{}, names...), models.KeySyncMetadata)
	now := clock.UnixMilli(e.clock)

	var applied models.SyncMetadata
	err = e.store.UpdateMany(ctx, keys, func(cur map[string][]byte) (map[string][]byte, error) {
		current := make(models.Payload, len(names))
		for _, name := range names {
			if doc, ok := cur[name]; ok {
				current[name] = doc
			}
		}

		merged, err := e.resolver.Merge(current, incoming)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRemotePayload, err)
		}

		var meta models.SyncMetadata
		if doc, ok := cur[models.KeySyncMetadata]; ok {
			if err = json.Unmarshal(doc, &meta); err != nil {
				return nil, fmt.Errorf("decode local metadata: %w", err)
			}
		}
		meta.Version = max(meta.Version, remoteMeta.Version)
		meta.LastPull = now
		meta.IsInitialized = true

		metaDoc, err := json.Marshal(meta)
		if err != nil {
			return nil, err
		}

		out := make(map[string][]byte, len(merged)+1)
		for name, doc := range merged {
			out[name] = doc
		}
		out[models.KeySyncMetadata] = metaDoc
		applied = meta
		return out, nil
	})
	if err != nil {
		return fmt.Errorf("apply pulled payload: %w", err)
	}

	e.mu.Lock()
	e.remoteEncrypted = encrypted
	e.knownRemote = max(e.knownRemote, remoteMeta.Version)
	e.status.LocalVersion = applied.Version
	e.status.RemoteVersion = remoteMeta.Version
	e.mu.Unlock()

	log.Debug().Int64("version", applied.Version).Bool("encrypted", encrypted).Msg("pulled remote payload")
	return nil
}
