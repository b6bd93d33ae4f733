package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/MKhiriev/notesync/internal/clock"
	"github.com/MKhiriev/notesync/internal/store"
	"github.com/MKhiriev/notesync/models"
)

// TrackChange implements SyncEngine. The local metadata version is bumped
// atomically, the change joins the pending set and, with auto-sync on, a
// debounced round is scheduled.
func (e *syncEngine) TrackChange(ctx context.Context, key string, data any) (string, error) {
	if key == "" {
		return "", ErrInvalidDataProvided
	}

	raw, err := encodeChange(data)
	if err != nil {
		return "", fmt.Errorf("encode change of %q: %w", key, err)
	}

	if err = e.CheckWritable(ctx); err != nil {
		return "", err
	}

	now := clock.UnixMilli(e.clock)
	var version int64
	err = store.UpdateJSON(ctx, e.store, models.KeySyncMetadata, func(cur models.SyncMetadata, _ bool) (models.SyncMetadata, error) {
		cur.Version++
		cur.LastModified = now
		cur.IsInitialized = true
		version = cur.Version
		return cur, nil
	})
	if err != nil {
		return "", fmt.Errorf("bump local version: %w", err)
	}

	change := models.PendingChange{
		ID:        e.ids.Generate(),
		Key:       key,
		Data:      raw,
		Version:   version,
		Timestamp: now,
	}

	e.mu.Lock()
	e.seq++
	change.Seq = e.seq
	e.pending[change.ID] = change
	e.status.LocalVersion = max(e.status.LocalVersion, version)
	e.status.PendingChanges = len(e.pending)
	e.mu.Unlock()

	e.logger.Debug().
		Str("key", key).
		Str("change_id", change.ID).
		Int64("version", version).
		Bool("deletion", change.IsDeletion()).
		Msg("change tracked")

	if !e.running.Load() && e.prefs.AutoSync(ctx) {
		e.scheduler.Schedule(false)
	}

	return change.ID, nil
}

// CheckWritable implements SyncEngine. An uninitialized client must not
// edit while the folder has history it has never pulled; otherwise its
// first push would be built on an empty store. An unreadable remote does
// not block the edit.
func (e *syncEngine) CheckWritable(ctx context.Context) error {
	if e.firstSync.Load() {
		return nil
	}

	local, err := e.localMetadata(ctx)
	if err != nil {
		return err
	}
	if local.IsInitialized {
		return nil
	}

	folder, err := e.currentFolder(ctx)
	if err != nil {
		// no folder: nothing to protect against
		return nil
	}

	remoteMeta, _, err := e.readRemoteMetadata(ctx, folder)
	if err != nil {
		e.logger.Warn().Err(err).Msg("first-sync check could not read remote metadata")
		return nil
	}
	if remoteMeta.Version > 0 {
		return ErrFirstSyncRequired
	}
	return nil
}

// PendingChanges returns the tracked changes in tracking order.
func (e *syncEngine) PendingChanges() []models.PendingChange {
	e.mu.RLock()
	out := make([]models.PendingChange, 0, len(e.pending))
	for _, c := range e.pending {
		out = append(out, c)
	}
	e.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func (e *syncEngine) currentSeq() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.seq
}

// clearPending drops the changes tracked up to seq. Changes tracked while
// the round was running stay pending.
func (e *syncEngine) clearPending(seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, c := range e.pending {
		if c.Seq <= seq {
			delete(e.pending, id)
		}
	}
	e.status.PendingChanges = len(e.pending)
}

func encodeChange(data any) ([]byte, error) {
	switch v := data.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return append([]byte(nil), v...), nil
	case []byte:
		return append([]byte(nil), v...), nil
	default:
		return json.Marshal(v)
	}
}
