package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/MKhiriev/notesync/internal/clock"
	"github.com/MKhiriev/notesync/internal/logger"
	"github.com/MKhiriev/notesync/internal/merge"
	"github.com/MKhiriev/notesync/internal/store"
	"github.com/MKhiriev/notesync/models"
)

// noteService edits the synced collections the way the notes UI does. Every
// edit is one store transaction followed by TrackChange. Entities are kept
// as raw JSON objects so fields written by other clients survive.
type noteService struct {
	store   store.KVStore
	tracker ChangeTracker
	clock   clock.Clock
	ids     IDGenerator
	logger  *logger.Logger

	mu      sync.RWMutex
	loaded  bool
	notes   map[string]models.Note
	folders map[string]models.Folder
	labels  []string
}

func NewNoteService(kv store.KVStore, tracker ChangeTracker, clk clock.Clock, ids IDGenerator, log *logger.Logger) NoteService {
	return &noteService{
		store:   kv,
		tracker: tracker,
		clock:   clk,
		ids:     ids,
		logger:  log,
	}
}

// ── notes ────────────────────────────────────────────────────────────────────

// PutNote creates or updates a note. An empty ID gets a fresh one; UpdatedAt
// is always stamped with the current time.
func (s *noteService) PutNote(ctx context.Context, note models.Note) (models.Note, error) {
	if err := s.tracker.CheckWritable(ctx); err != nil {
		return models.Note{}, err
	}
	if note.ID == "" {
		note.ID = s.ids.Generate()
	}
	now := clock.UnixMilli(s.clock)
	note.UpdatedAt = now

	keys := []string{models.KeyNotes, models.KeyFolders}
	err := s.store.UpdateMany(ctx, keys, func(cur map[string][]byte) (map[string][]byte, error) {
		if note.FolderID != nil {
			folders, err := decodeMembers(cur[models.KeyFolders])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", models.KeyFolders, err)
			}
			if _, ok := folders[*note.FolderID]; !ok {
				return nil, fmt.Errorf("%w: folder %q", ErrEntityNotFound, *note.FolderID)
			}
		}

		notes, err := decodeMembers(cur[models.KeyNotes])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", models.KeyNotes, err)
		}

		if note.CreatedAt == 0 {
			note.CreatedAt = createdAtOf(notes[note.ID], now)
		}
		if notes[note.ID], err = overlay(notes[note.ID], note); err != nil {
			return nil, err
		}

		doc, err := json.Marshal(notes)
		if err != nil {
			return nil, err
		}
		return map[string][]byte{models.KeyNotes: doc}, nil
	})
	if err != nil {
		return models.Note{}, fmt.Errorf("put note %q: %w", note.ID, err)
	}

	s.mu.Lock()
	if s.notes != nil {
		s.notes[note.ID] = note
	}
	s.mu.Unlock()

	if _, err = s.tracker.TrackChange(ctx, models.ChangeKey(models.KeyNotes, note.ID), note); err != nil {
		return note, err
	}
	return note, nil
}

// DeleteNote removes a note, records its tombstone and drops its lock flag.
func (s *noteService) DeleteNote(ctx context.Context, id string) error {
	if err := s.tracker.CheckWritable(ctx); err != nil {
		return err
	}
	now := clock.UnixMilli(s.clock)

	keys := []string{models.KeyNotes, models.KeyDeletedIDs, models.KeyLockStatus}
	err := s.store.UpdateMany(ctx, keys, func(cur map[string][]byte) (map[string][]byte, error) {
		notes, err := decodeMembers(cur[models.KeyNotes])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", models.KeyNotes, err)
		}
		if _, ok := notes[id]; !ok {
			return nil, fmt.Errorf("%w: note %q", ErrEntityNotFound, id)
		}
		delete(notes, id)

		out, err := s.tombstone(cur, models.KeyDeletedIDs, id, now)
		if err != nil {
			return nil, err
		}
		if out[models.KeyNotes], err = json.Marshal(notes); err != nil {
			return nil, err
		}

		if raw, ok := cur[models.KeyLockStatus]; ok {
			locks, err := decodeMembers(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", models.KeyLockStatus, err)
			}
			delete(locks, id)
			if out[models.KeyLockStatus], err = json.Marshal(locks); err != nil {
				return nil, err
			}
		}
		return out, nil
	})
	if err != nil {
		return fmt.Errorf("delete note %q: %w", id, err)
	}

	s.mu.Lock()
	delete(s.notes, id)
	s.mu.Unlock()

	_, err = s.tracker.TrackChange(ctx, models.ChangeKey(models.KeyNotes, id), nil)
	return err
}

// ListNotes returns the cached notes, most recently updated first.
func (s *noteService) ListNotes(ctx context.Context) ([]models.Note, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]models.Note, 0, len(s.notes))
	for _, n := range s.notes {
		out = append(out, n)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt != out[j].UpdatedAt {
			return out[i].UpdatedAt > out[j].UpdatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ── folders ──────────────────────────────────────────────────────────────────

func (s *noteService) PutFolder(ctx context.Context, folder models.Folder) (models.Folder, error) {
	if err := s.tracker.CheckWritable(ctx); err != nil {
		return models.Folder{}, err
	}
	if folder.ID == "" {
		folder.ID = s.ids.Generate()
	}
	if folder.ParentID != nil && *folder.ParentID == folder.ID {
		return models.Folder{}, fmt.Errorf("%w: folder cannot be its own parent", ErrInvalidDataProvided)
	}
	now := clock.UnixMilli(s.clock)
	folder.UpdatedAt = now

	err := s.store.Update(ctx, models.KeyFolders, func(old []byte) ([]byte, error) {
		folders, err := decodeMembers(old)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", models.KeyFolders, err)
		}
		if folder.ParentID != nil {
			if _, ok := folders[*folder.ParentID]; !ok {
				return nil, fmt.Errorf("%w: parent folder %q", ErrEntityNotFound, *folder.ParentID)
			}
		}

		if folder.CreatedAt == 0 {
			folder.CreatedAt = createdAtOf(folders[folder.ID], now)
		}
		if folders[folder.ID], err = overlay(folders[folder.ID], folder); err != nil {
			return nil, err
		}
		return json.Marshal(folders)
	})
	if err != nil {
		return models.Folder{}, fmt.Errorf("put folder %q: %w", folder.ID, err)
	}

	s.mu.Lock()
	if s.folders != nil {
		s.folders[folder.ID] = folder
	}
	s.mu.Unlock()

	if _, err = s.tracker.TrackChange(ctx, models.ChangeKey(models.KeyFolders, folder.ID), folder); err != nil {
		return folder, err
	}
	return folder, nil
}

// DeleteFolder removes a folder and records its tombstone. Notes and
// subfolders that pointed at it lose the reference, the same outcome the
// merge cascade produces on other devices.
func (s *noteService) DeleteFolder(ctx context.Context, id string) error {
	if err := s.tracker.CheckWritable(ctx); err != nil {
		return err
	}
	now := clock.UnixMilli(s.clock)

	keys := []string{models.KeyFolders, models.KeyDeletedFolderIDs, models.KeyNotes}
	err := s.store.UpdateMany(ctx, keys, func(cur map[string][]byte) (map[string][]byte, error) {
		folders, err := decodeMembers(cur[models.KeyFolders])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", models.KeyFolders, err)
		}
		if _, ok := folders[id]; !ok {
			return nil, fmt.Errorf("%w: folder %q", ErrEntityNotFound, id)
		}
		delete(folders, id)
		if err = orphan(folders, "parentId", id); err != nil {
			return nil, err
		}

		notes, err := decodeMembers(cur[models.KeyNotes])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", models.KeyNotes, err)
		}
		if err = orphan(notes, "folderId", id); err != nil {
			return nil, err
		}

		out, err := s.tombstone(cur, models.KeyDeletedFolderIDs, id, now)
		if err != nil {
			return nil, err
		}
		if out[models.KeyFolders], err = json.Marshal(folders); err != nil {
			return nil, err
		}
		if len(notes) > 0 {
			if out[models.KeyNotes], err = json.Marshal(notes); err != nil {
				return nil, err
			}
		}
		return out, nil
	})
	if err != nil {
		return fmt.Errorf("delete folder %q: %w", id, err)
	}

	// the cache now disagrees with the store on orphaned references
	if err = s.Reload(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("reload after folder delete failed")
	}

	_, err = s.tracker.TrackChange(ctx, models.ChangeKey(models.KeyFolders, id), nil)
	return err
}

// ListFolders returns the cached folders ordered by name.
func (s *noteService) ListFolders(ctx context.Context) ([]models.Folder, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]models.Folder, 0, len(s.folders))
	for _, f := range s.folders {
		out = append(out, f)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ── labels, locks, settings ──────────────────────────────────────────────────

// AddLabel appends label to the label set unless it is already there.
func (s *noteService) AddLabel(ctx context.Context, label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return ErrInvalidDataProvided
	}
	if err := s.tracker.CheckWritable(ctx); err != nil {
		return err
	}

	added := false
	err := s.store.Update(ctx, models.KeyLabels, func(old []byte) ([]byte, error) {
		var members []json.RawMessage
		if len(old) > 0 {
			if err := json.Unmarshal(old, &members); err != nil {
				return nil, fmt.Errorf("%s: %w", models.KeyLabels, err)
			}
		}
		for _, m := range members {
			var l string
			if json.Unmarshal(m, &l) == nil && l == label {
				return old, nil
			}
		}

		quoted, err := json.Marshal(label)
		if err != nil {
			return nil, err
		}
		added = true
		return json.Marshal(append(members, quoted))
	})
	if err != nil {
		return fmt.Errorf("add label %q: %w", label, err)
	}
	if !added {
		return nil
	}

	s.mu.Lock()
	if s.loaded {
		s.labels = append(s.labels, label)
	}
	s.mu.Unlock()

	_, err = s.tracker.TrackChange(ctx, models.ChangeKey(models.KeyLabels, label), label)
	return err
}

func (s *noteService) Labels(ctx context.Context) ([]string, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.labels...), nil
}

func (s *noteService) SetNoteLocked(ctx context.Context, id string, locked bool) error {
	if id == "" {
		return ErrInvalidDataProvided
	}
	return s.setKeyed(ctx, models.KeyLockStatus, id, locked)
}

func (s *noteService) SetSetting(ctx context.Context, key string, value any) error {
	if key == "" {
		return ErrInvalidDataProvided
	}
	return s.setKeyed(ctx, models.KeySettings, key, value)
}

func (s *noteService) setKeyed(ctx context.Context, collection, key string, value any) error {
	if err := s.tracker.CheckWritable(ctx); err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s.%s: %w", collection, key, err)
	}

	err = s.store.Update(ctx, collection, func(old []byte) ([]byte, error) {
		members, err := decodeMembers(old)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", collection, err)
		}
		members[key] = raw
		return json.Marshal(members)
	})
	if err != nil {
		return fmt.Errorf("set %s.%s: %w", collection, key, err)
	}

	_, err = s.tracker.TrackChange(ctx, models.ChangeKey(collection, key), raw)
	return err
}

// ── cache ────────────────────────────────────────────────────────────────────

// Reload implements NoteService. Entities that cannot be decoded are skipped
// and logged; they stay in the store untouched.
func (s *noteService) Reload(ctx context.Context) error {
	docs, err := s.store.GetMany(ctx, []string{models.KeyNotes, models.KeyFolders, models.KeyLabels})
	if err != nil {
		return fmt.Errorf("load collections: %w", err)
	}

	notes := make(map[string]models.Note)
	if err = decodeInto(docs[models.KeyNotes], notes, s.logger); err != nil {
		return fmt.Errorf("%s: %w", models.KeyNotes, err)
	}
	folders := make(map[string]models.Folder)
	if err = decodeInto(docs[models.KeyFolders], folders, s.logger); err != nil {
		return fmt.Errorf("%s: %w", models.KeyFolders, err)
	}
	labels, err := decodeLabels(docs[models.KeyLabels])
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.notes, s.folders, s.labels = notes, folders, labels
	s.loaded = true
	s.mu.Unlock()

	s.logger.Debug().Int("notes", len(notes)).Int("folders", len(folders)).Msg("note cache reloaded")
	return nil
}

func (s *noteService) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.Reload(ctx)
}

// tombstone returns a write set holding collection with id marked deleted at
// now. An older tombstone is moved forward, a newer one is kept.
func (s *noteService) tombstone(cur map[string][]byte, collection, id string, now int64) (map[string][]byte, error) {
	deleted, err := merge.DecodeTombstones(cur[collection])
	if err != nil {
		return nil, err
	}
	deleted[id] = max(deleted[id], now)

	doc, err := json.Marshal(deleted)
	if err != nil {
		return nil, err
	}
	return map[string][]byte{collection: doc}, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

// decodeMembers reads an id-keyed collection. A missing document is an
// empty collection; an array is indexed by its "id" fields.
func decodeMembers(raw []byte) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage)
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return out, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var members []json.RawMessage
		if err := json.Unmarshal(raw, &members); err != nil {
			return nil, err
		}
		for _, m := range members {
			var head struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(m, &head); err != nil || head.ID == "" {
				return nil, errors.New("array member without id")
			}
			out[head.ID] = m
		}
		return out, nil
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// overlay writes the fields of v over the existing JSON object, keeping
// fields v does not know about.
func overlay(existing json.RawMessage, v any) (json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &fields); err != nil {
			return nil, fmt.Errorf("existing entity is not an object: %w", err)
		}
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var next map[string]json.RawMessage
	if err = json.Unmarshal(raw, &next); err != nil {
		return nil, err
	}
	for k, val := range next {
		fields[k] = val
	}
	return json.Marshal(fields)
}

// orphan clears field on every member that references id.
func orphan(members map[string]json.RawMessage, field, id string) error {
	for key, raw := range members {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return err
		}
		var ref string
		if err := json.Unmarshal(fields[field], &ref); err != nil || ref != id {
			continue
		}
		fields[field] = json.RawMessage("null")

		updated, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		members[key] = updated
	}
	return nil
}

func createdAtOf(existing json.RawMessage, def int64) int64 {
	if len(existing) == 0 {
		return def
	}
	var head struct {
		CreatedAt json.RawMessage `json:"createdAt"`
	}
	if err := json.Unmarshal(existing, &head); err != nil {
		return def
	}
	if at, err := merge.ParseTime(head.CreatedAt); err == nil && at > 0 {
		return at
	}
	return def
}

// decodeInto fills dst from an entity collection, normalizing createdAt and
// updatedAt to epoch ms first.
func decodeInto[T any](raw []byte, dst map[string]T, log *logger.Logger) error {
	members, err := decodeMembers(raw)
	if err != nil {
		return err
	}

	for id, member := range members {
		normalized, err := normalizeTimes(member)
		if err != nil {
			log.Warn().Err(err).Str("id", id).Msg("skipping undecodable entity")
			continue
		}
		var v T
		if err = json.Unmarshal(normalized, &v); err != nil {
			log.Warn().Err(err).Str("id", id).Msg("skipping undecodable entity")
			continue
		}
		dst[id] = v
	}
	return nil
}

func normalizeTimes(raw json.RawMessage) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for _, name := range []string{"createdAt", "updatedAt"} {
		at, err := merge.ParseTime(fields[name])
		if err != nil {
			return nil, err
		}
		fields[name] = json.RawMessage(fmt.Sprint(at))
	}
	return json.Marshal(fields)
}

// decodeLabels returns the string members of the label set.
func decodeLabels(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}

	var members []json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, fmt.Errorf("%s: %w", models.KeyLabels, err)
	}

	out := make([]string, 0, len(members))
	for _, m := range members {
		var l string
		if json.Unmarshal(m, &l) == nil {
			out = append(out, l)
		}
	}
	return out, nil
}
