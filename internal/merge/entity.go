package merge

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/notesync/models"
)

var jsonNull = json.RawMessage("null")

// entity is one decoded member of an entity map. raw is kept verbatim unless
// a field had to be rewritten.
type entity struct {
	raw       json.RawMessage
	fields    map[string]json.RawMessage
	updatedAt int64
	dirty     bool
}

func (e *entity) encode() (json.RawMessage, error) {
	if !e.dirty {
		return e.raw, nil
	}
	return json.Marshal(e.fields)
}

// clearParent nulls the folder reference when that folder was deleted after
// the entity was last updated. It reports whether the reference was cleared.
func (e *entity) clearParent(field string, folders models.Tombstones) bool {
	ref, ok := e.fields[field]
	if !ok || isNull(ref) {
		return false
	}

	var folderID string
	if err := json.Unmarshal(ref, &folderID); err != nil {
		return false
	}

	deletedAt, ok := folders[folderID]
	if !ok || deletedAt <= e.updatedAt {
		return false
	}

	e.fields[field] = jsonNull
	e.dirty = true
	return true
}

// decodeEntities reads an entity collection. Both an id-keyed object and an
// array of objects carrying the id field are accepted.
func decodeEntities(name string, raw json.RawMessage, s Strategy) (map[string]*entity, error) {
	out := make(map[string]*entity)
	if isNull(raw) {
		return out, nil
	}

	trimmed := bytes.TrimSpace(raw)
	switch trimmed[0] {
	case '{':
		var members map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &members); err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrMalformedCollection, name, err)
		}
		for id, member := range members {
			if isNull(member) {
				continue
			}
			e, err := decodeEntity(name, member, s)
			if err != nil {
				return nil, err
			}
			out[id] = e
		}
	case '[':
		var members []json.RawMessage
		if err := json.Unmarshal(trimmed, &members); err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrMalformedCollection, name, err)
		}
		for i, member := range members {
			if isNull(member) {
				continue
			}
			e, err := decodeEntity(name, member, s)
			if err != nil {
				return nil, err
			}
			var id string
			if err := json.Unmarshal(e.fields[s.idField()], &id); err != nil || id == "" {
				return nil, fmt.Errorf("%w %s: element %d has no %s", ErrMalformedCollection, name, i, s.idField())
			}
			out[id] = e
		}
	default:
		return nil, fmt.Errorf("%w %s: want object or array", ErrMalformedCollection, name)
	}

	return out, nil
}

func decodeEntity(name string, raw json.RawMessage, s Strategy) (*entity, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w %s: entity is not an object: %v", ErrMalformedCollection, name, err)
	}

	updatedAt, err := ParseTime(fields[s.timeField()])
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", name, s.timeField(), err)
	}

	return &entity{raw: raw, fields: fields, updatedAt: updatedAt}, nil
}

// mergeEntities picks the surviving copy of every id. A copy is dropped when
// its tombstone is at least as new as the copy. Of two surviving copies the
// incoming one wins only when strictly newer.
func mergeEntities(current, incoming map[string]*entity, deleted models.Tombstones) map[string]*entity {
	out := make(map[string]*entity, len(current)+len(incoming))

	alive := func(id string, e *entity) bool {
		if e == nil {
			return false
		}
		deletedAt, ok := deleted[id]
		return !ok || deletedAt < e.updatedAt
	}

	for id := range union(current, incoming) {
		cur, inc := current[id], incoming[id]
		curAlive, incAlive := alive(id, cur), alive(id, inc)

		switch {
		case curAlive && incAlive:
			if inc.updatedAt > cur.updatedAt {
				out[id] = inc
			} else {
				out[id] = cur
			}
		case curAlive:
			out[id] = cur
		case incAlive:
			out[id] = inc
		}
	}

	return out
}

func encodeEntities(entities map[string]*entity) (json.RawMessage, error) {
	members := make(map[string]json.RawMessage, len(entities))
	for id, e := range entities {
		raw, err := e.encode()
		if err != nil {
			return nil, err
		}
		members[id] = raw
	}
	return json.Marshal(members)
}

func union[V any](a, b map[string]V) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}
