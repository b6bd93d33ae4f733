// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package merge

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/notesync/models"
)

// Resolver merges payloads according to a [Registry].
type Resolver struct {
	registry *Registry
}

// NewResolver returns a resolver over registry. A nil registry means
// [DefaultRegistry].
func NewResolver(registry *Registry) *Resolver {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Resolver{registry: registry}
}

// Registry returns the registry the resolver merges by.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Merge combines the local (current) and remote (incoming) payloads. The
// result holds every registered collection present on either side; keys
// that are not registered are ignored. Neither input is modified.
//
// Merge is idempotent: merging a result with either of its inputs again
// yields the same result.
func (r *Resolver) Merge(current, incoming models.Payload) (models.Payload, error) {
	out := make(models.Payload)
	present := func(name string) bool {
		_, c := current[name]
		_, i := incoming[name]
		return c || i
	}

	// tombstones first: everything below depends on them
	tombstones := make(map[string]models.Tombstones)
	allDeleted := make(models.Tombstones)
	for _, name := range r.registry.namesOf(KindTombstones) {
		merged, err := mergeTombstones(name, current[name], incoming[name])
		if err != nil {
			return nil, err
		}
		tombstones[name] = merged
		for id, at := range merged {
			allDeleted[id] = max(allDeleted[id], at)
		}
		if present(name) {
			if out[name], err = json.Marshal(merged); err != nil {
				return nil, err
			}
		}
	}

	for _, name := range r.registry.namesOf(KindEntityMap) {
		if !present(name) {
			continue
		}
		s, _ := r.registry.Lookup(name)

		cur, err := decodeEntities(name, current[name], s)
		if err != nil {
			return nil, err
		}
		inc, err := decodeEntities(name, incoming[name], s)
		if err != nil {
			return nil, err
		}

		// clear dangling folder references on both sides before choosing
		if s.ParentField != "" {
			folders := tombstones[s.ParentTombstones]
			for _, side := range []map[string]*entity{cur, inc} {
				for _, e := range side {
					e.clearParent(s.ParentField, folders)
				}
			}
		}

		if out[name], err = encodeEntities(mergeEntities(cur, inc, tombstones[s.Tombstones])); err != nil {
			return nil, err
		}
	}

	for _, name := range r.registry.namesOf(KindFlatSet) {
		if !present(name) {
			continue
		}
		merged, err := mergeFlatSet(name, current[name], incoming[name])
		if err != nil {
			return nil, err
		}
		out[name] = merged
	}

	for _, name := range r.registry.namesOf(KindKeyedOverwrite) {
		if !present(name) {
			continue
		}
		merged, err := mergeKeyed(name, current[name], incoming[name], allDeleted)
		if err != nil {
			return nil, err
		}
		out[name] = merged
	}

	for _, name := range r.registry.namesOf(KindScalar) {
		if v, ok := incoming[name]; ok && !isNull(v) {
			out[name] = v
		} else if v, ok := current[name]; ok {
			out[name] = v
		}
	}

	return out, nil
}

// DecodeTombstones reads a tombstone collection, normalizing every deletion
// time to epoch milliseconds.
func DecodeTombstones(raw json.RawMessage) (models.Tombstones, error) {
	out := make(models.Tombstones)
	if isNull(raw) {
		return out, nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	for id, v := range entries {
		at, err := ParseTime(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}
		out[id] = at
	}
	return out, nil
}

// mergeTombstones unions both maps keeping the later deletion time.
func mergeTombstones(name string, current, incoming json.RawMessage) (models.Tombstones, error) {
	cur, err := DecodeTombstones(current)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrMalformedCollection, name, err)
	}
	inc, err := DecodeTombstones(incoming)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrMalformedCollection, name, err)
	}

	for id, at := range inc {
		if prev, ok := cur[id]; !ok || at > prev {
			cur[id] = at
		}
	}
	return cur, nil
}

// mergeFlatSet returns the union of two arrays, current elements first.
// Elements are compared by their compact JSON encoding.
func mergeFlatSet(name string, current, incoming json.RawMessage) (json.RawMessage, error) {
	seen := make(map[string]struct{})
	out := make([]json.RawMessage, 0)

	for _, side := range []json.RawMessage{current, incoming} {
		if isNull(side) {
			continue
		}
		var elems []json.RawMessage
		if err := json.Unmarshal(side, &elems); err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrMalformedCollection, name, err)
		}

		for _, elem := range elems {
			var buf bytes.Buffer
			if err := json.Compact(&buf, elem); err != nil {
				return nil, fmt.Errorf("%w %s: %v", ErrMalformedCollection, name, err)
			}
			key := buf.String()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, buf.Bytes())
		}
	}

	return json.Marshal(out)
}

// mergeKeyed overlays incoming on current and strips keys of deleted
// entities.
func mergeKeyed(name string, current, incoming json.RawMessage, deleted models.Tombstones) (json.RawMessage, error) {
	merged := make(map[string]json.RawMessage)

	for _, side := range []json.RawMessage{current, incoming} {
		if isNull(side) {
			continue
		}
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(side, &entries); err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrMalformedCollection, name, err)
		}
		for k, v := range entries {
			merged[k] = v
		}
	}

	for id := range deleted {
		delete(merged, id)
	}

	return json.Marshal(merged)
}
