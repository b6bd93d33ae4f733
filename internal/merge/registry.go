// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package merge

import (
	"fmt"

	"github.com/MKhiriev/notesync/models"
)

// Kind selects the merge rule of a collection.
type Kind int

const (
	// KindEntityMap is a map of id to object carrying an update time.
	// The strictly newer copy wins and tombstones drop older copies.
	KindEntityMap Kind = iota
	// KindFlatSet is a JSON array merged by set union.
	KindFlatSet
	// KindKeyedOverwrite is a flat object; incoming keys overwrite current
	// ones and keys naming a deleted entity are stripped.
	KindKeyedOverwrite
	// KindTombstones maps a deleted id to its deletion time.
	KindTombstones
	// KindScalar is any JSON value; a non-null incoming value wins.
	KindScalar
)

func (k Kind) String() string {
	switch k {
	case KindEntityMap:
		return "entity-map"
	case KindFlatSet:
		return "flat-set"
	case KindKeyedOverwrite:
		return "keyed-overwrite"
	case KindTombstones:
		return "tombstones"
	case KindScalar:
		return "scalar"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Strategy describes how one collection is merged. Only Kind is required;
// the remaining fields apply to [KindEntityMap].
type Strategy struct {
	Kind Kind

	// IDField names the id property used when the collection arrives as an
	// array. Defaults to "id".
	IDField string
	// TimeField names the last-update property. Defaults to "updatedAt".
	TimeField string
	// Tombstones is the tombstone collection that deletes entities of this
	// collection.
	Tombstones string
	// ParentField names a reference to a folder, cleared when the folder is
	// deleted after the entity was last updated.
	ParentField string
	// ParentTombstones is the tombstone collection of the referenced folders.
	ParentTombstones string
}

// EntityMap returns a [KindEntityMap] strategy.
func EntityMap(idField, timeField, tombstones string) Strategy {
	return Strategy{Kind: KindEntityMap, IDField: idField, TimeField: timeField, Tombstones: tombstones}
}

// WithParent adds a folder reference to an entity map strategy.
func (s Strategy) WithParent(field, tombstones string) Strategy {
	s.ParentField = field
	s.ParentTombstones = tombstones
	return s
}

func (s Strategy) idField() string {
	if s.IDField == "" {
		return "id"
	}
	return s.IDField
}

func (s Strategy) timeField() string {
	if s.TimeField == "" {
		return "updatedAt"
	}
	return s.TimeField
}

// Registry holds the strategy of every synchronized collection.
type Registry struct {
	names      []string
	strategies map[string]Strategy
}

func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register adds a collection. Names are merged in registration order within
// each merge phase.
func (r *Registry) Register(name string, s Strategy) error {
	if _, ok := r.strategies[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCollection, name)
	}
	if s.Kind == KindEntityMap && s.Tombstones != "" {
		if ts, ok := r.strategies[s.Tombstones]; ok && ts.Kind != KindTombstones {
			return fmt.Errorf("%s: %s is a %s collection", name, s.Tombstones, ts.Kind)
		}
	}

	r.names = append(r.names, name)
	r.strategies[name] = s
	return nil
}

// MustRegister is Register that panics on error. Meant for package-level
// registries built at init time.
func (r *Registry) MustRegister(name string, s Strategy) *Registry {
	if err := r.Register(name, s); err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the strategy of name.
func (r *Registry) Lookup(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

// Names returns the registered collections in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *Registry) namesOf(kind Kind) []string {
	var out []string
	for _, name := range r.names {
		if r.strategies[name].Kind == kind {
			out = append(out, name)
		}
	}
	return out
}

// DefaultRegistry returns the registry of the notes application.
func DefaultRegistry() *Registry {
	return NewRegistry().
		MustRegister(models.KeyDeletedIDs, Strategy{Kind: KindTombstones}).
		MustRegister(models.KeyDeletedFolderIDs, Strategy{Kind: KindTombstones}).
		MustRegister(models.KeyNotes,
			EntityMap("id", "updatedAt", models.KeyDeletedIDs).
				WithParent("folderId", models.KeyDeletedFolderIDs)).
		MustRegister(models.KeyFolders,
			EntityMap("id", "updatedAt", models.KeyDeletedFolderIDs).
				WithParent("parentId", models.KeyDeletedFolderIDs)).
		MustRegister(models.KeyLabels, Strategy{Kind: KindFlatSet}).
		MustRegister(models.KeyLockStatus, Strategy{Kind: KindKeyedOverwrite}).
		MustRegister(models.KeySettings, Strategy{Kind: KindKeyedOverwrite}).
		MustRegister(models.KeyIsLocked, Strategy{Kind: KindScalar})
}
