package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/MKhiriev/notesync/internal/remote"
	"github.com/MKhiriev/notesync/internal/store"
	"github.com/MKhiriev/notesync/models"
)

// Prefs reads and writes the client preferences kept next to the synced
// collections. Values are stored as JSON strings ("true", "file:///...").
type Prefs struct {
	store store.KVStore

	// used when the preference was never set
	defaultAutoSync bool
	defaultFolder   string
}

func NewPrefs(kv store.KVStore, defaultAutoSync bool, defaultFolder string) *Prefs {
	return &Prefs{
		store:           kv,
		defaultAutoSync: defaultAutoSync,
		defaultFolder:   defaultFolder,
	}
}

func (p *Prefs) AutoSync(ctx context.Context) bool {
	return p.getBool(ctx, models.PrefAutoSync, p.defaultAutoSync)
}

func (p *Prefs) SetAutoSync(ctx context.Context, on bool) error {
	return p.setString(ctx, models.PrefAutoSync, strconv.FormatBool(on))
}

func (p *Prefs) SyncWithPassword(ctx context.Context) bool {
	return p.getBool(ctx, models.PrefSyncWithPassword, false)
}

func (p *Prefs) SetSyncWithPassword(ctx context.Context, on bool) error {
	return p.setString(ctx, models.PrefSyncWithPassword, strconv.FormatBool(on))
}

// SyncFolder returns the stored folder ref, falling back to the configured
// one. ErrNoFolder when neither is set.
func (p *Prefs) SyncFolder(ctx context.Context) (remote.Ref, error) {
	raw := p.defaultFolder

	var stored string
	found, err := store.GetJSON(ctx, p.store, models.PrefSyncFolder, &stored)
	if err != nil {
		return remote.Ref{}, fmt.Errorf("read %s preference: %w", models.PrefSyncFolder, err)
	}
	if found && stored != "" {
		raw = stored
	}

	if raw == "" {
		return remote.Ref{}, ErrNoFolder
	}
	return remote.ParseRef(raw)
}

// SetSyncFolder validates and stores ref. An empty ref clears the preference.
func (p *Prefs) SetSyncFolder(ctx context.Context, ref string) error {
	if ref == "" {
		return p.store.Delete(ctx, models.PrefSyncFolder)
	}

	parsed, err := remote.ParseRef(ref)
	if err != nil {
		return err
	}
	return p.setString(ctx, models.PrefSyncFolder, parsed.String())
}

func (p *Prefs) getBool(ctx context.Context, key string, def bool) bool {
	var raw string
	found, err := store.GetJSON(ctx, p.store, key, &raw)
	if err != nil || !found {
		return def
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func (p *Prefs) setString(ctx context.Context, key, value string) error {
	if err := store.SetJSON(ctx, p.store, key, value); err != nil {
		return fmt.Errorf("write %s preference: %w", key, err)
	}
	return nil
}
