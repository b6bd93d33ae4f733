package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/MKhiriev/notesync/internal/logger"
	"github.com/MKhiriev/notesync/internal/mock"
	"github.com/MKhiriev/notesync/internal/remote"
	"github.com/MKhiriev/notesync/internal/store"
	"github.com/MKhiriev/notesync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestStore(t *testing.T) store.KVStore {
	t.Helper()
	kv, err := store.NewBoltStore(filepath.Join(t.TempDir(), "kv.db"), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestPrefs_BoolDefaults(t *testing.T) {
	ctx := context.Background()
	kv := newTestStore(t)

	assert.True(t, NewPrefs(kv, true, "").AutoSync(ctx))
	assert.False(t, NewPrefs(kv, false, "").AutoSync(ctx))
	assert.False(t, NewPrefs(kv, true, "").SyncWithPassword(ctx))
}

func TestPrefs_BoolRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newTestStore(t)
	p := NewPrefs(kv, false, "")

	require.NoError(t, p.SetAutoSync(ctx, true))
	require.NoError(t, p.SetSyncWithPassword(ctx, true))
	assert.True(t, p.AutoSync(ctx))
	assert.True(t, p.SyncWithPassword(ctx))

	// stored as JSON strings
	raw, err := kv.Get(ctx, models.PrefAutoSync)
	require.NoError(t, err)
	assert.JSONEq(t, `"true"`, string(raw))

	require.NoError(t, p.SetAutoSync(ctx, false))
	assert.False(t, p.AutoSync(ctx))
}

func TestPrefs_GarbageFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	kv := newTestStore(t)
	require.NoError(t, kv.Set(ctx, models.PrefAutoSync, []byte(`"maybe"`)))

	assert.True(t, NewPrefs(kv, true, "").AutoSync(ctx))
}

func TestPrefs_SyncFolder(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name     string
		def      string
		stored   string
		wantLoc  string
		wantErr  error
		wantKind remote.RefKind
	}{
		{name: "nothing configured", wantErr: ErrNoFolder},
		{name: "default", def: dir, wantLoc: dir, wantKind: remote.RefLocal},
		{name: "stored wins", def: "/elsewhere", stored: dir, wantLoc: dir, wantKind: remote.RefLocal},
		{name: "http", stored: "http://sync.local:8080/", wantKind: remote.RefHTTP},
		{name: "invalid", def: "relative/path", wantErr: remote.ErrInvalidRef},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newTestStore(t)
			p := NewPrefs(kv, false, tt.def)
			if tt.stored != "" {
				require.NoError(t, p.SetSyncFolder(ctx, tt.stored))
			}

			ref, err := p.SyncFolder(ctx)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, ref.Kind)
			if tt.wantLoc != "" {
				assert.Equal(t, tt.wantLoc, ref.Location)
			}
		})
	}
}

func TestPrefs_SetSyncFolder(t *testing.T) {
	ctx := context.Background()
	kv := newTestStore(t)
	p := NewPrefs(kv, false, "")

	assert.ErrorIs(t, p.SetSyncFolder(ctx, "ftp://nope"), remote.ErrInvalidRef)

	dir := t.TempDir()
	require.NoError(t, p.SetSyncFolder(ctx, dir))
	_, err := p.SyncFolder(ctx)
	require.NoError(t, err)

	require.NoError(t, p.SetSyncFolder(ctx, ""))
	_, err = p.SyncFolder(ctx)
	assert.ErrorIs(t, err, ErrNoFolder)
}

func TestPrefs_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := mock.NewMockKVStore(ctrl)
	kv.EXPECT().Get(gomock.Any(), models.PrefSyncFolder).Return(nil, assert.AnError)

	_, err := NewPrefs(kv, false, "/x").SyncFolder(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}
