package remote

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalFolder(t *testing.T) *LocalFolder {
	t.Helper()
	f, err := NewLocalFolder(filepath.Join(t.TempDir(), "sync"))
	require.NoError(t, err)
	return f
}

func TestLocalFolder_ReadMissing(t *testing.T) {
	f := newTestLocalFolder(t)

	_, err := f.ReadFile(context.Background(), MetadataFile)
	assert.ErrorIs(t, err, ErrNotExist)

	_, err = f.Stat(context.Background(), MetadataFile)
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLocalFolder_WriteReadStat(t *testing.T) {
	f := newTestLocalFolder(t)
	ctx := context.Background()

	require.NoError(t, f.WriteFile(ctx, DataFile, []byte(`{"data":{}}`)))
	require.NoError(t, f.WriteFile(ctx, DataFile, []byte(`{"data":{"labels":[]}}`)))

	got, err := f.ReadFile(ctx, DataFile)
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"labels":[]}}`, string(got))

	entry, err := f.Stat(ctx, DataFile)
	require.NoError(t, err)
	assert.Equal(t, DataFile, entry.Name)
	assert.False(t, entry.IsDir)
	assert.Equal(t, int64(len(got)), entry.Size)

	root, err := f.Stat(ctx, "")
	require.NoError(t, err)
	assert.True(t, root.IsDir)
}

func TestLocalFolder_MkdirAllAndReadDir(t *testing.T) {
	f := newTestLocalFolder(t)
	ctx := context.Background()

	require.NoError(t, f.MkdirAll(ctx, NoteAssetsDir))
	require.NoError(t, f.MkdirAll(ctx, NoteAssetsDir)) // idempotent
	require.NoError(t, f.MkdirAll(ctx, FileAssetsDir+"/nested"))
	require.NoError(t, f.WriteFile(ctx, MetadataFile, []byte(`{"version":1}`)))
	// stray temp file from an interrupted write
	require.NoError(t, os.WriteFile(filepath.Join(f.Root(), ".notesync-123.tmp"), nil, 0o600))

	entries, err := f.ReadDir(ctx, "")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{FileAssetsDir, MetadataFile, NoteAssetsDir}, names)
	assert.True(t, entries[0].IsDir)

	_, err = f.ReadDir(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLocalFolder_PathsStayInsideRoot(t *testing.T) {
	f := newTestLocalFolder(t)
	ctx := context.Background()

	// ".." is clamped at the root
	require.NoError(t, f.WriteFile(ctx, "../../escape.json", []byte("x")))
	_, err := os.Stat(filepath.Join(f.Root(), "escape.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(f.Root()), "escape.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalFolder_WriteRootOrDirectory(t *testing.T) {
	f := newTestLocalFolder(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.WriteFile(ctx, "/", []byte("x")), ErrIsDirectory)

	require.NoError(t, f.MkdirAll(ctx, NoteAssetsDir))
	_, err := f.ReadFile(ctx, NoteAssetsDir)
	assert.ErrorIs(t, err, ErrIsDirectory)
}

func TestLocalFolder_CanceledContext(t *testing.T) {
	f := newTestLocalFolder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, f.MkdirAll(ctx, NoteAssetsDir), context.Canceled)
	_, err := f.ReadFile(ctx, DataFile)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalFolder_WriteWaitsForLock(t *testing.T) {
	f := newTestLocalFolder(t)
	require.NoError(t, f.MkdirAll(context.Background(), ""))

	// another process holds the folder lock
	other := flock.New(filepath.Join(f.Root(), LockFile))
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	err = f.WriteFile(ctx, DataFile, []byte("x"))
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, other.Unlock())
	assert.NoError(t, f.WriteFile(context.Background(), DataFile, []byte("x")))
}

func TestLocalFolder_ConcurrentWritesAreWhole(t *testing.T) {
	f := newTestLocalFolder(t)
	ctx := context.Background()

	payloads := [][]byte{
		[]byte(`{"data":"aaaa"}`),
		[]byte(`{"data":"bbbbbbbbbbbbbbbb"}`),
	}

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.WriteFile(ctx, DataFile, payloads[i%2]))
		}()
	}
	wg.Wait()

	got, err := f.ReadFile(ctx, DataFile)
	require.NoError(t, err)
	assert.Contains(t, [][]byte{payloads[0], payloads[1]}, got)
}
