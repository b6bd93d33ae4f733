package remote

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/MKhiriev/notesync/models"
)

const lockRetryDelay = 50 * time.Millisecond

// LocalFolder is a sync folder on the local filesystem. Blocking filesystem
// calls run in their own goroutine so a context deadline is honoured even
// when a network-backed mount hangs.
type LocalFolder struct {
	root string
	ref  Ref
}

// NewLocalFolder returns a folder rooted at dir. The directory does not have
// to exist yet.
func NewLocalFolder(dir string) (*LocalFolder, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRef, err)
	}
	return &LocalFolder{
		root: root,
		ref:  Ref{Kind: RefLocal, Location: root},
	}, nil
}

func (f *LocalFolder) Ref() Ref {
	return f.ref
}

// Root returns the absolute directory of the folder.
func (f *LocalFolder) Root() string {
	return f.root
}

func (f *LocalFolder) MkdirAll(ctx context.Context, p string) error {
	full, err := f.resolve(p)
	if err != nil {
		return err
	}
	return run(ctx, func() error {
		return os.MkdirAll(full, 0o755)
	})
}

func (f *LocalFolder) Stat(ctx context.Context, p string) (models.FileEntry, error) {
	full, err := f.resolve(p)
	if err != nil {
		return models.FileEntry{}, err
	}

	var entry models.FileEntry
	err = run(ctx, func() error {
		info, err := os.Stat(full)
		if err != nil {
			return mapFSError(err)
		}
		entry = fileEntry(info)
		return nil
	})
	return entry, err
}

func (f *LocalFolder) ReadFile(ctx context.Context, p string) ([]byte, error) {
	full, err := f.resolve(p)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = run(ctx, func() error {
		info, err := os.Stat(full)
		if err != nil {
			return mapFSError(err)
		}
		if info.IsDir() {
			return fmt.Errorf("%w: %s", ErrIsDirectory, p)
		}
		data, err = os.ReadFile(full)
		return mapFSError(err)
	})
	return data, err
}

// WriteFile writes to a temporary file next to the target and renames it
// into place while holding the folder lock.
func (f *LocalFolder) WriteFile(ctx context.Context, p string, data []byte) error {
	full, err := f.resolve(p)
	if err != nil {
		return err
	}
	if full == f.root {
		return fmt.Errorf("%w: root", ErrIsDirectory)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", p, err)
	}

	lock := flock.New(filepath.Join(f.root, LockFile))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrLocked, ctx.Err())
		}
		return fmt.Errorf("lock %s: %w", f.root, err)
	}
	if !locked {
		return ErrLocked
	}

	return run(ctx, func() error {
		defer lock.Unlock()
		return writeAtomic(full, data)
	})
}

func (f *LocalFolder) ReadDir(ctx context.Context, p string) ([]models.FileEntry, error) {
	full, err := f.resolve(p)
	if err != nil {
		return nil, err
	}

	var entries []models.FileEntry
	err = run(ctx, func() error {
		dirEntries, err := os.ReadDir(full)
		if err != nil {
			return mapFSError(err)
		}
		for _, de := range dirEntries {
			if isInternalFile(de.Name()) {
				continue
			}
			info, err := de.Info()
			if err != nil {
				// removed while listing
				continue
			}
			entries = append(entries, fileEntry(info))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// resolve maps a folder path to an absolute filesystem path inside root.
func (f *LocalFolder) resolve(p string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(p))
	full := filepath.Join(f.root, filepath.FromSlash(clean))

	rel, err := filepath.Rel(f.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, p)
	}
	return full, nil
}

func writeAtomic(full string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(full), tempPattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// run executes fn in a goroutine and gives up waiting when ctx is done.
func run(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func mapFSError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrNotExist, err)
	}
	return err
}

func fileEntry(info fs.FileInfo) models.FileEntry {
	entry := models.FileEntry{
		Name:    info.Name(),
		IsDir:   info.IsDir(),
		ModTime: info.ModTime().UnixMilli(),
	}
	if !entry.IsDir {
		entry.Size = info.Size()
	}
	return entry
}

func isInternalFile(name string) bool {
	if name == LockFile {
		return true
	}
	ok, _ := filepath.Match(tempPattern, name)
	return ok
}
