package remote

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MKhiriev/notesync/internal/logger"
)

// DefaultSettleDelay groups the burst of events a single atomic write
// produces into one notification.
const DefaultSettleDelay = 250 * time.Millisecond

// Watcher notifies when metadata.json of a local folder changes, which is how
// another device's push shows up on a cloud-mirrored directory.
type Watcher struct {
	root     string
	onChange func(ctx context.Context)
	settle   time.Duration
	logger   *logger.Logger

	stopOnce sync.Once
	stop     chan struct{}
}

// NewWatcher watches the folder root. onChange runs on the watcher goroutine
// and must not block for long.
func NewWatcher(folder *LocalFolder, onChange func(ctx context.Context), log *logger.Logger) *Watcher {
	return &Watcher{
		root:     folder.Root(),
		onChange: onChange,
		settle:   DefaultSettleDelay,
		logger:   log,
		stop:     make(chan struct{}),
	}
}

// Run watches until ctx is done or Stop is called.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return fmt.Errorf("create watched folder: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.root); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	w.logger.Info().Str("func", "Watcher.Run").Str("root", w.root).Msg("watching sync folder")

	var (
		settle  *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if settle != nil {
			settle.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stop:
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != MetadataFile ||
				!event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if settle == nil {
				settle = time.NewTimer(w.settle)
			} else {
				settle.Reset(w.settle)
			}
			pending = settle.C
		case <-pending:
			pending = nil
			w.logger.Debug().Str("func", "Watcher.Run").Msg("remote metadata changed")
			w.onChange(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Err(err).Str("func", "Watcher.Run").Msg("fsnotify error")
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}
