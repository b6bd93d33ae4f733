package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/notesync/internal/config"
	"github.com/MKhiriev/notesync/internal/logger"
	"github.com/MKhiriev/notesync/internal/remote"
	"github.com/MKhiriev/notesync/internal/service"
	"github.com/MKhiriev/notesync/internal/store"
	"github.com/MKhiriev/notesync/internal/tui"
	"github.com/MKhiriev/notesync/internal/workers"
)

type App struct {
	kv       store.KVStore
	services *service.ClientServices
	logger   *logger.Logger
}

// NewApp opens the local store and wires the client services. password is
// asked when an encrypted folder needs a password; it may be nil.
func NewApp(ctx context.Context, cfg *config.ClientConfig, password service.PasswordProvider, log *logger.Logger) (*App, error) {
	kv, err := store.NewKVStore(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	return &App{
		kv:       kv,
		services: service.NewClientServices(kv, cfg.Sync, password, log),
		logger:   log,
	}, nil
}

func (a *App) Services() *service.ClientServices {
	return a.services
}

// Run shows the notes screen while the background loops keep syncing. It
// returns when the user quits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := a.backgroundWorkers(ctx)
	if err != nil {
		return err
	}
	w.Add(workers.WorkerFunc(func(ctx context.Context) error {
		// выход из TUI останавливает фоновые циклы
		defer cancel()
		return tui.New(a.services, a.logger).Run(ctx)
	}))

	return w.Run(ctx)
}

// RunBackground syncs on schedule and on folder changes until ctx is done.
func (a *App) RunBackground(ctx context.Context) error {
	w, err := a.backgroundWorkers(ctx)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

func (a *App) Close() error {
	a.services.SyncEngine.Close()
	return a.kv.Close()
}

func (a *App) backgroundWorkers(ctx context.Context) (*workers.Workers, error) {
	w := workers.NewWorkers(a.services.SyncJob)

	ref, err := a.services.Prefs.SyncFolder(ctx)
	switch {
	case errors.Is(err, service.ErrNoFolder):
		a.logger.Info().Msg("no sync folder configured, folder watcher disabled")
		return w, nil
	case err != nil:
		return nil, err
	}

	if ref.Kind != remote.RefLocal {
		return w, nil
	}

	folder, err := remote.NewLocalFolder(ref.Location)
	if err != nil {
		return nil, fmt.Errorf("open sync folder: %w", err)
	}
	w.Add(remote.NewWatcher(folder, a.services.SyncEngine.RemoteChanged, a.logger))
	return w, nil
}

var _ Client = (*App)(nil)
