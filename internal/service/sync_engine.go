// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/notesync/internal/clock"
	"github.com/MKhiriev/notesync/internal/config"
	"github.com/MKhiriev/notesync/internal/crypto"
	"github.com/MKhiriev/notesync/internal/logger"
	"github.com/MKhiriev/notesync/internal/merge"
	"github.com/MKhiriev/notesync/internal/remote"
	"github.com/MKhiriev/notesync/internal/store"
	"github.com/MKhiriev/notesync/internal/utils"
	"github.com/MKhiriev/notesync/models"
)

// FolderOpener resolves a folder ref to a backend.
type FolderOpener func(ref remote.Ref) (remote.Folder, error)

// IDGenerator mints change ids.
type IDGenerator interface {
	Generate() string
}

// EngineDeps are the collaborators of the sync engine. Store, Prefs and
// Cipher are required; everything else has a default.
type EngineDeps struct {
	Store    store.KVStore
	Prefs    *Prefs
	Cipher   crypto.PayloadCipher
	Resolver *merge.Resolver
	Open     FolderOpener
	Password PasswordProvider
	Clock    clock.Clock
	IDs      IDGenerator
	Logger   *logger.Logger
}

type syncEngine struct {
	store    store.KVStore
	prefs    *Prefs
	cipher   crypto.PayloadCipher
	resolver *merge.Resolver
	open     FolderOpener
	clock    clock.Clock
	ids      IDGenerator
	logger   *logger.Logger

	remoteTimeout time.Duration
	scheduler     *syncScheduler

	// held for the whole round; TryLock makes a second caller bail out
	roundMu   sync.Mutex
	running   atomic.Bool
	firstSync atomic.Bool

	mu              sync.RWMutex
	pending         map[string]models.PendingChange
	seq             uint64
	status          models.SyncStatus
	knownRemote     int64
	remoteEncrypted bool
	password        string
	askPassword     PasswordProvider
	refresh         Refresher

	folderMu  sync.Mutex
	folder    remote.Folder
	folderRef remote.Ref
}

// NewSyncEngine builds the engine. cfg supplies the debounce window and the
// remote timeout.
func NewSyncEngine(deps EngineDeps, cfg config.ClientSync) SyncEngine {
	e := &syncEngine{
		store:         deps.Store,
		prefs:         deps.Prefs,
		cipher:        deps.Cipher,
		resolver:      deps.Resolver,
		open:          deps.Open,
		clock:         deps.Clock,
		ids:           deps.IDs,
		logger:        deps.Logger,
		remoteTimeout: cfg.RemoteTimeout,
		pending:       make(map[string]models.PendingChange),
		status:        models.SyncStatus{State: models.SyncStateIdle},
		password:      cfg.Password,
		askPassword:   deps.Password,
	}

	if e.resolver == nil {
		e.resolver = merge.NewResolver(nil)
	}
	if e.clock == nil {
		e.clock = clock.New()
	}
	if e.logger == nil {
		e.logger = logger.Nop()
	}
	if e.ids == nil {
		e.ids = utils.NewUUIDGenerator()
	}
	if e.open == nil {
		e.open = func(ref remote.Ref) (remote.Folder, error) {
			return remote.Open(ref, remote.Options{
				Timeout:      cfg.RemoteTimeout,
				TokenSignKey: cfg.TokenSignKey,
				TokenIssuer:  cfg.TokenIssuer,
				Device:       cfg.Device,
				Logger:       e.logger,
			})
		}
	}
	if e.remoteTimeout <= 0 {
		e.remoteTimeout = config.DefaultRemoteTimeout
	}

	e.scheduler = newSyncScheduler(e.runScheduled, cfg.DebounceWindow, e.clock, e.logger)
	return e
}

// Sync implements SyncEngine.
func (e *syncEngine) Sync(ctx context.Context) error {
	if !e.roundMu.TryLock() {
		return ErrSyncInProgress
	}
	defer e.roundMu.Unlock()

	e.running.Store(true)
	defer e.running.Store(false)

	folder, err := e.currentFolder(ctx)
	if errors.Is(err, ErrNoFolder) {
		e.logger.Debug().Msg("no sync folder configured, skipping sync")
		return nil
	}
	if err != nil {
		e.fail(err)
		return err
	}

	prev := e.beginRound(folder.Ref())

	if err = e.syncRound(ctx, folder); err != nil {
		if errors.Is(err, ErrPasswordRequired) {
			e.restoreStatus(prev)
			e.logger.Warn().Err(err).Msg("sync skipped: password not provided")
			return err
		}
		if errors.Is(err, crypto.ErrDecryptionFailed) {
			e.forgetPassword()
		}
		e.fail(err)
		return err
	}

	e.succeed()
	return nil
}

func (e *syncEngine) syncRound(ctx context.Context, folder remote.Folder) error {
	if err := e.ensureLayout(ctx, folder); err != nil {
		return err
	}

	remoteMeta, _, err := e.readRemoteMetadata(ctx, folder)
	if err != nil {
		return err
	}

	if remoteMeta.Version > 0 {
		local, err := e.localMetadata(ctx)
		if err != nil {
			return err
		}
		if !local.IsInitialized {
			e.firstSync.Store(true)
			defer e.firstSync.Store(false)
		}

		if err = e.pull(ctx, folder, remoteMeta); err != nil {
			return err
		}
	}

	if err = e.push(ctx, folder, remoteMeta.Version); err != nil {
		return err
	}

	e.mu.RLock()
	refresh := e.refresh
	e.mu.RUnlock()
	if refresh != nil {
		if err = refresh(ctx); err != nil {
			// data is already consistent on both sides
			e.logger.Warn().Err(err).Msg("refresh after sync failed")
		}
	}

	return nil
}

// ensureLayout creates the folder root and the asset directories.
func (e *syncEngine) ensureLayout(ctx context.Context, folder remote.Folder) error {
	for _, dir := range []string{"", remote.NoteAssetsDir, remote.FileAssetsDir} {
		err := e.withTimeout(ctx, func(ctx context.Context) error {
			return folder.MkdirAll(ctx, dir)
		})
		if err != nil {
			return fmt.Errorf("%w: create %q: %w", ErrRemoteWrite, dir, err)
		}
	}
	return nil
}

// RemoteChanged implements SyncEngine.
func (e *syncEngine) RemoteChanged(ctx context.Context) {
	folder, err := e.currentFolder(ctx)
	if err != nil {
		return
	}

	meta, exists, err := e.readRemoteMetadata(ctx, folder)
	if err != nil {
		e.logger.Warn().Err(err).Msg("remote change notification: metadata unreadable")
		return
	}

	e.mu.RLock()
	known := e.knownRemote
	e.mu.RUnlock()

	if !exists || meta.Version <= known {
		return
	}

	e.logger.Debug().Int64("remote_version", meta.Version).Int64("known_version", known).Msg("remote folder moved ahead")
	e.ScheduleSync(false)
}

func (e *syncEngine) ScheduleSync(immediate bool) {
	e.scheduler.Schedule(immediate)
}

func (e *syncEngine) ForceSyncNow() {
	e.scheduler.Schedule(true)
}

func (e *syncEngine) SetPassword(password string) {
	e.mu.Lock()
	e.password = password
	e.mu.Unlock()
}

func (e *syncEngine) SetRefresher(fn Refresher) {
	e.mu.Lock()
	e.refresh = fn
	e.mu.Unlock()
}

func (e *syncEngine) Status() models.SyncStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// Close stops the scheduler and waits for a scheduled round in flight.
func (e *syncEngine) Close() {
	e.scheduler.Close()
}

func (e *syncEngine) runScheduled(ctx context.Context) {
	// failures are already recorded in status and logged by Sync
	if err := e.Sync(ctx); errors.Is(err, ErrSyncInProgress) {
		e.logger.Debug().Msg("scheduled sync skipped: round in progress")
	}
}

// currentFolder resolves the syncFolder preference and caches the opened
// backend until the preference changes.
func (e *syncEngine) currentFolder(ctx context.Context) (remote.Folder, error) {
	ref, err := e.prefs.SyncFolder(ctx)
	if err != nil {
		return nil, err
	}

	e.folderMu.Lock()
	defer e.folderMu.Unlock()

	if e.folder != nil && e.folderRef == ref {
		return e.folder, nil
	}

	folder, err := e.open(ref)
	if err != nil {
		return nil, fmt.Errorf("open sync folder %s: %w", ref, err)
	}
	e.folder, e.folderRef = folder, ref

	e.mu.Lock()
	e.knownRemote = 0
	e.remoteEncrypted = false
	e.mu.Unlock()

	return folder, nil
}

// withTimeout bounds one remote call.
func (e *syncEngine) withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.remoteTimeout)
	defer cancel()
	return fn(ctx)
}

func (e *syncEngine) localMetadata(ctx context.Context) (models.SyncMetadata, error) {
	var meta models.SyncMetadata
	if _, err := store.GetJSON(ctx, e.store, models.KeySyncMetadata, &meta); err != nil {
		return models.SyncMetadata{}, fmt.Errorf("read local metadata: %w", err)
	}
	return meta, nil
}

// ── status ───────────────────────────────────────────────────────────────────

func (e *syncEngine) beginRound(ref remote.Ref) models.SyncStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.status
	e.status.State = models.SyncStateSyncing
	e.status.Message = ""
	e.status.Folder = ref.String()
	return prev
}

func (e *syncEngine) restoreStatus(prev models.SyncStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// versions may have moved during the round, keep them
	prev.LocalVersion = e.status.LocalVersion
	prev.RemoteVersion = e.status.RemoteVersion
	prev.PendingChanges = len(e.pending)
	prev.Folder = e.status.Folder
	e.status = prev
}

func (e *syncEngine) fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.status.State = models.SyncStateError
	e.status.Message = err.Error()
	e.logger.Error().Err(err).Msg("sync failed")
}

func (e *syncEngine) succeed() {
	now := clock.UnixMilli(e.clock)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.status.State = models.SyncStateSuccess
	e.status.Message = ""
	e.status.LastSynced = now
	e.status.PendingChanges = len(e.pending)
	e.status.Encrypted = e.remoteEncrypted

	e.logger.Info().
		Int64("version", e.status.LocalVersion).
		Int64("remote_version", e.status.RemoteVersion).
		Int("pending", e.status.PendingChanges).
		Msg("sync finished")
}
