package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/notesync/internal/config"
	"github.com/MKhiriev/notesync/internal/logger"
	"github.com/robfig/cron"
)

type syncJob struct {
	syncer  Syncer
	enabled func(ctx context.Context) bool
	spec    string
	logger  *logger.Logger

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc

	// held while a tick runs; Stop takes it to wait for the tick
	tickMu sync.Mutex
}

// NewSyncJob creates a job that runs syncer.Sync on a cron schedule while
// enabled reports true. spec is the default schedule used by Run. The job is
// idle until Start or Run is called.
func NewSyncJob(syncer Syncer, enabled func(ctx context.Context) bool, spec string, log *logger.Logger) SyncJob {
	if enabled == nil {
		enabled = func(context.Context) bool { return true }
	}
	if log == nil {
		log = logger.Nop()
	}
	return &syncJob{syncer: syncer, enabled: enabled, spec: spec, logger: log}
}

// Start implements SyncJob. It stops any previously running schedule, then
// registers a new one. An empty spec falls back to config.DefaultSchedule.
func (j *syncJob) Start(ctx context.Context, spec string) error {
	if spec == "" {
		spec = config.DefaultSchedule
	}

	schedule, err := cron.Parse(spec)
	if err != nil {
		return fmt.Errorf("parse sync schedule %q: %w", spec, err)
	}

	j.startSchedule(ctx, schedule)
	j.logger.Info().Str("schedule", spec).Msg("periodic sync started")
	return nil
}

func (j *syncJob) startSchedule(ctx context.Context, schedule cron.Schedule) {
	j.Stop()

	j.mu.Lock()
	defer j.mu.Unlock()

	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel

	c := cron.New()
	c.Schedule(schedule, cron.FuncJob(func() { j.tick(jobCtx) }))
	c.Start()
	j.cron = c
}

func (j *syncJob) tick(ctx context.Context) {
	j.tickMu.Lock()
	defer j.tickMu.Unlock()

	if ctx.Err() != nil || !j.enabled(ctx) {
		return
	}

	err := j.syncer.Sync(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrSyncInProgress):
		j.logger.Debug().Msg("periodic sync skipped: round in progress")
	default:
		j.logger.Warn().Err(err).Msg("periodic sync failed")
	}
}

// Stop implements SyncJob. It stops the schedule, cancels a running round's
// context and blocks until that round has returned. Safe to call when the
// job is not running.
func (j *syncJob) Stop() {
	j.mu.Lock()
	c, cancel := j.cron, j.cancel
	j.cron, j.cancel = nil, nil
	j.mu.Unlock()

	if c != nil {
		c.Stop()
	}
	if cancel != nil {
		cancel()
	}

	j.tickMu.Lock()
	j.tickMu.Unlock() //nolint:staticcheck // waits for an in-flight tick
}

// Run implements SyncJob.
func (j *syncJob) Run(ctx context.Context) error {
	if err := j.Start(ctx, j.spec); err != nil {
		return err
	}
	<-ctx.Done()
	j.Stop()
	return nil
}
