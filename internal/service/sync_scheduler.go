package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/notesync/internal/clock"
	"github.com/MKhiriev/notesync/internal/config"
	"github.com/MKhiriev/notesync/internal/logger"
)

// syncScheduler debounces sync requests. A request runs at once when it is
// immediate or the window has passed since the last run; otherwise it
// (re)arms a timer for a full window, so a burst of edits collapses into one
// round fired a window after the last edit.
type syncScheduler struct {
	run    func(ctx context.Context)
	window time.Duration
	clock  clock.Clock
	logger *logger.Logger

	mu              sync.Mutex
	lastScheduledAt time.Time
	timer           clock.Timer
	// bumped on every arm/cancel; a timer whose generation is stale does nothing
	generation uint64
	closed     bool

	wg sync.WaitGroup
}

func newSyncScheduler(run func(ctx context.Context), window time.Duration, clk clock.Clock, log *logger.Logger) *syncScheduler {
	if window <= 0 {
		window = config.DefaultDebounceWindow
	}
	return &syncScheduler{
		run:             run,
		window:          window,
		clock:           clk,
		logger:          log,
		lastScheduledAt: clk.Now(),
	}
}

// Schedule requests a sync round.
func (s *syncScheduler) Schedule(immediate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.cancelTimerLocked()

	now := s.clock.Now()
	if immediate || now.Sub(s.lastScheduledAt) > s.window {
		s.lastScheduledAt = now
		s.startLocked()
		return
	}

	gen := s.generation
	s.timer = s.clock.AfterFunc(s.window, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.closed || gen != s.generation {
			return
		}
		s.timer = nil
		s.lastScheduledAt = s.clock.Now()
		s.startLocked()
	})
	s.logger.Debug().Dur("window", s.window).Msg("sync debounced")
}

// Close cancels a pending timer and waits for a running round to return.
// Schedule is a no-op afterwards.
func (s *syncScheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.cancelTimerLocked()
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *syncScheduler) cancelTimerLocked() {
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *syncScheduler) startLocked() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(context.Background())
	}()
}
