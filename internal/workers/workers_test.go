// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingWorker counts runs and blocks until its context ends.
type blockingWorker struct {
	runs atomic.Int32
}

func (b *blockingWorker) Run(ctx context.Context) error {
	b.runs.Add(1)
	<-ctx.Done()
	return nil
}

func TestWorkers_RunUntilCancelled(t *testing.T) {
	w1, w2 := &blockingWorker{}, &blockingWorker{}
	ws := NewWorkers(w1, w2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ws.Run(ctx) }()

	require.Eventually(t, func() bool { return w1.runs.Load() == 1 && w2.runs.Load() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWorkers_FailureStopsOthers(t *testing.T) {
	boom := errors.New("boom")
	blocker := &blockingWorker{}
	ws := NewWorkers(blocker)
	ws.Add(WorkerFunc(func(context.Context) error { return boom }))

	err := ws.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), blocker.runs.Load())
}

func TestWorkers_JoinsErrors(t *testing.T) {
	a, b := errors.New("a"), errors.New("b")
	ws := NewWorkers(
		WorkerFunc(func(context.Context) error { return a }),
		WorkerFunc(func(context.Context) error { return b }),
	)

	err := ws.Run(context.Background())
	assert.ErrorIs(t, err, a)
	assert.ErrorIs(t, err, b)
}

func TestWorkers_Empty(t *testing.T) {
	assert.NoError(t, NewWorkers().Run(context.Background()))
	assert.NoError(t, (&Workers{}).Run(context.Background()))
}
