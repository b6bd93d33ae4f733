// Package workers runs the client's long-lived background loops (periodic
// sync, folder watching) side by side until their context ends.
package workers

import "context"

// Worker is a background loop. Run blocks until ctx is done or the loop
// fails, and returns nil on a clean shutdown.
//
// Example implementation:
//
//	type ticker struct{}
//
//	func (t *ticker) Run(ctx context.Context) error {
//	    <-ctx.Done()
//	    return nil
//	}
type Worker interface {
	Run(ctx context.Context) error
}

// WorkerFunc adapts a function to Worker.
type WorkerFunc func(ctx context.Context) error

func (f WorkerFunc) Run(ctx context.Context) error { return f(ctx) }
