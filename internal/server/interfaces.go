package server

import "context"

// Server defines the lifecycle contract of the folder server.
type Server interface {
	// Run serves requests until ctx is done, then shuts down gracefully.
	Run(ctx context.Context) error

	// RunServer serves until SIGTERM, SIGINT or SIGQUIT arrives.
	RunServer()

	// Shutdown gracefully stops the server and frees associated resources.
	Shutdown()
}
