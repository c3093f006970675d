package server

import "context"

// Server defines the common lifecycle contract for transport servers managed
// by this package.
//
// Implementations block in [Server.Run] until the server stops and release
// resources in [Server.Shutdown].
type Server interface {
	// Run starts serving requests and blocks until the server stops or ctx
	// is cancelled. A server stopped by Shutdown returns nil.
	Run(ctx context.Context) error

	// Shutdown gracefully stops the server within ctx.
	Shutdown(ctx context.Context) error
}
