// Package server wires and runs the application's transport servers.
//
// The HTTP and gRPC servers run in one errgroup. A stop signal, a cancelled
// context or the failure of any server shuts all of them down within the
// configured timeout.
package server
