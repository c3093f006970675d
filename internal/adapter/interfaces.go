// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides a client for the demo API of the trace keeper
// server.
//
// [ServerAdapter] hides the transport from callers. The HTTP implementation
// ([NewHTTPServerAdapter]) is built on resty, forwards the trace id of the
// calling context in the X-Trace-ID header and guards the server with a
// circuit breaker.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] (e.g. [ErrConflict] for
// 409, [ErrNotFound] for 404).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-trace-keeper/models"
)

// ServerAdapter calls the demo endpoints of the server. Every method returns
// the decoded response or one of the sentinel errors of this package.
type ServerAdapter interface {
	// Health calls GET /health.
	Health(ctx context.Context) (models.HealthResponse, error)

	// Deferred calls GET /api/test1, which answers after a delay.
	Deferred(ctx context.Context) (string, error)

	// Hello calls GET /api/test/hello/{name}.
	Hello(ctx context.Context, name string) (string, error)

	// Greet calls GET /api/test/greet with name and age query parameters.
	Greet(ctx context.Context, name string, age int) (string, error)

	// Submit posts a urlencoded form to POST /api/test/form.
	Submit(ctx context.Context, username, password string) (string, error)

	// Echo posts person to POST /api/test/json and returns the processed copy.
	Echo(ctx context.Context, person models.Person) (models.Person, error)

	// Complex calls POST /api/test/complex/{id}?action= with payload as body.
	Complex(ctx context.Context, id, action string, payload map[string]any) (models.ComplexResponse, error)

	// Stream reads the NDJSON stream of GET /api/test/stream?n=.
	Stream(ctx context.Context, n int) ([]int, error)

	// Register creates a user with POST /api/users.
	Register(ctx context.Context, req models.RegisterRequest) (models.User, error)

	// FindUser looks a user up with GET /api/users/{login}.
	FindUser(ctx context.Context, login string) (models.User, error)
}
