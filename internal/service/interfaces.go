package service

import (
	"context"

	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
	"github.com/MKhiriev/go-trace-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// TestService produces the asynchronous demo results.
type TestService interface {
	// ProcessTest resolves with "Test response" after a short delay.
	ProcessTest(ctx context.Context) *tracelog.Future
	// Numbers streams 1..n.
	Numbers(ctx context.Context, n int) (*tracelog.Stream, error)
}

// UserService registers and looks up demo users.
type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (models.User, error)
	Find(ctx context.Context, login string) (models.User, error)
}

// UserServiceWrapper defines middleware composition for UserService.
// Implementations wrap an existing UserService to add behavior such as
// trace logging.
type UserServiceWrapper interface {
	Wrap(UserService) UserService
}
