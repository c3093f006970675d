package service

import (
	"github.com/MKhiriev/go-trace-keeper/internal/logger"
	"github.com/MKhiriev/go-trace-keeper/internal/store"
	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
)

type Services struct {
	TestService TestService
	UserService UserService
}

// NewServices builds the services. The user service is wrapped so that
// every call produces its own trace record.
func NewServices(repositories *store.Repositories, interceptor *tracelog.Interceptor, logger *logger.Logger) *Services {
	return &Services{
		TestService: NewTestService(logger),
		UserService: NewTracedUserService(interceptor).Wrap(NewUserService(repositories.UserRepository, logger)),
	}
}
