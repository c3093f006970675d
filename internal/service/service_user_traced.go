package service

import (
	"context"

	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
	"github.com/MKhiriev/go-trace-keeper/models"
)

// serviceMethod is the method name written to records of service calls.
const serviceMethod = "SERVICE"

// TracedUserService writes one trace record per UserService call.
type TracedUserService struct {
	inner       UserService
	interceptor *tracelog.Interceptor
}

// NewTracedUserService returns a wrapper that traces calls through
// interceptor.
func NewTracedUserService(interceptor *tracelog.Interceptor) UserServiceWrapper {
	return &TracedUserService{interceptor: interceptor}
}

// Wrap sets the wrapped service.
func (s *TracedUserService) Wrap(inner UserService) UserService {
	s.inner = inner
	return s
}

func (s *TracedUserService) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	inv := &tracelog.Invocation{
		Method:  serviceMethod,
		Path:    "UserService.Register",
		Handler: "service.UserService.Register",
		Args: []tracelog.Arg{
			{Name: "ctx", Type: "context.Context", Value: ctx},
			{Name: "req", Type: "models.RegisterRequest", Value: req},
		},
	}
	return s.user(s.interceptor.Intercept(ctx, inv, func(ctx context.Context, _ *tracelog.Invocation) tracelog.Result {
		return tracelog.Immediate(s.inner.Register(ctx, req))
	}))
}

func (s *TracedUserService) Find(ctx context.Context, login string) (models.User, error) {
	inv := &tracelog.Invocation{
		Method:  serviceMethod,
		Path:    "UserService.Find",
		Handler: "service.UserService.Find",
		Args: []tracelog.Arg{
			{Name: "ctx", Type: "context.Context", Value: ctx},
			{Name: "login", Type: "string", Value: login},
		},
	}
	return s.user(s.interceptor.Intercept(ctx, inv, func(ctx context.Context, _ *tracelog.Invocation) tracelog.Result {
		return tracelog.Immediate(s.inner.Find(ctx, login))
	}))
}

func (s *TracedUserService) user(res tracelog.Result) (models.User, error) {
	v, err := res.Value()
	user, _ := v.(models.User)
	return user, err
}
