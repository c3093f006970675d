package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-trace-keeper/internal/logger"
	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
)

const (
	// MaxNumbers bounds the length of a Numbers stream.
	MaxNumbers = 1000

	testResponse     = "Test response"
	defaultTestDelay = 100 * time.Millisecond
)

// testService is the concrete implementation of TestService.
type testService struct {
	delay    time.Duration
	interval time.Duration
	logger   *logger.Logger
}

// NewTestService returns a TestService with the default delay.
func NewTestService(logger *logger.Logger) TestService {
	return &testService{
		delay:  defaultTestDelay,
		logger: logger,
	}
}

// ProcessTest resolves with "Test response" after the configured delay, or
// rejects with the context error if ctx ends first.
func (s *testService) ProcessTest(ctx context.Context) *tracelog.Future {
	return tracelog.Go(ctx, func(ctx context.Context) (any, error) {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			return testResponse, nil
		case <-ctx.Done():
			logger.FromContextOr(ctx, s.logger).Debug().Msg("test processing cancelled")
			return nil, ctx.Err()
		}
	})
}

// Numbers streams the integers 1..n in order.
func (s *testService) Numbers(ctx context.Context, n int) (*tracelog.Stream, error) {
	if n < 0 || n > MaxNumbers {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidCount, n, MaxNumbers)
	}

	return tracelog.Produce(ctx, func(ctx context.Context, emit func(any) bool) error {
		for i := 1; i <= n; i++ {
			if s.interval > 0 {
				select {
				case <-time.After(s.interval):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			if !emit(i) {
				return ctx.Err()
			}
		}
		return nil
	}), nil
}
