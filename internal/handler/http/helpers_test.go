package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-trace-keeper/internal/config"
	"github.com/MKhiriev/go-trace-keeper/internal/logger"
	"github.com/MKhiriev/go-trace-keeper/internal/mock"
	"github.com/MKhiriev/go-trace-keeper/internal/service"
	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
)

// syncBuffer is a log sink that tests read while handlers still write.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// traces decodes the "trace" object of every line written so far.
func (b *syncBuffer) traces(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace([]byte(b.String())), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m), "line: %s", line)
		if tr, ok := m["trace"].(map[string]any); ok {
			out = append(out, tr)
		}
	}
	return out
}

type testEnv struct {
	handler *Handler
	router  http.Handler
	out     *syncBuffer
	errs    *syncBuffer
	tests   *mock.MockTestService
	users   *mock.MockUserService
}

// total returns the number of records on both sinks.
func (e *testEnv) total(t *testing.T) int {
	return len(e.out.traces(t)) + len(e.errs.traces(t))
}

func newTestEnv(t *testing.T, mutate func(cfg *config.Logging)) *testEnv {
	t.Helper()

	cfg := config.Defaults().Logging
	if mutate != nil {
		mutate(&cfg)
	}

	ctrl := gomock.NewController(t)
	env := &testEnv{
		out:   &syncBuffer{},
		errs:  &syncBuffer{},
		tests: mock.NewMockTestService(ctrl),
		users: mock.NewMockUserService(ctrl),
	}

	emitter := tracelog.NewEmitter(
		logger.NewWriterLogger(env.out, "test"),
		logger.NewWriterLogger(env.errs, "test"),
	)
	services := &service.Services{TestService: env.tests, UserService: env.users}
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})

	env.handler = NewHandler(services, tracelog.NewInterceptor(cfg, emitter), metrics, logger.Nop())
	env.router = env.handler.Init()
	return env
}
