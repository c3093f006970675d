package service

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-trace-keeper/internal/config"
	"github.com/MKhiriev/go-trace-keeper/internal/logger"
	"github.com/MKhiriev/go-trace-keeper/internal/mock"
	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
	"github.com/MKhiriev/go-trace-keeper/models"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) traces(t *testing.T) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(b.buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m))
		if tr, ok := m["trace"].(map[string]any); ok {
			out = append(out, tr)
		}
	}
	return out
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTracedUserSvc(t *testing.T) (UserService, *mock.MockUserService, *syncBuffer, *syncBuffer) {
	t.Helper()
	inner := mock.NewMockUserService(gomock.NewController(t))

	out, errs := &syncBuffer{}, &syncBuffer{}
	emitter := tracelog.NewEmitter(logger.NewWriterLogger(out, "test"), logger.NewWriterLogger(errs, "test"))
	ic := tracelog.NewInterceptor(config.Defaults().Logging, emitter)

	return NewTracedUserService(ic).Wrap(inner), inner, out, errs
}

func TestTracedUserService_Register(t *testing.T) {
	svc, inner, out, errs := newTracedUserSvc(t)

	req := models.RegisterRequest{Login: "alice", Name: "Alice", Password: "hunter2"}
	inner.EXPECT().Register(gomock.Any(), req).Return(models.User{UserID: 3, Login: "alice"}, nil)

	user, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(3), user.UserID)

	traces := out.traces(t)
	require.Len(t, traces, 1)
	assert.Empty(t, errs.traces(t))

	rec := traces[0]
	assert.Equal(t, tracelog.TypeResponse, rec["type"])
	assert.Equal(t, "SERVICE", rec["method"])
	assert.Equal(t, "UserService.Register", rec["path"])

	params, ok := rec["params"].([]any)
	require.True(t, ok)
	require.Len(t, params, 1, "context argument is not logged")
	assert.Equal(t, tracelog.Mask, params[0].(map[string]any)["value"])
	assert.NotContains(t, out.String(), "hunter2")
}

func TestTracedUserService_FindNotFound(t *testing.T) {
	svc, inner, out, errs := newTracedUserSvc(t)

	inner.EXPECT().Find(gomock.Any(), "ghost").Return(models.User{}, ErrUserNotFound)

	_, err := svc.Find(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)

	assert.Empty(t, out.traces(t))
	traces := errs.traces(t)
	require.Len(t, traces, 1)
	assert.Equal(t, tracelog.TypeError, traces[0]["type"])

	info, ok := traces[0]["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ErrUserNotFound.Error(), info["message"])
}
