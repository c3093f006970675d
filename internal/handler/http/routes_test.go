package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-trace-keeper/internal/config"
	"github.com/MKhiriev/go-trace-keeper/internal/service"
	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
	"github.com/MKhiriev/go-trace-keeper/models"
)

func serve(env *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

func TestInit_ImmediateEndpoints(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		target       string
		body         string
		wantStatus   int
		wantBody     string
		wantJSON     bool
		wantHandler  string
		wantParams   []any
		wantRequest  string
		wantResponse string
	}{
		{
			name:         "path variable",
			method:       http.MethodGet,
			target:       "/api/test/hello/Tom",
			wantStatus:   http.StatusOK,
			wantBody:     "Hello, Tom!",
			wantHandler:  "TestHandler.hello",
			wantParams:   []any{map[string]any{"name": "name", "type": "string", "value": "Tom"}},
			wantResponse: "Hello, Tom!",
		},
		{
			name:        "query with default",
			method:      http.MethodGet,
			target:      "/api/test/greet?name=Ann",
			wantStatus:  http.StatusOK,
			wantBody:    "Hello, Ann! You are 18 years old.",
			wantHandler: "TestHandler.greet",
			wantParams: []any{
				map[string]any{"name": "name", "type": "string", "value": "Ann"},
				map[string]any{"name": "age", "type": "int", "value": float64(18)},
			},
		},
		{
			name:        "query with explicit age",
			method:      http.MethodGet,
			target:      "/api/test/greet?name=Li&age=30",
			wantStatus:  http.StatusOK,
			wantBody:    "Hello, Li! You are 30 years old.",
			wantHandler: "TestHandler.greet",
		},
		{
			name:         "json response",
			method:       http.MethodGet,
			target:       "/api/test/user",
			wantStatus:   http.StatusOK,
			wantBody:     `{"name":"Zhang San","email":"zhangsan@example.com","age":25}`,
			wantJSON:     true,
			wantHandler:  "TestHandler.user",
			wantResponse: `{"name":"Zhang San","email":"zhangsan@example.com","age":25}`,
		},
		{
			name:         "json body echo",
			method:       http.MethodPost,
			target:       "/api/test/json",
			body:         `{"name":"Wang","email":"w@test.com","age":28}`,
			wantStatus:   http.StatusOK,
			wantBody:     `{"name":"[Processed] Wang","email":"w@test.com","age":28}`,
			wantJSON:     true,
			wantHandler:  "TestHandler.json",
			wantRequest:  `{"name":"Wang","email":"w@test.com","age":28}`,
			wantResponse: `{"name":"[Processed] Wang","email":"w@test.com","age":28}`,
		},
		{
			name:        "path, query and body",
			method:      http.MethodPost,
			target:      "/api/test/complex/1001?action=update",
			body:        `{"key1":"value1","key2":123}`,
			wantStatus:  http.StatusOK,
			wantHandler: "TestHandler.complex",
			wantParams: []any{
				map[string]any{"name": "id", "type": "string", "value": "1001"},
				map[string]any{"name": "action", "type": "string", "value": "update"},
			},
			wantRequest: `{"key1":"value1","key2":123}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			rr := serve(env, httptest.NewRequest(tt.method, tt.target, body))

			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantJSON {
				assert.JSONEq(t, tt.wantBody, rr.Body.String())
			} else if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rr.Body.String())
			}

			traces := env.out.traces(t)
			require.Len(t, traces, 1)
			rec := traces[0]
			assert.Equal(t, tracelog.TypeResponse, rec["type"])
			assert.Equal(t, tt.wantHandler, rec["handler"])
			assert.Equal(t, strings.SplitN(tt.target, "?", 2)[0], rec["path"])
			assert.Contains(t, rec, "durationMs")
			if tt.wantParams != nil {
				assert.Equal(t, tt.wantParams, rec["params"], "writer and request are never logged")
			}
			if tt.wantRequest != "" {
				assert.Equal(t, tt.wantRequest, rec["requestBody"])
			}
			if tt.wantResponse != "" {
				assert.Equal(t, tt.wantResponse, rec["response"])
			}
		})
	}
}

func TestInit_EndpointErrors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantType   string
	}{
		{
			name:       "age is not a number",
			method:     http.MethodGet,
			target:     "/api/test/greet?name=Ann&age=old",
			wantStatus: http.StatusBadRequest,
			wantType:   "*fmt.wrapError",
		},
		{
			name:       "missing name",
			method:     http.MethodGet,
			target:     "/api/test/greet",
			wantStatus: http.StatusBadRequest,
			wantType:   "*fmt.wrapError",
		},
		{
			name:       "broken json",
			method:     http.MethodPost,
			target:     "/api/test/json",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			wantType:   "*fmt.wrapErrors",
		},
		{
			name:       "empty json body",
			method:     http.MethodPost,
			target:     "/api/test/json",
			wantStatus: http.StatusBadRequest,
			wantType:   "*fmt.wrapError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			rr := serve(env, httptest.NewRequest(tt.method, tt.target, body))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Contains(t, rr.Body.String(), rr.Header().Get(tracelog.TraceIDHeader))

			assert.Empty(t, env.out.traces(t))
			traces := env.errs.traces(t)
			require.Len(t, traces, 1)
			assert.Equal(t, tracelog.TypeError, traces[0]["type"])
			info := traces[0]["error"].(map[string]any)
			assert.Equal(t, tt.wantType, info["type"])
			assert.NotContains(t, info, "stackTrace")
		})
	}
}

func TestInit_DeferredEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tests.EXPECT().ProcessTest(gomock.Any()).DoAndReturn(func(context.Context) *tracelog.Future {
		return tracelog.Go(context.Background(), func(context.Context) (any, error) {
			time.Sleep(20 * time.Millisecond)
			return "Test response", nil
		})
	})

	rr := serve(env, httptest.NewRequest(http.MethodGet, "/api/test1", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Test response", rr.Body.String())

	require.Eventually(t, func() bool { return len(env.out.traces(t)) == 1 }, time.Second, 5*time.Millisecond)
	rec := env.out.traces(t)[0]
	assert.Equal(t, "Test response", rec["response"])
	assert.GreaterOrEqual(t, rec["durationMs"], float64(20))
}

func TestInit_StreamingEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tests.EXPECT().Numbers(gomock.Any(), 3).Return(tracelog.FromSlice(1, 2, 3), nil)

	rr := serve(env, httptest.NewRequest(http.MethodGet, "/api/test/stream", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/x-ndjson", rr.Header().Get("Content-Type"))
	assert.Equal(t, "1\n2\n3\n", rr.Body.String())
	assert.True(t, rr.Flushed)

	traces := env.out.traces(t)
	require.Len(t, traces, 1, "stream is settled before the response ends")
	assert.Equal(t, "[1,2,3]", traces[0]["response"])
}

func TestInit_StreamingRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tests.EXPECT().Numbers(gomock.Any(), 5000).Return(nil, service.ErrInvalidCount)

	rr := serve(env, httptest.NewRequest(http.MethodGet, "/api/test/stream?n=5000", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Len(t, env.errs.traces(t), 1)
}

func TestInit_StreamingErrorItem(t *testing.T) {
	env := newTestEnv(t, nil)
	src := make(chan tracelog.Item, 2)
	src <- tracelog.Item{Value: 1}
	src <- tracelog.Item{Err: context.DeadlineExceeded}
	close(src)
	env.tests.EXPECT().Numbers(gomock.Any(), 2).Return(tracelog.FromChannel(src), nil)

	rr := serve(env, httptest.NewRequest(http.MethodGet, "/api/test/stream?n=2", nil))

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1", lines[0])
	assert.Contains(t, lines[1], `"error":"context deadline exceeded"`)

	traces := env.errs.traces(t)
	require.Len(t, traces, 1)
	assert.Equal(t, "context deadline exceeded", traces[0]["error"].(map[string]any)["message"])
}

func TestInit_UserEndpoints(t *testing.T) {
	t.Run("register masks the password", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.users.EXPECT().
			Register(gomock.Any(), models.RegisterRequest{Login: "alice", Name: "Alice", Password: "hunter2"}).
			Return(models.User{UserID: 1, Login: "alice", Name: "Alice"}, nil)

		body := `{"login":"alice","name":"Alice","password":"hunter2"}`
		rr := serve(env, httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), `"login":"alice"`)
		assert.NotContains(t, rr.Body.String(), "hunter2")

		traces := env.out.traces(t)
		require.Len(t, traces, 1)
		assert.Equal(t, tracelog.Mask, traces[0]["requestBody"])
		assert.EqualValues(t, http.StatusCreated, traces[0]["status"])
		assert.NotContains(t, env.out.String(), "hunter2")
	})

	t.Run("register conflict", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.users.EXPECT().Register(gomock.Any(), gomock.Any()).Return(models.User{}, service.ErrLoginTaken)

		rr := serve(env, httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"login":"a","password":"b"}`)))

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Len(t, env.errs.traces(t), 1)
	})

	t.Run("find", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.users.EXPECT().Find(gomock.Any(), "alice").Return(models.User{UserID: 1, Login: "alice"}, nil)

		rr := serve(env, httptest.NewRequest(http.MethodGet, "/api/users/alice", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"id":1,"login":"alice","name":"","created_at":"0001-01-01T00:00:00Z"}`, rr.Body.String())
	})

	t.Run("find unknown user", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.users.EXPECT().Find(gomock.Any(), "ghost").Return(models.User{}, service.ErrUserNotFound)

		req := httptest.NewRequest(http.MethodGet, "/api/users/ghost", nil)
		req.Header.Set(tracelog.TraceIDHeader, "9f2c7a3e-1b4d-4c8e-a0f5-3d6b8e2a1c40")
		rr := serve(env, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"error":"user not found","traceId":"9f2c7a3e-1b4d-4c8e-a0f5-3d6b8e2a1c40"}`, rr.Body.String())

		traces := env.errs.traces(t)
		require.Len(t, traces, 1)
		assert.Equal(t, "9f2c7a3e-1b4d-4c8e-a0f5-3d6b8e2a1c40", traces[0]["traceId"])
	})
}

func TestInit_HeadersAreSanitized(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/test/hello/Tom", nil)
	req.Header.Set("Authorization", "Bearer abc")
	req.Header.Set("Cookie", "session=1")
	req.Header.Set("X-Client-Secret", "s")
	req.Header.Set("Accept", "text/plain")
	serve(env, req)

	traces := env.out.traces(t)
	require.Len(t, traces, 1)
	headers := traces[0]["headers"].(map[string]any)
	assert.NotContains(t, headers, "Authorization")
	assert.NotContains(t, headers, "Cookie")
	assert.Equal(t, tracelog.Mask, headers["X-Client-Secret"])
	assert.Equal(t, "text/plain", headers["Accept"])
}

func TestInit_GzipBodyIsCapturedDecompressed(t *testing.T) {
	env := newTestEnv(t, nil)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte(`{"name":"Zip","email":"z@test.com","age":1}`))
	require.NoError(t, zw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/test/json", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	rr := serve(env, req)

	require.Equal(t, http.StatusOK, rr.Code)
	traces := env.out.traces(t)
	require.Len(t, traces, 1)
	assert.Equal(t, `{"name":"Zip","email":"z@test.com","age":1}`, traces[0]["requestBody"])
}

func TestInit_UntracedRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := serve(env, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = serve(env, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "# metrics", rr.Body.String())

	rr = serve(env, httptest.NewRequest(http.MethodDelete, "/api/test/user", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.Zero(t, env.total(t))
}

func TestInit_TracingDisabled(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Logging) { cfg.Enabled = config.Bool(false) })

	rr := serve(env, httptest.NewRequest(http.MethodPost, "/api/test/json", strings.NewReader(`{"name":"A"}`)))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "[Processed] A")
	assert.Zero(t, env.total(t))
}
