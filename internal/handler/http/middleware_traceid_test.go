package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-trace-keeper/internal/logger"
	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
)

func executeWithTraceID(h *Handler, traceIDHeader string) (*httptest.ResponseRecorder, *http.Request) {
	var captured *http.Request
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if traceIDHeader != "" {
		req.Header.Set(tracelog.TraceIDHeader, traceIDHeader)
	}

	rr := httptest.NewRecorder()
	h.withTraceID(next).ServeHTTP(rr, req)
	return rr, captured
}

func TestWithTraceID_TableTest(t *testing.T) {
	tests := []struct {
		name           string
		requestTraceID string
		wantSame       bool
		wantUUID       bool
	}{
		{name: "UUID from request header is reused", requestTraceID: "550e8400-e29b-41d4-a716-446655440000", wantSame: true},
		{name: "free text header is replaced", requestTraceID: "my-custom-trace-id", wantUUID: true},
		{name: "oversized header is replaced", requestTraceID: strings.Repeat("f", 1024), wantUUID: true},
		{name: "missing header generates UUID", wantUUID: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Handler{logger: logger.Nop()}
			rr, req := executeWithTraceID(h, tt.requestTraceID)
			require.NotNil(t, req, "next must be called")

			id := rr.Header().Get(tracelog.TraceIDHeader)
			require.NotEmpty(t, id)
			assert.Equal(t, id, tracelog.TraceIDFromContext(req.Context()), "context carries the echoed id")

			if tt.wantSame {
				assert.Equal(t, tt.requestTraceID, id)
			}
			if tt.wantUUID {
				assert.NotEqual(t, tt.requestTraceID, id)
				_, err := uuid.Parse(id)
				assert.NoError(t, err)
			}
		})
	}
}

func TestWithTraceID_RequestLoggerCarriesTraceID(t *testing.T) {
	var buf bytes.Buffer
	h := &Handler{logger: logger.NewWriterLogger(&buf, "test")}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromRequest(r).Info().Msg("inside")
	})
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(tracelog.TraceIDHeader, "6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	h.withTraceID(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"trace_id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8"`)
}

func TestWithTraceID_GeneratesUniqueIDs(t *testing.T) {
	h := &Handler{logger: logger.Nop()}
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		rr, _ := executeWithTraceID(h, "")
		id := rr.Header().Get(tracelog.TraceIDHeader)
		_, duplicate := seen[id]
		require.False(t, duplicate, "duplicate trace ID generated: %s", id)
		seen[id] = struct{}{}
	}
}

func TestWithTraceID_OriginalRequestNotMutated(t *testing.T) {
	h := &Handler{logger: logger.Nop()}
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	originalCtx := req.Context()

	h.withTraceID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, originalCtx, req.Context())
}
