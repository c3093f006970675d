package http

import (
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-trace-keeper/internal/logger"
	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
)

// withTraceLogging records plain handlers from the outside. The request body
// is captured before next runs and the response is recorded as it is
// written; the record settles when next returns. A panic is recorded as an
// error and re-raised for the recoverer.
func (h *Handler) withTraceLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.interceptor.Traced(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		inv := &tracelog.Invocation{
			Method:  r.Method,
			Path:    r.URL.Path,
			Handler: routePattern(r),
			Header:  r.Header,
			Query:   r.URL.Query(),
			Body:    r.Body,
		}
		rec := h.interceptor.Begin(r.Context(), inv)
		r.Body = inv.Body
		r = r.WithContext(tracelog.WithRecord(r.Context(), rec))

		lw := newResponseWriter(w, h.interceptor.MaxBodyLength())
		defer func() {
			if p := recover(); p != nil {
				_ = h.interceptor.FinishPanic(rec, p, debug.Stack())
				panic(p)
			}
		}()

		next.ServeHTTP(lw, r)

		if err := h.interceptor.Finish(rec, tracelog.Response{
			Status: lw.statusCode(),
			Header: lw.Header(),
			Body:   lw.captured(),
		}, nil); err != nil {
			logger.FromRequest(r).Debug().Err(err).Str("trace_id", rec.TraceID).Msg("trace record settled twice")
		}
	})
}

// routePattern returns the chi route pattern matched for r, or the raw path
// when r was not routed by chi.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
