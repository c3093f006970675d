package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
)

// withTraceID reuses an inbound X-Trace-ID holding a UUID or generates one. The id is
// echoed in the response, attached to the request logger and stored in the
// context so that every record built for this request shares it.
func (h *Handler) withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID, ok := tracelog.InboundTraceID(r.Header.Get(tracelog.TraceIDHeader))
		if !ok {
			traceID = uuid.NewString()
		}

		l := h.logger.GetChildLogger()
		l.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("trace_id", traceID)
		})
		ctx := tracelog.WithTraceID(l.WithContext(r.Context()), traceID)

		w.Header().Set(tracelog.TraceIDHeader, traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
