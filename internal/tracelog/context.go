package tracelog

import (
	"context"

	"github.com/google/uuid"
)

// TraceIDHeader carries the trace id in and out of HTTP and gRPC calls.
const TraceIDHeader = "X-Trace-ID"

// InboundTraceID returns the canonical form of an id received from a
// client. Only UUIDs are accepted; anything else reports false and the
// caller generates a fresh id.
func InboundTraceID(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// contextKey is a private type for context keys of this package.
type contextKey string

func (c contextKey) String() string {
	return "tracelog " + string(c)
}

var (
	traceIDCtxKey = contextKey("traceID")
	recordCtxKey  = contextKey("record")
)

// WithTraceID returns a copy of ctx carrying id. The builder reuses it for
// the record of any call made with that context.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDCtxKey, id)
}

// TraceIDFromContext returns the trace id stored by [WithTraceID], or an
// empty string.
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceIDCtxKey).(string)
	return id
}

// WithRecord returns a copy of ctx marking rec as the call in progress.
// Records begun with that context belong to nested calls and get a trace id
// of their own.
func WithRecord(ctx context.Context, rec *TraceRecord) context.Context {
	return context.WithValue(ctx, recordCtxKey, rec)
}

// RecordFromContext returns the record stored by [WithRecord].
func RecordFromContext(ctx context.Context) (*TraceRecord, bool) {
	if ctx == nil {
		return nil, false
	}
	rec, ok := ctx.Value(recordCtxKey).(*TraceRecord)
	return rec, ok && rec != nil
}
