package tracelog

import (
	"context"
	"runtime/debug"
	"strings"

	"github.com/MKhiriev/go-trace-keeper/internal/config"
)

// HandlerFunc is a dispatched call as seen by the [Interceptor].
type HandlerFunc func(ctx context.Context, inv *Invocation) Result

// Interceptor wraps calls so that each one produces exactly one record.
type Interceptor struct {
	enabled       bool
	logRequests   bool
	excludedPaths []string

	builder    *Builder
	emitter    *Emitter
	reconciler reconciler
}

// NewInterceptor returns an Interceptor configured by cfg that writes
// records through emitter.
func NewInterceptor(cfg config.Logging, emitter *Emitter) *Interceptor {
	s := NewSanitizer(PolicyFromConfig(cfg))
	return &Interceptor{
		enabled:       cfg.IsEnabled(),
		logRequests:   cfg.RequestsLogged(),
		excludedPaths: cfg.ExcludedPaths,
		builder:       NewBuilder(s),
		emitter:       emitter,
		reconciler: reconciler{
			sanitizer: s,
			withStack: cfg.StacktraceIncluded(),
		},
	}
}

// MaxBodyLength returns the logged body bound.
func (i *Interceptor) MaxBodyLength() int { return i.builder.Sanitizer().MaxBodyLength() }

// Sanitizer returns the sanitizer applied to every record.
func (i *Interceptor) Sanitizer() *Sanitizer { return i.builder.Sanitizer() }

// Traced reports whether calls to path produce records.
func (i *Interceptor) Traced(path string) bool {
	if !i.enabled {
		return false
	}
	for _, p := range i.excludedPaths {
		if p != "" && (path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/")) {
			return false
		}
	}
	return true
}

// Begin creates the populated record of inv. Most callers use
// [Interceptor.Intercept]; transports that observe completion themselves
// call Begin and later [Interceptor.Finish].
func (i *Interceptor) Begin(ctx context.Context, inv *Invocation) *TraceRecord {
	rec := i.builder.Begin(ctx, inv)
	rec.onSettle = i.emitter.Emit
	if i.logRequests {
		i.emitter.EmitRequest(rec)
	}
	return rec
}

// Finish settles rec with an immediate value or error. It returns
// [ErrAlreadySettled] if rec was settled before.
func (i *Interceptor) Finish(rec *TraceRecord, value any, err error) error {
	return rec.Settle(i.reconciler.outcome(value, err))
}

// FinishPanic settles rec with a recovered panic value.
func (i *Interceptor) FinishPanic(rec *TraceRecord, p any, stack []byte) error {
	return rec.Settle(i.reconciler.failure(&PanicError{Value: p, Stack: stack}))
}

// Intercept runs next and returns its result with the same observable
// behavior. The record is settled when the result completes. A panic in
// next is settled as an error and then re-raised.
func (i *Interceptor) Intercept(ctx context.Context, inv *Invocation, next HandlerFunc) Result {
	if !i.Traced(inv.Path) {
		return next(ctx, inv)
	}

	rec := i.Begin(ctx, inv)
	defer func() {
		if p := recover(); p != nil {
			_ = i.FinishPanic(rec, p, debug.Stack())
			panic(p)
		}
	}()

	return i.reconciler.reconcile(ctx, rec, next(WithRecord(ctx, rec), inv))
}
