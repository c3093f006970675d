package tracelog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Arg is a declared argument of the intercepted call.
type Arg struct {
	Name  string
	Type  string
	Value any
}

// Invocation describes an intercepted call as seen by the dispatch layer.
type Invocation struct {
	Method  string
	Path    string
	Handler string
	Header  http.Header
	Query   url.Values
	Args    []Arg
	// Body is the request body. Begin replaces it with a replay reader over
	// the captured bytes, so handlers read it as if it were untouched.
	Body io.ReadCloser
}

// Arg returns the value of the named argument.
func (inv *Invocation) Arg(name string) (any, bool) {
	for _, a := range inv.Args {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// Builder creates populated trace records.
type Builder struct {
	sanitizer *Sanitizer
	now       func() time.Time
	newID     func() string
}

// NewBuilder returns a Builder that sanitizes inputs with s.
func NewBuilder(s *Sanitizer) *Builder {
	return &Builder{
		sanitizer: s,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Sanitizer returns the sanitizer used for inputs.
func (b *Builder) Sanitizer() *Sanitizer { return b.sanitizer }

// Begin creates a record for inv and moves it to [StatePopulated].
//
// The trace id comes from ctx, then from the X-Trace-ID header when it holds
// a UUID, and is generated otherwise. A call nested in another traced call always gets a
// generated id. If inv carries a body it is captured and inv.Body is
// replaced with a replay reader; a failed read is replayed to the handler
// and logged as [EmptyBody].
func (b *Builder) Begin(ctx context.Context, inv *Invocation) *TraceRecord {
	r := &TraceRecord{
		TraceID:   b.traceID(ctx, inv.Header),
		Method:    inv.Method,
		Path:      inv.Path,
		Handler:   inv.Handler,
		StartTime: b.now(),
	}

	r.Headers = b.sanitizer.Headers(inv.Header)
	r.QueryParams = b.sanitizer.Query(inv.Query)

	for _, a := range inv.Args {
		typ := a.Type
		if typ == "" {
			typ = fmt.Sprintf("%T", a.Value)
		}
		if b.sanitizer.ExcludedParamType(typ) {
			continue
		}
		r.Params = append(r.Params, Param{
			Name:  a.Name,
			Type:  typ,
			Value: b.sanitizer.Sanitize(a.Name, a.Value, typ),
		})
	}

	if inv.Body != nil && inv.Body != http.NoBody {
		buf, _ := Capture(inv.Body)
		r.capture = buf
		r.RequestBody = b.sanitizer.SanitizeBody(buf.Bytes())
		inv.Body = buf.Reader()
	}

	r.state.Store(int32(StatePopulated))
	return r
}

func (b *Builder) traceID(ctx context.Context, h http.Header) string {
	if _, nested := RecordFromContext(ctx); nested {
		return b.newID()
	}
	if id := TraceIDFromContext(ctx); id != "" {
		return id
	}
	if id, ok := InboundTraceID(h.Get(TraceIDHeader)); ok {
		return id
	}
	return b.newID()
}
