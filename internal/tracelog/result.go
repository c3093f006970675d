package tracelog

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
)

// Kind tells how a call completes.
type Kind int

const (
	// KindImmediate is a value or error available when the call returns.
	KindImmediate Kind = iota
	// KindDeferred is a single value or error delivered later by a [Future].
	KindDeferred
	// KindStreaming is zero or more values delivered by a [Stream].
	KindStreaming
)

func (k Kind) String() string {
	switch k {
	case KindImmediate:
		return "immediate"
	case KindDeferred:
		return "deferred"
	case KindStreaming:
		return "streaming"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Result is what a dispatched call returns. The kind is fixed when the
// Result is built.
type Result struct {
	kind   Kind
	value  any
	err    error
	future *Future
	stream *Stream
}

// Immediate wraps a synchronous value or error.
func Immediate(value any, err error) Result {
	return Result{kind: KindImmediate, value: value, err: err}
}

// Deferred wraps a value that f delivers later.
func Deferred(f *Future) Result {
	return Result{kind: KindDeferred, future: f}
}

// Streaming wraps the items s delivers.
func Streaming(s *Stream) Result {
	return Result{kind: KindStreaming, stream: s}
}

// Kind returns the completion kind. Unknown kinds and results without their
// future or stream count as [KindImmediate].
func (r Result) Kind() Kind {
	switch {
	case r.kind == KindDeferred && r.future != nil:
		return KindDeferred
	case r.kind == KindStreaming && r.stream != nil:
		return KindStreaming
	}
	return KindImmediate
}

// Value returns the immediate value and error.
func (r Result) Value() (any, error) { return r.value, r.err }

// Future returns the deferred future, or nil.
func (r Result) Future() *Future { return r.future }

// Stream returns the item stream, or nil.
func (r Result) Stream() *Stream { return r.stream }

// Future is a single value or error that becomes available later.
// It completes at most once.
type Future struct {
	once  sync.Once
	done  chan struct{}
	value any
	err   error
}

// NewFuture returns an incomplete Future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve completes f with v. It reports whether this call completed f.
func (f *Future) Resolve(v any) bool {
	return f.complete(v, nil)
}

// Reject completes f with err. It reports whether this call completed f.
func (f *Future) Reject(err error) bool {
	return f.complete(nil, err)
}

func (f *Future) complete(v any, err error) bool {
	ok := false
	f.once.Do(func() {
		f.value, f.err = v, err
		ok = true
		close(f.done)
	})
	return ok
}

// Done is closed when f completes.
func (f *Future) Done() <-chan struct{} { return f.done }

// Result returns the value and error of a completed future. Before
// completion it returns nil, nil.
func (f *Future) Result() (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
		return nil, nil
	}
}

// Await blocks until f completes or ctx is done.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Go runs fn in its own goroutine and returns a Future for its result.
// A panic in fn rejects the future with a [PanicError].
func Go(ctx context.Context, fn func(ctx context.Context) (any, error)) *Future {
	f := NewFuture()
	go func() {
		defer func() {
			if p := recover(); p != nil {
				f.Reject(&PanicError{Value: p, Stack: debug.Stack()})
			}
		}()
		v, err := fn(ctx)
		if err != nil {
			f.Reject(err)
			return
		}
		f.Resolve(v)
	}()
	return f
}

// Item is one element of a [Stream]. An item with a non-nil Err is the last
// one delivered.
type Item struct {
	Value any
	Err   error
}

// Stream is an ordered sequence of items. It ends when C is closed.
type Stream struct {
	C <-chan Item
}

// FromChannel wraps c.
func FromChannel(c <-chan Item) *Stream {
	return &Stream{C: c}
}

// FromSlice returns a stream of values that is already complete.
func FromSlice(values ...any) *Stream {
	c := make(chan Item, len(values))
	for _, v := range values {
		c <- Item{Value: v}
	}
	close(c)
	return &Stream{C: c}
}

// Produce runs fn in its own goroutine. Every value passed to emit is
// delivered in order; emit returns false once ctx is done. A non-nil error
// from fn, or a panic, ends the stream with an error item.
func Produce(ctx context.Context, fn func(ctx context.Context, emit func(any) bool) error) *Stream {
	c := make(chan Item)
	send := func(it Item) bool {
		select {
		case c <- it:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(c)
		defer func() {
			if p := recover(); p != nil {
				send(Item{Err: &PanicError{Value: p, Stack: debug.Stack()}})
			}
		}()

		if err := fn(ctx, func(v any) bool { return send(Item{Value: v}) }); err != nil {
			send(Item{Err: err})
		}
	}()

	return &Stream{C: c}
}

// Collect reads s to the end. It returns the values read before an error
// item or ctx cancellation, together with that error.
func (s *Stream) Collect(ctx context.Context) ([]any, error) {
	var values []any
	for {
		select {
		case it, ok := <-s.C:
			if !ok {
				return values, nil
			}
			if it.Err != nil {
				return values, it.Err
			}
			values = append(values, it.Value)
		case <-ctx.Done():
			return values, ctx.Err()
		}
	}
}
