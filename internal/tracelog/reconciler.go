package tracelog

import (
	"context"
	"net/http"
)

// Response lets a handler report the status and headers of its reply next
// to the body that should be logged.
type Response struct {
	Status int
	Header http.Header
	Body   any
}

// reconciler settles a record from a call's [Result] without changing what
// the caller observes.
type reconciler struct {
	sanitizer *Sanitizer
	withStack bool
}

func (c *reconciler) reconcile(ctx context.Context, rec *TraceRecord, res Result) Result {
	switch res.Kind() {
	case KindDeferred:
		c.watch(ctx, rec, res.Future())
		return res
	case KindStreaming:
		return Streaming(c.forward(ctx, rec, res.Stream()))
	default:
		_ = rec.Settle(c.outcome(res.Value()))
		return res
	}
}

func (c *reconciler) outcome(value any, err error) Outcome {
	if err != nil {
		return c.failure(err)
	}

	switch v := value.(type) {
	case Response:
		return Outcome{Status: v.Status, Response: c.sanitizer.SanitizeResponse(v.Body)}
	case *Response:
		if v != nil {
			return Outcome{Status: v.Status, Response: c.sanitizer.SanitizeResponse(v.Body)}
		}
	}
	return Outcome{Response: c.sanitizer.SanitizeResponse(value)}
}

func (c *reconciler) failure(err error) Outcome {
	return Outcome{Err: NewErrorInfo(err, c.withStack)}
}

// watch settles rec when f completes or ctx is done. A future that is
// already complete when ctx ends is logged with its own result.
func (c *reconciler) watch(ctx context.Context, rec *TraceRecord, f *Future) {
	go func() {
		select {
		case <-f.Done():
		case <-ctx.Done():
			select {
			case <-f.Done():
			default:
				_ = rec.Settle(c.failure(ctx.Err()))
				return
			}
		}
		_ = rec.Settle(c.outcome(f.Result()))
	}()
}

// forward returns a stream delivering the items of src in order. The record
// is settled before the consumer sees the end of the stream.
func (c *reconciler) forward(ctx context.Context, rec *TraceRecord, src *Stream) *Stream {
	out := make(chan Item)

	go func() {
		seen := make([]any, 0)

		cancel := func() {
			_ = rec.Settle(c.failure(ctx.Err()))
			close(out)
			for range src.C {
			}
		}

		for {
			select {
			case it, ok := <-src.C:
				if !ok {
					_ = rec.Settle(c.outcome(seen, nil))
					close(out)
					return
				}
				if it.Err != nil {
					_ = rec.Settle(c.failure(it.Err))
					select {
					case out <- it:
					case <-ctx.Done():
					}
					close(out)
					for range src.C {
					}
					return
				}

				seen = append(seen, it.Value)
				select {
				case out <- it:
				case <-ctx.Done():
					cancel()
					return
				}
			case <-ctx.Done():
				cancel()
				return
			}
		}
	}()

	return &Stream{C: out}
}
