package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/MKhiriev/go-trace-keeper/internal/logger"
	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
)

// argFunc extracts one declared argument of an endpoint from the request.
type argFunc func(r *http.Request) tracelog.Arg

// pathArg declares the chi URL parameter name as a string argument.
func pathArg(name string) argFunc {
	return func(r *http.Request) tracelog.Arg {
		return tracelog.Arg{Name: name, Type: "string", Value: chi.URLParam(r, name)}
	}
}

// queryArg declares the first value of query key name as a string argument.
func queryArg(name string) argFunc {
	return func(r *http.Request) tracelog.Arg {
		return tracelog.Arg{Name: name, Type: "string", Value: r.URL.Query().Get(name)}
	}
}

// intQueryArg declares query key name as an int argument with a default.
// A value that is not a number is kept as text so the endpoint can reject it.
func intQueryArg(name string, def int) argFunc {
	return func(r *http.Request) tracelog.Arg {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			return tracelog.Arg{Name: name, Type: "int", Value: def}
		}
		if v, err := strconv.Atoi(raw); err == nil {
			return tracelog.Arg{Name: name, Type: "int", Value: v}
		}
		return tracelog.Arg{Name: name, Type: "string", Value: raw}
	}
}

// endpoint adapts fn to an [http.Handler]. The call is described by an
// invocation built from the request and the declared args, runs through the
// interceptor, and its result is rendered: immediate and deferred values as
// JSON or text, streams as NDJSON flushed per item.
func (h *Handler) endpoint(name string, fn tracelog.HandlerFunc, args ...argFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv := &tracelog.Invocation{
			Method:  r.Method,
			Path:    r.URL.Path,
			Handler: name,
			Header:  r.Header,
			Query:   r.URL.Query(),
			Body:    r.Body,
			Args: []tracelog.Arg{
				{Name: "w", Type: "http.ResponseWriter", Value: w},
				{Name: "r", Type: "*http.Request", Value: r},
			},
		}
		for _, arg := range args {
			inv.Args = append(inv.Args, arg(r))
		}

		res := h.interceptor.Intercept(r.Context(), inv, fn)
		h.render(w, r, res)
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, res tracelog.Result) {
	switch res.Kind() {
	case tracelog.KindDeferred:
		v, err := res.Future().Await(r.Context())
		h.writeResult(w, r, v, err)
	case tracelog.KindStreaming:
		h.writeStream(r.Context(), w, r, res.Stream())
	default:
		v, err := res.Value()
		h.writeResult(w, r, v, err)
	}
}

func (h *Handler) writeResult(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		status := statusFromError(err)
		log := logger.FromRequest(r)
		if status >= http.StatusInternalServerError {
			log.Err(err).Int("status", status).Msg("request failed")
		} else {
			log.Debug().Err(err).Int("status", status).Msg("request rejected")
		}
		writeError(w, r, status, err.Error())
		return
	}

	status := http.StatusOK
	body := v
	switch resp := v.(type) {
	case tracelog.Response:
		status, body = resp.Status, resp.Body
		copyHeader(w.Header(), resp.Header)
	case *tracelog.Response:
		if resp != nil {
			status, body = resp.Status, resp.Body
			copyHeader(w.Header(), resp.Header)
		}
	}
	if status == 0 {
		status = http.StatusOK
	}

	switch b := body.(type) {
	case nil:
		w.WriteHeader(status)
	case string:
		writeText(w, status, b)
	case []byte:
		writeText(w, status, string(b))
	default:
		writeJSON(w, status, b)
	}
}

// writeStream renders items as NDJSON. An error item ends the stream with a
// final {"error": ...} line; a client that goes away ends the loop through
// the request context.
func (h *Handler) writeStream(ctx context.Context, w http.ResponseWriter, r *http.Request, s *tracelog.Stream) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	enc := json.NewEncoder(w)
	for {
		select {
		case it, ok := <-s.C:
			if !ok {
				return
			}
			if it.Err != nil {
				logger.FromRequest(r).Err(it.Err).Msg("stream ended with error")
				_ = enc.Encode(errorBody(r, it.Err.Error()))
				if flusher != nil {
					flusher.Flush()
				}
				return
			}
			if err := enc.Encode(it.Value); err != nil {
				logger.FromRequest(r).Debug().Err(err).Msg("stream write failed")
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		case <-ctx.Done():
			return
		}
	}
}

func copyHeader(dst, src http.Header) {
	for k, values := range src {
		for _, v := range values {
			dst.Add(k, v)
		}
	}
}
