package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/MKhiriev/go-trace-keeper/internal/logger"
	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
	"github.com/MKhiriev/go-trace-keeper/models"
)

const maxUploadMemory = 10 << 20

// test1 resolves later with the test service's response.
func (h *Handler) test1(ctx context.Context, _ *tracelog.Invocation) tracelog.Result {
	return tracelog.Deferred(h.services.TestService.ProcessTest(ctx))
}

// test1Web is a plain handler recorded by withTraceLogging.
func (h *Handler) test1Web(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("userid") == "" {
		writeError(w, r, http.StatusBadRequest, "userid is required")
		return
	}
	writeText(w, http.StatusOK, "ok")
}

func (h *Handler) hello(_ context.Context, inv *tracelog.Invocation) tracelog.Result {
	name, _ := stringArg(inv, "name")
	return tracelog.Immediate("Hello, "+name+"!", nil)
}

func (h *Handler) greet(_ context.Context, inv *tracelog.Invocation) tracelog.Result {
	name, ok := stringArg(inv, "name")
	if !ok || name == "" {
		return tracelog.Immediate(nil, fmt.Errorf("%w: name is required", ErrInvalidParam))
	}
	v, _ := inv.Arg("age")
	age, ok := v.(int)
	if !ok {
		return tracelog.Immediate(nil, fmt.Errorf("%w: age must be a number", ErrInvalidParam))
	}
	return tracelog.Immediate(fmt.Sprintf("Hello, %s! You are %d years old.", name, age), nil)
}

func (h *Handler) user(context.Context, *tracelog.Invocation) tracelog.Result {
	return tracelog.Immediate(models.Person{Name: "Zhang San", Email: "zhangsan@example.com", Age: 25}, nil)
}

// form is a plain handler; the filter captured the body, so ParseForm reads
// the replayed copy.
func (h *Handler) form(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		logger.FromRequest(r).Err(err).Msg("form parsing failed")
		writeError(w, r, http.StatusBadRequest, ErrInvalidForm.Error())
		return
	}
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if username == "" || password == "" {
		writeError(w, r, http.StatusBadRequest, ErrInvalidForm.Error())
		return
	}
	writeText(w, http.StatusOK, fmt.Sprintf("Received form: username=%s, password=%s", username, password))
}

func (h *Handler) echoJSON(_ context.Context, inv *tracelog.Invocation) tracelog.Result {
	var person models.Person
	if err := decodeJSON(inv.Body, &person); err != nil {
		return tracelog.Immediate(nil, err)
	}
	person.Name = "[Processed] " + person.Name
	return tracelog.Immediate(person, nil)
}

// upload is a plain handler for multipart bodies.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.FromRequest(r).Err(err).Msg("multipart parsing failed")
		writeError(w, r, http.StatusBadRequest, ErrInvalidForm.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("%s: file is required", ErrInvalidForm))
		return
	}
	defer file.Close()

	writeText(w, http.StatusOK, fmt.Sprintf("Received file: %s (%.2f KB), meta: %s",
		header.Filename, float64(header.Size)/1024.0, r.FormValue("meta")))
}

func (h *Handler) complexRequest(_ context.Context, inv *tracelog.Invocation) tracelog.Result {
	id, _ := stringArg(inv, "id")
	action, _ := stringArg(inv, "action")
	if action == "" {
		return tracelog.Immediate(nil, fmt.Errorf("%w: action is required", ErrInvalidParam))
	}

	var payload map[string]any
	if err := decodeJSON(inv.Body, &payload); err != nil {
		return tracelog.Immediate(nil, err)
	}

	return tracelog.Immediate(models.ComplexResponse{
		ID:        id,
		Action:    action,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}, nil)
}

func (h *Handler) numbers(ctx context.Context, inv *tracelog.Invocation) tracelog.Result {
	v, _ := inv.Arg("n")
	n, ok := v.(int)
	if !ok {
		return tracelog.Immediate(nil, fmt.Errorf("%w: n must be a number", ErrInvalidParam))
	}

	s, err := h.services.TestService.Numbers(ctx, n)
	if err != nil {
		return tracelog.Immediate(nil, err)
	}
	return tracelog.Streaming(s)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "ok"})
}

func stringArg(inv *tracelog.Invocation, name string) (string, bool) {
	v, ok := inv.Arg(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func decodeJSON(body io.Reader, v any) error {
	if body == nil || body == http.NoBody {
		return fmt.Errorf("%w: empty body", ErrInvalidJSON)
	}
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrInvalidJSON)
		}
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return nil
}
