package tracelog

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/MKhiriev/go-trace-keeper/internal/logger"
)

// Channel names of the two sinks.
const (
	ChannelNormal = "CONTROLLER_LOGGER"
	ChannelError  = "CONTROLLER_ERROR_LOGGER"
)

// Observer receives a notification for every emitted record and every
// dropped one.
type Observer interface {
	ObserveTrace(recordType string, d time.Duration)
	ObserveEmitFailure()
}

// entry fixes the field order of a written record.
type entry struct {
	TraceID     string            `json:"traceId"`
	Type        string            `json:"type"`
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Handler     string            `json:"handler,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Params      []Param           `json:"params,omitempty"`
	QueryParams map[string]string `json:"queryParams,omitempty"`
	RequestBody string            `json:"requestBody,omitempty"`
	DurationMs  *int64            `json:"durationMs,omitempty"`
	Status      int               `json:"status,omitempty"`
	Response    string            `json:"response,omitempty"`
	Error       *ErrorInfo        `json:"error,omitempty"`
}

// Emitter writes settled records. ERROR records go to the error sink and
// everything else to the normal sink. A record that cannot be written is
// reported on the fallback logger and dropped.
type Emitter struct {
	normal   *logger.Logger
	errs     *logger.Logger
	fallback *logger.Logger
	observer Observer
	marshal  func(any) ([]byte, error)
}

// EmitterOption configures an [Emitter].
type EmitterOption func(*Emitter)

// WithObserver reports emitted and dropped records to o.
func WithObserver(o Observer) EmitterOption {
	return func(e *Emitter) { e.observer = o }
}

// WithFallback sets the logger that receives emit failures.
func WithFallback(l *logger.Logger) EmitterOption {
	return func(e *Emitter) { e.fallback = l }
}

// NewEmitter returns an Emitter writing to normal and errs.
func NewEmitter(normal, errs *logger.Logger, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		normal:   normal.Channel(ChannelNormal),
		errs:     errs.Channel(ChannelError),
		fallback: normal,
		marshal:  json.Marshal,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit writes the settled record. It never panics and never returns an
// error; failures are logged and counted.
func (e *Emitter) Emit(rec *TraceRecord) {
	out := rec.Outcome()
	d := rec.Duration()
	ms := d.Milliseconds()

	ent := e.entry(rec, out.Type())
	ent.DurationMs = &ms
	ent.Status = out.Status
	if out.Failed() {
		ent.Error = out.Err
	} else {
		ent.Response = out.Response
	}

	if err := e.write(ent, out.Failed()); err != nil {
		e.dropped(rec, err)
		return
	}
	if e.observer != nil {
		e.observer.ObserveTrace(ent.Type, d)
	}
}

// EmitRequest writes the REQUEST announcement of a populated record.
func (e *Emitter) EmitRequest(rec *TraceRecord) {
	if err := e.write(e.entry(rec, TypeRequest), false); err != nil {
		e.dropped(rec, err)
	}
}

func (e *Emitter) entry(rec *TraceRecord, typ string) entry {
	return entry{
		TraceID:     rec.TraceID,
		Type:        typ,
		Method:      rec.Method,
		Path:        rec.Path,
		Handler:     rec.Handler,
		Headers:     rec.Headers,
		Params:      rec.Params,
		QueryParams: rec.QueryParams,
		RequestBody: rec.RequestBody,
	}
}

func (e *Emitter) write(ent entry, failed bool) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: panic: %v", ErrEmitFailure, p)
		}
	}()

	payload, err := e.marshal(ent)
	if err != nil {
		return errors.Join(ErrEmitFailure, err)
	}

	if failed {
		e.errs.Error().Str("type", ent.Type).RawJSON("trace", payload).Send()
		return nil
	}
	e.normal.Info().Str("type", ent.Type).RawJSON("trace", payload).Send()
	return nil
}

func (e *Emitter) dropped(rec *TraceRecord, err error) {
	e.fallback.Warn().
		Err(err).
		Str("trace_id", rec.TraceID).
		Str("path", rec.Path).
		Msg("failed to write trace record")
	if e.observer != nil {
		e.observer.ObserveEmitFailure()
	}
}
