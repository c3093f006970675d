package tracelog

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// State is the lifecycle position of a [TraceRecord].
type State int32

const (
	StateCreated State = iota
	StatePopulated
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StatePopulated:
		return "populated"
	case StateSettled:
		return "settled"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Record types written in the "type" field.
const (
	TypeRequest  = "REQUEST"
	TypeResponse = "RESPONSE"
	TypeError    = "ERROR"
)

// Param is one declared argument of the intercepted call after sanitization.
type Param struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// ErrorInfo describes a failed call.
type ErrorInfo struct {
	Message    string   `json:"message"`
	Type       string   `json:"type"`
	StackTrace []string `json:"stackTrace,omitempty"`
}

// Outcome is the terminal result a record is settled with. Exactly one of
// Response and Err is meaningful.
type Outcome struct {
	Status   int
	Response string
	Err      *ErrorInfo
}

// Failed reports whether the outcome is an error.
func (o Outcome) Failed() bool { return o.Err != nil }

// Type returns [TypeError] or [TypeResponse].
func (o Outcome) Type() string {
	if o.Failed() {
		return TypeError
	}
	return TypeResponse
}

// PanicError is the error a recovered panic is settled with.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes a panicked error value.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// NewErrorInfo describes err. With withStack set, StackTrace holds the panic
// stack when err came from a panic, and the chain of wrapped errors otherwise.
func NewErrorInfo(err error, withStack bool) *ErrorInfo {
	if err == nil {
		return nil
	}

	info := &ErrorInfo{
		Message: err.Error(),
		Type:    fmt.Sprintf("%T", err),
	}
	if !withStack {
		return info
	}

	var pe *PanicError
	if errors.As(err, &pe) && len(pe.Stack) > 0 {
		for line := range strings.SplitSeq(strings.TrimSpace(string(pe.Stack)), "\n") {
			info.StackTrace = append(info.StackTrace, strings.TrimSpace(line))
		}
		return info
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		info.StackTrace = append(info.StackTrace, fmt.Sprintf("%T: %v", e, e))
	}
	return info
}

// TraceRecord is the structured description of one intercepted call.
//
// The identity and input fields are written by [Builder.Begin] and read-only
// afterwards. The outcome is written once by [TraceRecord.Settle].
type TraceRecord struct {
	TraceID     string
	Method      string
	Path        string
	Handler     string
	Headers     map[string]string
	QueryParams map[string]string
	Params      []Param
	RequestBody string
	StartTime   time.Time

	state    atomic.Int32
	capture  *CaptureBuffer
	onSettle func(*TraceRecord)

	mu       sync.Mutex
	duration time.Duration
	outcome  Outcome
}

// State returns the current lifecycle state.
func (r *TraceRecord) State() State { return State(r.state.Load()) }

// Settle records the outcome and hands the record to the emitter. Only the
// first call has any effect; every later call returns [ErrAlreadySettled].
func (r *TraceRecord) Settle(o Outcome) error {
	for {
		cur := r.state.Load()
		if State(cur) == StateSettled {
			return ErrAlreadySettled
		}
		if r.state.CompareAndSwap(cur, int32(StateSettled)) {
			break
		}
	}

	d := time.Since(r.StartTime)
	if d < 0 {
		d = 0
	}

	r.mu.Lock()
	r.duration = d
	r.outcome = o
	r.mu.Unlock()

	if r.onSettle != nil {
		r.onSettle(r)
	}
	if r.capture != nil {
		r.capture.Release()
	}
	return nil
}

// Duration returns the elapsed time measured at settlement.
func (r *TraceRecord) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.duration
}

// Outcome returns the settled outcome. It is the zero value before settlement.
func (r *TraceRecord) Outcome() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome
}
