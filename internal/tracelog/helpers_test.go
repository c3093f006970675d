package tracelog

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-trace-keeper/internal/config"
	"github.com/MKhiriev/go-trace-keeper/internal/logger"
)

// lineBuffer is a writer that can be read while goroutines still write to it.
type lineBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lineBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// entries decodes every JSON line written so far.
func (b *lineBuffer) entries(t *testing.T) []map[string]any {
	t.Helper()
	b.mu.Lock()
	raw := append([]byte(nil), b.buf.Bytes()...)
	b.mu.Unlock()

	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(raw), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m), "line: %s", line)
		out = append(out, m)
	}
	return out
}

// traces returns the "trace" objects of all entries.
func (b *lineBuffer) traces(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, e := range b.entries(t) {
		if tr, ok := e["trace"].(map[string]any); ok {
			out = append(out, tr)
		}
	}
	return out
}

type countingObserver struct {
	mu       sync.Mutex
	traces   map[string]int
	failures int
}

func (o *countingObserver) ObserveTrace(recordType string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.traces == nil {
		o.traces = map[string]int{}
	}
	o.traces[recordType]++
}

func (o *countingObserver) ObserveEmitFailure() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures++
}

type harness struct {
	out      *lineBuffer
	errs     *lineBuffer
	fallback *lineBuffer
	observer *countingObserver
	emitter  *Emitter
	ic       *Interceptor
}

// total returns the number of records written to both sinks.
func (h *harness) total(t *testing.T) int {
	return len(h.out.traces(t)) + len(h.errs.traces(t))
}

func newHarness(t *testing.T, mutate func(cfg *config.Logging)) *harness {
	t.Helper()

	cfg := config.Defaults().Logging
	if mutate != nil {
		mutate(&cfg)
	}

	h := &harness{
		out:      &lineBuffer{},
		errs:     &lineBuffer{},
		fallback: &lineBuffer{},
		observer: &countingObserver{},
	}
	h.emitter = NewEmitter(
		logger.NewWriterLogger(h.out, "test"),
		logger.NewWriterLogger(h.errs, "test"),
		WithFallback(logger.NewWriterLogger(h.fallback, "test")),
		WithObserver(h.observer),
	)
	h.ic = NewInterceptor(cfg, h.emitter)
	return h
}

func testSanitizer() *Sanitizer {
	return NewSanitizer(PolicyFromConfig(config.Defaults().Logging))
}
