package tracelog

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"sync"
)

// CaptureBuffer holds a one-shot body read into memory so that it can be
// logged and still handed to the real consumer as an unread stream.
type CaptureBuffer struct {
	mu   sync.Mutex
	data []byte
	err  error
}

// Capture reads body to the end and closes it. On failure the buffer is
// empty and the returned error wraps [ErrCaptureFailure]; [CaptureBuffer.Reader]
// then fails with the original read error so the consumer still sees it.
func Capture(body io.ReadCloser) (*CaptureBuffer, error) {
	if body == nil || body == http.NoBody {
		return &CaptureBuffer{}, nil
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return &CaptureBuffer{err: err}, errors.Join(ErrCaptureFailure, err)
	}

	return &CaptureBuffer{data: data}, nil
}

// Bytes returns the captured body. The slice must not be modified.
func (c *CaptureBuffer) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

// Len returns the number of captured bytes.
func (c *CaptureBuffer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Reader returns a fresh stream over the captured bytes.
func (c *CaptureBuffer) Reader() io.ReadCloser {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return &failedBody{err: c.err}
	}
	if len(c.data) == 0 {
		return http.NoBody
	}
	return io.NopCloser(bytes.NewReader(c.data))
}

// Release drops the captured bytes. Readers handed out earlier keep working.
func (c *CaptureBuffer) Release() {
	c.mu.Lock()
	c.data = nil
	c.mu.Unlock()
}

type failedBody struct {
	err error
}

func (b *failedBody) Read([]byte) (int, error) { return 0, b.err }

func (b *failedBody) Close() error { return nil }
