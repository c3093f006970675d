package tracelog

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenReader struct {
	err    error
	closed bool
}

func (r *brokenReader) Read([]byte) (int, error) { return 0, r.err }

func (r *brokenReader) Close() error {
	r.closed = true
	return nil
}

func TestCapture_ReplayIsIdentity(t *testing.T) {
	payloads := [][]byte{
		[]byte("x"),
		[]byte(`{"name":"王五","age":25}`),
		bytes.Repeat([]byte{0, 1, 2, 0xff}, 4096),
	}

	for _, p := range payloads {
		buf, err := Capture(io.NopCloser(bytes.NewReader(p)))
		require.NoError(t, err)

		assert.Equal(t, p, buf.Bytes())
		assert.Equal(t, len(p), buf.Len())

		replayed, err := io.ReadAll(buf.Reader())
		require.NoError(t, err)
		assert.Equal(t, p, replayed)

		again, err := io.ReadAll(buf.Reader())
		require.NoError(t, err)
		assert.Equal(t, p, again, "every reader starts from the beginning")
	}
}

func TestCapture_NoBody(t *testing.T) {
	for _, body := range []io.ReadCloser{nil, http.NoBody} {
		buf, err := Capture(body)
		require.NoError(t, err)
		assert.Empty(t, buf.Bytes())
		assert.Equal(t, http.NoBody, buf.Reader())
	}
}

func TestCapture_ReadFailure(t *testing.T) {
	readErr := errors.New("connection reset")
	src := &brokenReader{err: readErr}

	buf, err := Capture(src)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCaptureFailure)
	assert.ErrorIs(t, err, readErr)
	assert.True(t, src.closed)
	assert.Empty(t, buf.Bytes())

	_, err = io.ReadAll(buf.Reader())
	assert.ErrorIs(t, err, readErr, "the consumer sees the original read error")
	assert.Equal(t, EmptyBody, testSanitizer().SanitizeBody(buf.Bytes()))
}

func TestCapture_Release(t *testing.T) {
	buf, err := Capture(io.NopCloser(strings.NewReader("payload")))
	require.NoError(t, err)

	r := buf.Reader()
	buf.Release()

	assert.Nil(t, buf.Bytes())
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}
