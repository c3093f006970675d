package tracelog

import "errors"

var (
	// ErrCaptureFailure is joined with the read error when a body cannot be
	// captured. The logged body falls back to [EmptyBody].
	ErrCaptureFailure = errors.New("body capture failed")

	// ErrSerializationFailure marks a value that could not be rendered for
	// logging. It never leaves the package; the value is logged as
	// [SerializationErrorMarker].
	ErrSerializationFailure = errors.New("value serialization failed")

	// ErrAlreadySettled is returned by [TraceRecord.Settle] for every call
	// after the first.
	ErrAlreadySettled = errors.New("trace record already settled")

	// ErrEmitFailure is reported to the fallback logger when a settled
	// record cannot be written. The record is dropped.
	ErrEmitFailure = errors.New("trace record emit failed")
)
