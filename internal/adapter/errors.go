package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("bad request")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInternalServerError = errors.New("internal server error")
	ErrGatewayTimeout      = errors.New("gateway timeout")
	ErrServerUnavailable   = errors.New("server unavailable")
	ErrInvalidResponse     = errors.New("invalid server response")
)
