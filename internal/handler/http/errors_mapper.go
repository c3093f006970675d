package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/MKhiriev/go-trace-keeper/internal/service"
	"github.com/MKhiriev/go-trace-keeper/internal/store"
)

var errorStatusMap = map[error]int{
	ErrInvalidJSON:  http.StatusBadRequest,
	ErrInvalidForm:  http.StatusBadRequest,
	ErrInvalidParam: http.StatusBadRequest,

	service.ErrInvalidDataProvided: http.StatusBadRequest,
	service.ErrInvalidCount:        http.StatusBadRequest,
	service.ErrUserNotFound:        http.StatusNotFound,
	service.ErrLoginTaken:          http.StatusConflict,

	store.ErrLoginAlreadyExists: http.StatusConflict,
	store.ErrNoUserWasFound:     http.StatusNotFound,
	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,

	context.DeadlineExceeded: http.StatusGatewayTimeout,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
