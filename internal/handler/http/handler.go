package http

import (
	"net/http"

	"github.com/MKhiriev/go-trace-keeper/internal/logger"
	"github.com/MKhiriev/go-trace-keeper/internal/service"
	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
)

type Handler struct {
	services    *service.Services
	interceptor *tracelog.Interceptor
	metrics     http.Handler

	logger *logger.Logger
}

// NewHandler creates the HTTP handler. metrics may be nil, in which case
// /metrics is not routed.
func NewHandler(services *service.Services, interceptor *tracelog.Interceptor, metrics http.Handler, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:    services,
		interceptor: interceptor,
		metrics:     metrics,
		logger:      logger,
	}
}
