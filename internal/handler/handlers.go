package handler

import (
	nethttp "net/http"

	"github.com/MKhiriev/go-trace-keeper/internal/config"
	"github.com/MKhiriev/go-trace-keeper/internal/handler/grpc"
	"github.com/MKhiriev/go-trace-keeper/internal/handler/http"
	"github.com/MKhiriev/go-trace-keeper/internal/logger"
	"github.com/MKhiriev/go-trace-keeper/internal/service"
	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
)

// Handlers groups the transport handlers enabled by the server config.
type Handlers struct {
	HTTP *http.Handler
	GRPC *grpc.Handler
}

// NewHandlers creates a handler for every configured address. Both share
// interceptor, so HTTP and gRPC records go to the same sinks. metrics may be
// nil.
func NewHandlers(
	services *service.Services,
	interceptor *tracelog.Interceptor,
	metrics nethttp.Handler,
	cfg config.Server,
	logger *logger.Logger,
) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, interceptor, metrics, logger)
	}
	if cfg.GRPCAddress != "" {
		handlers.GRPC = grpc.NewHandler(interceptor, logger)
	}

	if handlers.HTTP == nil && handlers.GRPC == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
