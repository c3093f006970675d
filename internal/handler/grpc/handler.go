package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MKhiriev/go-trace-keeper/internal/logger"
	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
)

// Handler is the root gRPC transport handler.
//
// It owns the interceptors that trace every unary and streaming call and the
// health service registered on the server. A handler instance is created once
// at startup and shared by the gRPC server.
type Handler struct {
	// interceptor builds, settles and emits one record per call.
	interceptor *tracelog.Interceptor

	// health answers grpc.health.v1 Check and Watch.
	health *health.Server

	// logger is used for diagnostic log output.
	logger *logger.Logger
}

// NewHandler constructs a [Handler] whose calls are traced by interceptor.
// The health service starts in the SERVING state.
func NewHandler(interceptor *tracelog.Interceptor, logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return &Handler{
		interceptor: interceptor,
		health:      hs,
		logger:      logger,
	}
}

// ServerOptions returns the interceptor options for [grpc.NewServer].
func (h *Handler) ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(h.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(h.StreamServerInterceptor()),
	}
}

// Register adds the handler's services to s.
func (h *Handler) Register(s grpc.ServiceRegistrar) {
	healthpb.RegisterHealthServer(s, h.health)
}

// Shutdown reports NOT_SERVING to all watchers.
func (h *Handler) Shutdown() {
	h.health.Shutdown()
}
