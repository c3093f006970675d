package grpc

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
)

// grpcMethod is the method name written to records of gRPC calls.
const grpcMethod = "GRPC"

var traceIDMetadataKey = strings.ToLower(tracelog.TraceIDHeader)

// UnaryServerInterceptor traces unary calls. The handler's response and error
// are returned unchanged; the record holds the response as protojson.
func (h *Handler) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		inv := h.invocation(ctx, info.FullMethod, req)

		var resp any
		res := h.interceptor.Intercept(ctx, inv, func(ctx context.Context, _ *tracelog.Invocation) tracelog.Result {
			if rec, ok := tracelog.RecordFromContext(ctx); ok {
				_ = grpc.SetHeader(ctx, metadata.Pairs(traceIDMetadataKey, rec.TraceID))
			}

			var err error
			resp, err = handler(ctx, req)
			return tracelog.Immediate(messageBody(resp), err)
		})

		_, err := res.Value()
		return resp, err
	}
}

// StreamServerInterceptor traces streaming calls. Every message sent to the
// client is kept as a side copy and the record settles when the handler
// returns.
func (h *Handler) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		inv := h.invocation(ss.Context(), info.FullMethod, nil)

		res := h.interceptor.Intercept(ss.Context(), inv, func(ctx context.Context, _ *tracelog.Invocation) tracelog.Result {
			if rec, ok := tracelog.RecordFromContext(ctx); ok {
				_ = ss.SetHeader(metadata.Pairs(traceIDMetadataKey, rec.TraceID))
			}

			rs := &recordingStream{ServerStream: ss, ctx: ctx, sent: make([]any, 0)}
			err := handler(srv, rs)
			return tracelog.Immediate(rs.sent, err)
		})

		_, err := res.Value()
		return err
	}
}

func (h *Handler) invocation(ctx context.Context, fullMethod string, req any) *tracelog.Invocation {
	inv := &tracelog.Invocation{
		Method:  grpcMethod,
		Path:    fullMethod,
		Handler: handlerName(fullMethod),
		Header:  headerFromMetadata(ctx),
		Args:    []tracelog.Arg{{Name: "ctx", Type: "context.Context", Value: ctx}},
	}
	if req != nil {
		inv.Args = append(inv.Args, tracelog.Arg{Name: "req", Type: fmt.Sprintf("%T", req), Value: messageBody(req)})
	}
	return inv
}

// recordingStream keeps a copy of every message sent to the client.
type recordingStream struct {
	grpc.ServerStream
	ctx  context.Context
	sent []any
}

func (s *recordingStream) Context() context.Context { return s.ctx }

func (s *recordingStream) SendMsg(m any) error {
	if err := s.ServerStream.SendMsg(m); err != nil {
		return err
	}
	s.sent = append(s.sent, messageBody(m))
	return nil
}

// messageBody renders protobuf messages as protojson so that records show
// field names instead of the generated struct layout. Other values are
// returned as they are.
func messageBody(v any) any {
	m, ok := v.(proto.Message)
	if !ok || m == nil {
		return v
	}
	b, err := protojson.Marshal(m)
	if err != nil {
		return v
	}
	return json.RawMessage(b)
}

// headerFromMetadata converts incoming metadata to canonical header names.
func headerFromMetadata(ctx context.Context) http.Header {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}
	h := make(http.Header, len(md))
	for k, values := range md {
		if strings.HasPrefix(k, ":") {
			continue
		}
		for _, v := range values {
			h.Add(k, v)
		}
	}
	return h
}

// handlerName turns "/pkg.Service/Method" into "pkg.Service.Method".
func handlerName(fullMethod string) string {
	return strings.ReplaceAll(strings.TrimPrefix(fullMethod, "/"), "/", ".")
}
