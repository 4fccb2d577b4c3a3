// internal/api/grpc/server.go
package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"marketing-maas/internal/agent"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// DefaultSender is stamped on bridged messages that do not name a sender.
const DefaultSender = "grpc_bridge"

// Router is the part of the dispatcher the bridge needs.
type Router interface {
	Route(msg agent.Message) error
	Status() agent.Status
}

// Server implements DispatcherServer on top of a local dispatcher.
type Server struct {
	router Router
	logger *slog.Logger
	tracer trace.Tracer
}

// NewServer creates a new gRPC bridge server.
func NewServer(router Router, logger *slog.Logger) *Server {
	return &Server{
		router: router,
		logger: logger.With("component", "grpc-bridge"),
		tracer: otel.Tracer("marketing-maas-bridge"),
	}
}

// Send enqueues the message described by req.
func (s *Server) Send(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	_, span := s.tracer.Start(ctx, "bridge.Send")
	defer span.End()

	msg := requestToMessage(req)
	span.SetAttributes(
		attribute.String("message.sender", msg.Sender),
		attribute.String("message.recipient", msg.Recipient),
		attribute.String("message.kind", msg.Kind),
	)

	if err := s.router.Route(msg); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "route failed")
		if errors.Is(err, agent.ErrInvalidMessage) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		s.logger.Error("failed to route bridged message", "error", err)
		return nil, status.Error(codes.Internal, err.Error())
	}
	s.logger.Debug("bridged message", "sender", msg.Sender, "recipient", msg.Recipient, "kind", msg.Kind)
	return &emptypb.Empty{}, nil
}

// Status returns the dispatcher status as a Struct with the same fields as
// the HTTP status endpoint.
func (s *Server) Status(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	_, span := s.tracer.Start(ctx, "bridge.Status")
	defer span.End()

	b, err := json.Marshal(s.router.Status())
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func requestToMessage(req *structpb.Struct) agent.Message {
	fields := req.GetFields()
	sender := fields[FieldSender].GetStringValue()
	if sender == "" {
		sender = DefaultSender
	}

	var payload agent.Payload
	if p := fields[FieldPayload].GetStructValue(); p != nil {
		payload = p.AsMap()
	}
	return agent.NewMessage(sender, fields[FieldRecipient].GetStringValue(), fields[FieldKind].GetStringValue(), payload)
}
