// internal/api/grpc/client.go
package grpc

import (
	"context"
	"encoding/json"
	"fmt"

	"marketing-maas/internal/agent"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client talks to a remote Dispatcher service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an existing connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Dial opens an instrumented, plaintext connection to addr.
func Dial(addr string) (*Client, *grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		// Add OpenTelemetry Stats Handler for automatic trace propagation.
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to dispatcher at %s: %w", addr, err)
	}
	return NewClient(conn), conn, nil
}

// Send enqueues a message on the remote dispatcher. The payload crosses the
// wire as JSON, so the receiver sees numbers as float64 and lists as []any.
func (c *Client) Send(ctx context.Context, sender, recipient, kind string, payload agent.Payload) error {
	p := &structpb.Struct{}
	if len(payload) > 0 {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}
		if err := protojson.Unmarshal(b, p); err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}
	}
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldSender:    structpb.NewStringValue(sender),
		FieldRecipient: structpb.NewStringValue(recipient),
		FieldKind:      structpb.NewStringValue(kind),
		FieldPayload:   structpb.NewStructValue(p),
	}}
	return c.cc.Invoke(ctx, sendMethod, req, new(emptypb.Empty))
}

// Status fetches the remote dispatcher status.
func (c *Client) Status(ctx context.Context) (agent.Status, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, statusMethod, new(emptypb.Empty), out); err != nil {
		return agent.Status{}, err
	}

	var st agent.Status
	b, err := protojson.Marshal(out)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(b, &st); err != nil {
		return st, fmt.Errorf("failed to decode status: %w", err)
	}
	return st, nil
}
