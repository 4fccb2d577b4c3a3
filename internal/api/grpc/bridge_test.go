package grpc

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"marketing-maas/internal/agent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type inbox struct {
	*agent.BaseWorker

	mu   sync.Mutex
	msgs []agent.Message
}

func (w *inbox) Start(ctx context.Context) error { return w.MarkStarted() }
func (w *inbox) Stop(ctx context.Context) error  { return w.MarkStopped() }
func (w *inbox) Handle(ctx context.Context, msg agent.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msg)
	return nil
}

func (w *inbox) received() []agent.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]agent.Message(nil), w.msgs...)
}

func newBridge(t *testing.T) (*Client, *inbox) {
	t.Helper()
	ctx := context.Background()

	dispatcher := agent.New()
	w := &inbox{BaseWorker: agent.NewBaseWorker("content_generator", slog.Default())}
	dispatcher.Register("content_generator", w)
	require.NoError(t, dispatcher.StartAll(ctx))
	t.Cleanup(func() { _ = dispatcher.StopAll(ctx) })

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterDispatcherServer(srv, NewServer(dispatcher, slog.Default()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewClient(conn), w
}

func TestBridge_SendRoutesToWorker(t *testing.T) {
	client, w := newBridge(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := client.Send(ctx, "scheduler", "content_generator", "generate_content", agent.Payload{
		"campaign_id":      "c1",
		"target_platforms": []string{"instagram", "tiktok"},
		"budget":           1000,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(w.received()) == 1 }, 2*time.Second, 5*time.Millisecond)
	msg := w.received()[0]
	assert.Equal(t, "scheduler", msg.Sender)
	assert.Equal(t, "generate_content", msg.Kind)
	assert.Equal(t, "c1", msg.Payload.String("campaign_id"))
	assert.Equal(t, []string{"instagram", "tiktok"}, msg.Payload.Strings("target_platforms"))
	budget, ok := msg.Payload.Float("budget")
	assert.True(t, ok)
	assert.Equal(t, 1000.0, budget)
}

func TestBridge_SendDefaultsSender(t *testing.T) {
	client, w := newBridge(t)

	require.NoError(t, client.Send(context.Background(), "", "content_generator", "ping", nil))
	require.Eventually(t, func() bool { return len(w.received()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, DefaultSender, w.received()[0].Sender)
}

func TestBridge_SendRejectsMalformedMessage(t *testing.T) {
	client, _ := newBridge(t)

	err := client.Send(context.Background(), "x", "", "ping", nil)
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestBridge_Status(t *testing.T) {
	client, w := newBridge(t)
	ctx := context.Background()

	require.NoError(t, client.Send(ctx, "x", "content_generator", "ping", nil))
	require.NoError(t, client.Send(ctx, "x", "nobody", "ping", nil))
	require.Eventually(t, func() bool { return len(w.received()) == 1 }, 2*time.Second, 5*time.Millisecond)

	var st agent.Status
	require.Eventually(t, func() bool {
		var err error
		st, err = client.Status(ctx)
		return err == nil && st.Undeliverable == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.True(t, st.Running)
	assert.Equal(t, 1, st.WorkerCount)
	assert.Equal(t, map[string]bool{"content_generator": true}, st.Workers)
	assert.Equal(t, uint64(1), st.Delivered)
}
