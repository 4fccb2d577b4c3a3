// internal/agent/worker.go
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Worker is an independently implemented participant that receives messages
// from a Dispatcher.
//
// Handle is only ever called from the dispatch loop, one message at a time.
// It must return promptly: a handler that blocks stalls delivery to every
// other worker. Start may spawn background work, which must end once Stop
// returns.
type Worker interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Handle(ctx context.Context, msg Message) error
}

// Outbox is the only capability a worker gets from the dispatcher. Send
// stamps the sender and timestamp and enqueues the message.
type Outbox interface {
	Send(recipient, kind string, payload Payload) error
}

// Binder is implemented by workers that want to emit messages. Register calls
// Bind with an Outbox whose sender is the worker's registered identifier.
type Binder interface {
	Bind(outbox Outbox)
}

// StatusReporter is implemented by workers that report their own lifecycle
// state. Status prefers it over the state tracked by the dispatcher.
type StatusReporter interface {
	Running() bool
}

// BaseWorker carries the plumbing shared by concrete workers: identifier,
// outbox, logger and the running flag. Embed it by pointer.
type BaseWorker struct {
	id      string
	outbox  atomic.Pointer[Outbox]
	running atomic.Bool
	logger  *slog.Logger
}

// NewBaseWorker creates the shared worker state for id.
func NewBaseWorker(id string, logger *slog.Logger) *BaseWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaseWorker{
		id:     id,
		logger: logger.With("worker_id", id),
	}
}

// ID returns the identifier the worker registers under.
func (b *BaseWorker) ID() string {
	return b.id
}

// Bind implements Binder.
func (b *BaseWorker) Bind(outbox Outbox) {
	b.outbox.Store(&outbox)
}

// Send emits a message through the bound outbox.
func (b *BaseWorker) Send(recipient, kind string, payload Payload) error {
	outbox := b.outbox.Load()
	if outbox == nil {
		return fmt.Errorf("worker %s is not registered with a dispatcher", b.id)
	}
	return (*outbox).Send(recipient, kind, payload)
}

// MarkStarted flips the running flag on, failing if it was already on.
func (b *BaseWorker) MarkStarted() error {
	if !b.running.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, b.id)
	}
	return nil
}

// MarkStopped flips the running flag off, failing if it was already off.
func (b *BaseWorker) MarkStopped() error {
	if !b.running.CompareAndSwap(true, false) {
		return fmt.Errorf("%w: %s", ErrNotRunning, b.id)
	}
	return nil
}

// Running implements StatusReporter.
func (b *BaseWorker) Running() bool {
	return b.running.Load()
}

// Logger returns a logger tagged with the worker id.
func (b *BaseWorker) Logger() *slog.Logger {
	return b.logger
}
