// internal/agent/dispatcher.go
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"marketing-maas/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	stateIdle int32 = iota
	stateRunning
	stateStopped
)

type entry struct {
	id      string
	worker  Worker
	running atomic.Bool
}

func (e *entry) isRunning() bool {
	if r, ok := e.worker.(StatusReporter); ok {
		return r.Running()
	}
	return e.running.Load()
}

// Dispatcher routes messages from any producer to registered workers through a
// single FIFO queue drained by one dispatch loop. Handlers therefore never run
// concurrently, and delivery order is the global enqueue order.
//
// A Dispatcher runs once: StartAll after StopAll returns ErrAlreadyStarted.
type Dispatcher struct {
	logger *slog.Logger
	tracer trace.Tracer

	mu      sync.RWMutex
	workers map[string]*entry
	order   []*entry

	queue *queue
	state atomic.Int32

	// lifecycle serializes StartAll and StopAll.
	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}

	delivered     atomic.Uint64
	undeliverable atomic.Uint64
	failed        atomic.Uint64
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used by the dispatcher.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithTracer sets the tracer used for delivery spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(d *Dispatcher) {
		d.tracer = tracer
	}
}

// New creates an idle dispatcher with no workers.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		logger:  slog.Default(),
		tracer:  otel.Tracer("marketing-maas-dispatcher"),
		workers: make(map[string]*entry),
		queue:   newQueue(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "dispatcher")
	return d
}

// Register binds w to the dispatcher under id. Registering an id twice replaces
// the earlier worker (last write wins) but keeps its original start/stop position.
// A worker registered after StartAll receives messages but is not started by the dispatcher.
func (d *Dispatcher) Register(id string, w Worker) {
	if b, ok := w.(Binder); ok {
		b.Bind(&outbox{dispatcher: d, sender: id})
	}

	e := &entry{id: id, worker: w}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.workers[id]; exists {
		d.logger.Warn("worker id already registered, replacing previous worker", "worker_id", id)
		for i, old := range d.order {
			if old.id == id {
				d.order[i] = e
				break
			}
		}
	} else {
		d.order = append(d.order, e)
	}
	d.workers[id] = e
	metrics.AgentWorkerRunning.WithLabelValues(id).Set(0)
	d.logger.Info("registered worker", "worker_id", id)
}

// StartAll launches the dispatch loop and then starts every worker in
// registration order. It returns once every Start call has returned; worker
// start failures are joined into the returned error and leave that worker
// not running.
func (d *Dispatcher) StartAll(ctx context.Context) error {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()

	if !d.state.CompareAndSwap(stateIdle, stateRunning) {
		return ErrAlreadyStarted
	}
	d.logger.Info("starting dispatcher and all workers")

	// The loop outlives the caller's context; only StopAll ends it.
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel
	go d.loop(loopCtx)

	var errs []error
	started := 0
	for _, e := range d.entries() {
		if err := e.worker.Start(ctx); err != nil {
			d.logger.Error("failed to start worker", "worker_id", e.id, "error", err)
			errs = append(errs, fmt.Errorf("start worker %s: %w", e.id, err))
			continue
		}
		e.running.Store(true)
		metrics.AgentWorkerRunning.WithLabelValues(e.id).Set(1)
		started++
	}

	d.logger.Info("dispatcher started", "workers_started", started)
	return errors.Join(errs...)
}

// StopAll stops the dispatch loop, waits for it to exit (bounded by ctx) and
// then stops every worker in registration order. Messages still queued are
// dropped. StopAll must not be called from inside a Handle call.
func (d *Dispatcher) StopAll(ctx context.Context) error {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()

	if !d.state.CompareAndSwap(stateRunning, stateStopped) {
		return ErrNotStarted
	}
	d.logger.Info("stopping dispatcher and all workers")
	d.cancel()

	var errs []error
	select {
	case <-d.done:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("waiting for dispatch loop: %w", ctx.Err()))
	}

	if dropped := d.queue.drain(); dropped > 0 {
		d.logger.Debug("dropped queued messages on shutdown", "count", dropped)
		metrics.AgentMessagesTotal.WithLabelValues("", metrics.OutcomeDropped).Add(float64(dropped))
	}
	metrics.AgentQueueDepth.Set(0)

	for _, e := range d.entries() {
		if err := e.worker.Stop(ctx); err != nil {
			d.logger.Error("failed to stop worker", "worker_id", e.id, "error", err)
			errs = append(errs, fmt.Errorf("stop worker %s: %w", e.id, err))
		}
		e.running.Store(false)
		metrics.AgentWorkerRunning.WithLabelValues(e.id).Set(0)
	}

	d.logger.Info("dispatcher stopped")
	return errors.Join(errs...)
}

// Send builds a message from sender and enqueues it. See Route.
func (d *Dispatcher) Send(sender, recipient, kind string, payload Payload) error {
	return d.Route(NewMessage(sender, recipient, kind, payload))
}

// Route enqueues msg for delivery and returns without waiting for it.
// Messages routed before StartAll wait in the queue; messages routed after
// StopAll are silently dropped.
func (d *Dispatcher) Route(msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	if d.state.Load() == stateStopped {
		return nil
	}
	d.queue.push(msg)
	metrics.AgentQueueDepth.Inc()
	return nil
}

// Stopped returns a channel that is closed once the dispatch loop has exited.
func (d *Dispatcher) Stopped() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) entries() []*entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]*entry(nil), d.order...)
}

func (d *Dispatcher) lookup(id string) (*entry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.workers[id]
	return e, ok
}

func (d *Dispatcher) loop(ctx context.Context) {
	defer close(d.done)
	d.logger.Debug("dispatch loop started")

	for {
		select {
		case <-ctx.Done():
			d.logger.Debug("dispatch loop exiting")
			return
		default:
		}

		msg, ok := d.queue.pop()
		if !ok {
			select {
			case <-d.queue.notify:
			case <-ctx.Done():
			}
			continue
		}
		metrics.AgentQueueDepth.Dec()
		d.deliver(ctx, msg)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	ctx, span := d.tracer.Start(ctx, "dispatcher.Deliver", trace.WithAttributes(
		attribute.String("message.sender", msg.Sender),
		attribute.String("message.recipient", msg.Recipient),
		attribute.String("message.kind", msg.Kind),
	))
	defer span.End()

	logger := d.logger.With("sender", msg.Sender, "recipient", msg.Recipient, "kind", msg.Kind)

	e, ok := d.lookup(msg.Recipient)
	if !ok {
		d.undeliverable.Add(1)
		metrics.AgentMessagesTotal.WithLabelValues(msg.Kind, metrics.OutcomeUndeliverable).Inc()
		span.SetStatus(codes.Error, "unknown recipient")
		logger.Warn("unknown recipient, dropping message")
		return
	}

	if err := safeHandle(ctx, e.worker, msg); err != nil {
		d.failed.Add(1)
		metrics.AgentMessagesTotal.WithLabelValues(msg.Kind, metrics.OutcomeFailed).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "handler failed")
		logger.Error("error processing message", "error", err)
		return
	}

	d.delivered.Add(1)
	metrics.AgentMessagesTotal.WithLabelValues(msg.Kind, metrics.OutcomeDelivered).Inc()
}

func safeHandle(ctx context.Context, w Worker, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return w.Handle(ctx, msg)
}

// outbox is the Outbox handed to a worker at registration.
type outbox struct {
	dispatcher *Dispatcher
	sender     string
}

func (o *outbox) Send(recipient, kind string, payload Payload) error {
	return o.dispatcher.Send(o.sender, recipient, kind, payload)
}
