package agent

// Status is a point-in-time snapshot of the dispatcher.
type Status struct {
	Running     bool            `json:"running"`
	WorkerCount int             `json:"worker_count"`
	Workers     map[string]bool `json:"workers"`
	QueueDepth  int             `json:"queue_depth"`

	// Aggregate counters since the dispatcher was created.
	Delivered     uint64 `json:"delivered"`
	Undeliverable uint64 `json:"undeliverable"`
	Failed        uint64 `json:"failed"`
}

// Status returns a snapshot of the dispatcher. It never waits on the dispatch loop.
func (d *Dispatcher) Status() Status {
	d.mu.RLock()
	workers := make(map[string]bool, len(d.workers))
	for id, e := range d.workers {
		workers[id] = e.isRunning()
	}
	d.mu.RUnlock()

	return Status{
		Running:       d.state.Load() == stateRunning,
		WorkerCount:   len(workers),
		Workers:       workers,
		QueueDepth:    d.queue.len(),
		Delivered:     d.delivered.Load(),
		Undeliverable: d.undeliverable.Load(),
		Failed:        d.failed.Load(),
	}
}
