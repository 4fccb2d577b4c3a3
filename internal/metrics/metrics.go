// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for AgentMessagesTotal.
const (
	OutcomeDelivered     = "delivered"
	OutcomeFailed        = "failed"
	OutcomeUndeliverable = "undeliverable"
	OutcomeDropped       = "dropped"
)

var (
	// HttpRequestsTotal counts HTTP requests by route, method and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of http requests handled by the service.",
		},
		[]string{"path", "method", "code"},
	)

	// AgentMessagesTotal counts messages leaving the dispatch queue, by kind and outcome.
	AgentMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_messages_total",
			Help: "Total number of agent messages processed by the dispatcher.",
		},
		[]string{"kind", "outcome"},
	)

	// AgentQueueDepth is the number of messages waiting in the dispatch queue.
	AgentQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agent_queue_depth",
			Help: "Number of messages waiting in the dispatcher queue.",
		},
	)

	// AgentWorkerRunning is 1 while a registered worker is running, 0 otherwise.
	AgentWorkerRunning = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agent_worker_running",
			Help: "Whether a registered worker is running. 1 if running, 0 otherwise.",
		},
		[]string{"worker_id"},
	)

	// ContentPiecesTotal counts generated content pieces by platform.
	ContentPiecesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_pieces_generated_total",
			Help: "Total number of content pieces generated, by platform.",
		},
		[]string{"platform"},
	)
)
