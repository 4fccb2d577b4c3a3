// internal/infra/http/webhook_publisher.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// errServer marks 5xx responses, which are worth retrying.
var errServer = errors.New("webhook returned 5xx server error")

// WebhookConfig configures a WebhookPublisher.
type WebhookConfig struct {
	URL        string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

// WebhookPublisher POSTs JSON documents to a single endpoint.
type WebhookPublisher struct {
	cfg    WebhookConfig
	client *http.Client
	logger *slog.Logger
	tracer trace.Tracer
}

// NewWebhookPublisher creates a publisher for cfg.URL.
func NewWebhookPublisher(cfg WebhookConfig, logger *slog.Logger) *WebhookPublisher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &WebhookPublisher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With("component", "webhook-publisher"),
		tracer: otel.Tracer("marketing-maas-webhook"),
	}
}

// Publish sends doc as JSON and retries timeouts and 5xx responses up to MaxRetries times.
func (p *WebhookPublisher) Publish(ctx context.Context, doc any) error {
	ctx, span := p.tracer.Start(ctx, "webhook.Publish", trace.WithAttributes(attribute.String("http.url", p.cfg.URL)))
	defer span.End()

	body, err := json.Marshal(doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal webhook body")
		return fmt.Errorf("failed to marshal webhook body: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(p.cfg.Backoff):
			case <-ctx.Done():
				return fmt.Errorf("webhook publish cancelled: %w", ctx.Err())
			}
		}

		lastErr = p.doPublish(ctx, body)
		if lastErr == nil {
			return nil
		}

		var netErr net.Error
		if !(errors.As(lastErr, &netErr) && netErr.Timeout()) && !errors.Is(lastErr, errServer) {
			span.RecordError(lastErr)
			span.SetStatus(codes.Error, "non-retriable webhook error")
			return fmt.Errorf("non-retriable error on attempt %d: %w", attempt+1, lastErr)
		}
		p.logger.Warn("webhook attempt failed", "attempt", attempt+1, "error", lastErr)
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "webhook retries exhausted")
	return fmt.Errorf("webhook failed after %d retries: %w", p.cfg.MaxRetries, lastErr)
}

// doPublish performs a single POST.
func (p *WebhookPublisher) doPublish(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: %s", errServer, resp.Status)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned 4xx client error: %s", resp.Status)
	}
	return nil
}
