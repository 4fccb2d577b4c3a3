// internal/workers/trend/detector.go
package trend

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"marketing-maas/internal/agent"
	"marketing-maas/internal/domain"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// latestTrends is how many trends a trends_update carries.
	latestTrends = 5
	// maxHistory bounds the detected-trend history kept in memory.
	maxHistory = 100
)

// Source produces candidate trends on each monitoring tick.
type Source func(ctx context.Context) []domain.Trend

// Config configures a Detector.
type Config struct {
	PollInterval        time.Duration
	ConfidenceThreshold float64
	DataSources         []string
	Source              Source
}

// Detector watches trend sources on a schedule and pushes updates to the
// content generator.
type Detector struct {
	*agent.BaseWorker

	cfg    Config
	tracer trace.Tracer

	mu     sync.Mutex
	trends []domain.Trend
	cron   *cron.Cron
}

// NewDetector creates a trend detector registered as domain.TrendPredictionID.
func NewDetector(cfg Config, logger *slog.Logger) *Detector {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Minute
	}
	if cfg.ConfidenceThreshold == 0 {
		cfg.ConfidenceThreshold = 0.8
	}
	if len(cfg.DataSources) == 0 {
		cfg.DataSources = []string{"social_media", "news", "analytics"}
	}
	if cfg.Source == nil {
		cfg.Source = SampleSource
	}
	return &Detector{
		BaseWorker: agent.NewBaseWorker(domain.TrendPredictionID, logger),
		cfg:        cfg,
		tracer:     otel.Tracer("marketing-maas-trend-detector"),
	}
}

// Start runs one detection immediately and then schedules one every PollInterval.
func (d *Detector) Start(ctx context.Context) error {
	if err := d.MarkStarted(); err != nil {
		return err
	}

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", d.cfg.PollInterval), d.tick); err != nil {
		_ = d.MarkStopped()
		return fmt.Errorf("failed to schedule trend monitoring: %w", err)
	}
	d.mu.Lock()
	d.cron = c
	d.mu.Unlock()

	d.Logger().Info("started - monitoring trends", "interval", d.cfg.PollInterval, "sources", d.cfg.DataSources)
	d.monitor(ctx)
	c.Start()
	return nil
}

// Stop cancels the schedule and waits for a tick in progress to finish.
func (d *Detector) Stop(ctx context.Context) error {
	if err := d.MarkStopped(); err != nil {
		return err
	}

	d.mu.Lock()
	c := d.cron
	d.cron = nil
	d.mu.Unlock()

	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
			return fmt.Errorf("waiting for trend monitor to stop: %w", ctx.Err())
		}
	}
	d.Logger().Info("stopped")
	return nil
}

// Handle implements agent.Worker.
func (d *Detector) Handle(ctx context.Context, msg agent.Message) error {
	switch msg.Kind {
	case domain.KindGetTrends:
		return d.sendTrendsUpdate()
	case domain.KindAnalyzeTopic:
		topic := msg.Payload.String(domain.PayloadTopic)
		if topic == "" {
			return fmt.Errorf("%s: payload has no topic", msg.Kind)
		}
		analysis := d.analyzeTopic(topic)
		return d.Send(msg.Sender, domain.KindTrendAnalysis, agent.Payload{
			domain.PayloadTopic:     topic,
			domain.PayloadTrendData: analysis,
		})
	default:
		d.Logger().Debug("ignoring message", "kind", msg.Kind, "sender", msg.Sender)
		return nil
	}
}

// Trends returns a copy of every trend detected so far.
func (d *Detector) Trends() []domain.Trend {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Trend(nil), d.trends...)
}

func (d *Detector) tick() {
	d.monitor(context.Background())
}

func (d *Detector) monitor(ctx context.Context) {
	// A tick can race with Stop; once stopped the detector stays quiet.
	if !d.Running() {
		return
	}

	_, span := d.tracer.Start(ctx, "trend.Monitor")
	defer span.End()

	detected := d.detect(ctx)
	span.SetAttributes(attribute.Int("trends.detected", len(detected)))
	if len(detected) == 0 {
		return
	}

	d.mu.Lock()
	d.trends = append(d.trends, detected...)
	if len(d.trends) > maxHistory {
		d.trends = append([]domain.Trend(nil), d.trends[len(d.trends)-maxHistory:]...)
	}
	d.mu.Unlock()

	if err := d.sendTrendsUpdate(); err != nil {
		span.RecordError(err)
		d.Logger().Error("failed to send trends update", "error", err)
	}
}

// detect returns the candidate trends at or above the confidence threshold.
func (d *Detector) detect(ctx context.Context) []domain.Trend {
	var out []domain.Trend
	for _, t := range d.cfg.Source(ctx) {
		if t.Confidence >= d.cfg.ConfidenceThreshold {
			out = append(out, t)
		}
	}
	return out
}

func (d *Detector) sendTrendsUpdate() error {
	d.mu.Lock()
	start := max(len(d.trends)-latestTrends, 0)
	latest := append([]domain.Trend{}, d.trends[start:]...)
	d.mu.Unlock()

	return d.Send(domain.ContentGeneratorID, domain.KindTrendsUpdate, agent.Payload{
		domain.PayloadTrends: latest,
	})
}

var (
	sentiments = []string{"positive", "neutral", "negative"}
	platforms  = []string{"instagram", "tiktok", "linkedin", "twitter"}
)

func (d *Detector) analyzeTopic(topic string) domain.TrendAnalysis {
	picks := rand.Perm(len(platforms))[:2]
	return domain.TrendAnalysis{
		Sentiment:            sentiments[rand.IntN(len(sentiments))],
		EngagementPotential:  0.6 + rand.Float64()*0.35,
		RecommendedPlatforms: []string{platforms[picks[0]], platforms[picks[1]]},
	}
}

// SampleSource is the built-in simulated trend feed.
func SampleSource(ctx context.Context) []domain.Trend {
	return []domain.Trend{
		{Topic: "AI Marketing", Confidence: 0.9, GrowthRate: 0.25},
		{Topic: "Sustainable Products", Confidence: 0.85, GrowthRate: 0.18},
		{Topic: "Remote Work Tools", Confidence: 0.82, GrowthRate: 0.15},
	}
}
