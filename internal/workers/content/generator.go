// internal/workers/content/generator.go
package content

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"marketing-maas/internal/agent"
	"marketing-maas/internal/domain"
	"marketing-maas/internal/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxAttempts bounds how often a piece is regenerated to reach the quality threshold.
const maxAttempts = 3

type template struct {
	contentType string
	text        string
	hashtags    []string
	mediaURLs   []string
}

const defaultPlatform = "instagram"

var templates = map[string]template{
	"instagram": {
		contentType: "image_post",
		text:        "🚀 Discover the future of innovation! #TechTrends #Innovation #FutureReady",
		hashtags:    []string{"#TechTrends", "#Innovation", "#FutureReady"},
		mediaURLs:   []string{"/placeholder.svg?height=400&width=400"},
	},
	"tiktok": {
		contentType: "video",
		text:        "Mind-blowing tech trends you need to know! 🤯",
		hashtags:    []string{"#TechTok", "#Innovation", "#Trending"},
		mediaURLs:   []string{"/placeholder.svg?height=600&width=400"},
	},
	"linkedin": {
		contentType: "article",
		text:        "The latest industry insights show remarkable growth in AI adoption...",
		hashtags:    []string{"#BusinessInnovation", "#AI", "#Leadership"},
		mediaURLs:   []string{"/placeholder.svg?height=300&width=500"},
	},
}

// Config configures a Generator.
type Config struct {
	Models           []string
	QualityThreshold float64
}

// Generator turns campaign requests into platform-specific content, using
// the latest trends it has been told about.
type Generator struct {
	*agent.BaseWorker

	cfg    Config
	tracer trace.Tracer

	mu     sync.RWMutex
	trends []domain.Trend
}

// NewGenerator creates a content generator registered as domain.ContentGeneratorID.
func NewGenerator(cfg Config, logger *slog.Logger) *Generator {
	if len(cfg.Models) == 0 {
		cfg.Models = []string{"gpt-4", "dalle-3"}
	}
	if cfg.QualityThreshold == 0 {
		cfg.QualityThreshold = 0.9
	}
	return &Generator{
		BaseWorker: agent.NewBaseWorker(domain.ContentGeneratorID, logger),
		cfg:        cfg,
		tracer:     otel.Tracer("marketing-maas-content-generator"),
	}
}

func (g *Generator) Start(ctx context.Context) error {
	if err := g.MarkStarted(); err != nil {
		return err
	}
	g.Logger().Info("started - ready to generate content", "models", g.cfg.Models)
	return nil
}

func (g *Generator) Stop(ctx context.Context) error {
	if err := g.MarkStopped(); err != nil {
		return err
	}
	g.Logger().Info("stopped")
	return nil
}

// Handle implements agent.Worker.
func (g *Generator) Handle(ctx context.Context, msg agent.Message) error {
	switch msg.Kind {
	case domain.KindTrendsUpdate:
		var trends []domain.Trend
		if err := msg.Payload.Decode(domain.PayloadTrends, &trends); err != nil {
			return fmt.Errorf("%s: %w", msg.Kind, err)
		}
		g.mu.Lock()
		g.trends = trends
		g.mu.Unlock()
		g.Logger().Info("updated trends", "count", len(trends))
		return nil

	case domain.KindGenerateContent:
		campaignID := msg.Payload.String(domain.PayloadCampaignID)
		if campaignID == "" {
			return fmt.Errorf("%s: payload has no campaign id", msg.Kind)
		}
		pieces := g.GenerateCampaignContent(ctx, campaignID,
			msg.Payload.Strings(domain.PayloadTargetPlatforms),
			msg.Payload.Strings(domain.PayloadObjectives))

		return g.Send(domain.CrossPlatformSyncID, domain.KindContentReady, agent.Payload{
			domain.PayloadCampaignID: campaignID,
			domain.PayloadContent:    pieces,
		})

	default:
		g.Logger().Debug("ignoring message", "kind", msg.Kind, "sender", msg.Sender)
		return nil
	}
}

// Trends returns the trends from the most recent trends_update.
func (g *Generator) Trends() []domain.Trend {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]domain.Trend(nil), g.trends...)
}

// GenerateCampaignContent produces one content piece per platform.
func (g *Generator) GenerateCampaignContent(ctx context.Context, campaignID string, platforms, objectives []string) []domain.ContentPiece {
	_, span := g.tracer.Start(ctx, "content.Generate", trace.WithAttributes(
		attribute.String("campaign.id", campaignID),
		attribute.StringSlice("campaign.platforms", platforms),
	))
	defer span.End()

	trendTag := g.topTrendHashtag()
	pieces := make([]domain.ContentPiece, 0, len(platforms))
	for _, platform := range platforms {
		piece := g.createPlatformContent(platform, trendTag)
		if piece.QualityScore < g.cfg.QualityThreshold {
			span.AddEvent("below_quality_threshold", trace.WithAttributes(attribute.String("platform", platform)))
		}
		pieces = append(pieces, piece)
		metrics.ContentPiecesTotal.WithLabelValues(piece.Platform).Inc()
	}

	if len(pieces) == 0 {
		span.SetStatus(codes.Error, "no target platforms")
	}
	g.Logger().Info("generated content", "campaign_id", campaignID, "pieces", len(pieces), "objectives", objectives)
	return pieces
}

// createPlatformContent fills the platform template, retrying the simulated
// generation up to maxAttempts times to reach the quality threshold.
func (g *Generator) createPlatformContent(platform, trendTag string) domain.ContentPiece {
	tpl, ok := templates[platform]
	if !ok {
		tpl = templates[defaultPlatform]
	}

	score := 0.0
	for attempt := 0; attempt < maxAttempts && score < g.cfg.QualityThreshold; attempt++ {
		score = max(score, 0.85+rand.Float64()*0.13)
	}

	hashtags := append([]string(nil), tpl.hashtags...)
	if trendTag != "" {
		hashtags = append(hashtags, trendTag)
	}

	return domain.ContentPiece{
		ID:           uuid.NewString(),
		Platform:     platform,
		ContentType:  tpl.contentType,
		Text:         tpl.text,
		MediaURLs:    append([]string(nil), tpl.mediaURLs...),
		Hashtags:     hashtags,
		QualityScore: score,
	}
}

// topTrendHashtag turns the most confident known trend into a hashtag.
func (g *Generator) topTrendHashtag() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var best *domain.Trend
	for i := range g.trends {
		if best == nil || g.trends[i].Confidence > best.Confidence {
			best = &g.trends[i]
		}
	}
	if best == nil {
		return ""
	}
	return "#" + strings.ReplaceAll(best.Topic, " ", "")
}
