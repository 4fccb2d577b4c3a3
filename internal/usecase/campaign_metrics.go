package usecase

import (
	"context"

	"marketing-maas/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// Simulated per-platform reach. There is no analytics backend behind these numbers.
var platformBaseline = map[string]domain.PlatformMetrics{
	"instagram": {Impressions: 50000, EngagementRate: 4.2},
	"tiktok":    {Impressions: 45000, EngagementRate: 6.1},
	"linkedin":  {Impressions: 30000, EngagementRate: 2.8},
}

var defaultBaseline = domain.PlatformMetrics{Impressions: 20000, EngagementRate: 3.0}

// Metrics reports simulated performance figures for a campaign.
func (s *CampaignService) Metrics(ctx context.Context, id string) (*domain.CampaignMetrics, error) {
	ctx, span := s.tracer.Start(ctx, "service.Metrics")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", id))

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	breakdown := make(map[string]domain.PlatformMetrics, len(c.TargetPlatforms))
	impressions := 0
	for _, platform := range c.TargetPlatforms {
		m, ok := platformBaseline[platform]
		if !ok {
			m = defaultBaseline
		}
		breakdown[platform] = m
		impressions += m.Impressions
	}

	// CTR 2.8%, conversion rate 8% of clicks, $1.25 per click.
	clicks := impressions * 28 / 1000
	conversions := clicks * 8 / 100
	perf := domain.PerformanceMetrics{
		Impressions:  impressions,
		Clicks:       clicks,
		Conversions:  conversions,
		CTR:          2.8,
		CostPerClick: 1.25,
		ROI:          3.2,
	}
	if clicks > 0 {
		perf.ConversionRate = float64(conversions) / float64(clicks) * 100
	}

	return &domain.CampaignMetrics{
		CampaignID:        c.ID,
		Metrics:           perf,
		PlatformBreakdown: breakdown,
	}, nil
}
