// internal/infra/memory/campaign_repository.go
package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"marketing-maas/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type campaignRepository struct {
	mu        sync.RWMutex
	campaigns map[string]*domain.Campaign
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewCampaignRepository creates an in-memory campaign store. Its contents live
// only as long as the process.
func NewCampaignRepository(logger *slog.Logger) domain.CampaignRepository {
	return &campaignRepository{
		campaigns: make(map[string]*domain.Campaign),
		logger:    logger.With("component", "campaign-repo"),
		tracer:    otel.Tracer("marketing-maas-memory-repo"),
	}
}

func (r *campaignRepository) Create(ctx context.Context, campaign *domain.Campaign) error {
	_, span := r.tracer.Start(ctx, "repo.memory.Create", trace.WithAttributes(attribute.String("campaign.id", campaign.ID)))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.campaigns[campaign.ID]; ok {
		return domain.ErrCampaignExists
	}
	r.campaigns[campaign.ID] = campaign.Clone()
	return nil
}

func (r *campaignRepository) Update(ctx context.Context, id string, update domain.CampaignUpdate) (*domain.Campaign, error) {
	_, span := r.tracer.Start(ctx, "repo.memory.Update", trace.WithAttributes(attribute.String("campaign.id", id)))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.campaigns[id]
	if !ok {
		return nil, domain.ErrCampaignNotFound
	}
	next := current.Clone()
	next.Apply(update)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now()
	r.campaigns[id] = next
	return next.Clone(), nil
}

func (r *campaignRepository) Delete(ctx context.Context, id string) error {
	_, span := r.tracer.Start(ctx, "repo.memory.Delete", trace.WithAttributes(attribute.String("campaign.id", id)))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.campaigns[id]; !ok {
		return domain.ErrCampaignNotFound
	}
	delete(r.campaigns, id)
	return nil
}

func (r *campaignRepository) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	_, span := r.tracer.Start(ctx, "repo.memory.Get", trace.WithAttributes(attribute.String("campaign.id", id)))
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.campaigns[id]
	if !ok {
		return nil, domain.ErrCampaignNotFound
	}
	return c.Clone(), nil
}

// List returns all campaigns ordered by creation time.
func (r *campaignRepository) List(ctx context.Context) ([]*domain.Campaign, error) {
	_, span := r.tracer.Start(ctx, "repo.memory.List")
	defer span.End()

	r.mu.RLock()
	out := make([]*domain.Campaign, 0, len(r.campaigns))
	for _, c := range r.campaigns {
		out = append(out, c.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	span.SetAttributes(attribute.Int("campaign.count", len(out)))
	return out, nil
}

// AttachContent replaces the generated content of a campaign. A campaign that
// was deleted while its content was being generated is reported as not found.
func (r *campaignRepository) AttachContent(ctx context.Context, id string, pieces []domain.ContentPiece) error {
	_, span := r.tracer.Start(ctx, "repo.memory.AttachContent", trace.WithAttributes(
		attribute.String("campaign.id", id),
		attribute.Int("content.count", len(pieces)),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.campaigns[id]
	if !ok {
		r.logger.Warn("content generated for unknown campaign", "campaign_id", id)
		return domain.ErrCampaignNotFound
	}
	c.Content = make([]domain.ContentPiece, len(pieces))
	for i, p := range pieces {
		c.Content[i] = p.Clone()
	}
	c.UpdatedAt = time.Now()
	return nil
}
