package usecase

import (
	"context"
	"log/slog"
	"time"

	"marketing-maas/internal/agent"
	"marketing-maas/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MessageBus is the part of the dispatcher the service talks to.
type MessageBus interface {
	Send(sender, recipient, kind string, payload agent.Payload) error
	Status() agent.Status
}

// CampaignService implements campaign CRUD and kicks off the content pipeline
// for new campaigns.
type CampaignService struct {
	repo        domain.CampaignRepository
	bus         MessageBus
	settleDelay time.Duration
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewCampaignService creates a new CampaignService. settleDelay is how long
// to give the trend detector before asking for content.
func NewCampaignService(repo domain.CampaignRepository, bus MessageBus, settleDelay time.Duration, logger *slog.Logger) *CampaignService {
	return &CampaignService{
		repo:        repo,
		bus:         bus,
		settleDelay: settleDelay,
		logger:      logger.With("component", "campaign-service"),
		tracer:      otel.Tracer("marketing-maas-usecase"),
	}
}

// Create stores a new campaign and starts orchestrating its content.
func (s *CampaignService) Create(ctx context.Context, campaign *domain.Campaign) error {
	ctx, span := s.tracer.Start(ctx, "service.Create")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", campaign.ID))

	if err := campaign.Validate(); err != nil {
		span.RecordError(err)
		return err
	}

	now := time.Now()
	campaign.CreatedAt = now
	campaign.UpdatedAt = now

	if err := s.repo.Create(ctx, campaign); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save campaign to repository")
		return err
	}

	if err := s.orchestrate(campaign); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to start campaign orchestration")
		return err
	}
	return nil
}

// orchestrate asks for fresh trends and, once they have had time to reach the
// content generator, requests the campaign's content.
func (s *CampaignService) orchestrate(campaign *domain.Campaign) error {
	logger := s.logger.With("campaign_id", campaign.ID)
	logger.Info("creating campaign")

	if err := s.bus.Send(agent.DispatcherID, domain.TrendPredictionID, domain.KindGetTrends, agent.Payload{}); err != nil {
		return err
	}

	payload := agent.Payload{
		domain.PayloadCampaignID:      campaign.ID,
		domain.PayloadTargetPlatforms: append([]string(nil), campaign.TargetPlatforms...),
		domain.PayloadObjectives:      append([]string(nil), campaign.Objectives...),
		"name":                        campaign.Name,
		"budget":                      campaign.Budget,
	}
	request := func() {
		if err := s.bus.Send(agent.DispatcherID, domain.ContentGeneratorID, domain.KindGenerateContent, payload); err != nil {
			logger.Error("failed to request content", "error", err)
		}
	}

	if s.settleDelay <= 0 {
		request()
	} else {
		time.AfterFunc(s.settleDelay, request)
	}
	logger.Info("campaign orchestration initiated")
	return nil
}

// Update applies a partial update.
func (s *CampaignService) Update(ctx context.Context, id string, update domain.CampaignUpdate) (*domain.Campaign, error) {
	ctx, span := s.tracer.Start(ctx, "service.Update")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", id))

	c, err := s.repo.Update(ctx, id, update)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update campaign in repository")
	}
	return c, err
}

// Delete removes a campaign.
func (s *CampaignService) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "service.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", id))

	if err := s.repo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete campaign from repository")
		return err
	}
	return nil
}

// Get returns one campaign.
func (s *CampaignService) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	ctx, span := s.tracer.Start(ctx, "service.Get")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", id))

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get campaign from repository")
	}
	return c, err
}

// List returns every campaign.
func (s *CampaignService) List(ctx context.Context) ([]*domain.Campaign, error) {
	ctx, span := s.tracer.Start(ctx, "service.List")
	defer span.End()

	campaigns, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list campaigns from repository")
	}
	return campaigns, err
}

// SystemStatus reports the dispatcher's health.
func (s *CampaignService) SystemStatus(ctx context.Context) agent.Status {
	_, span := s.tracer.Start(ctx, "service.SystemStatus")
	defer span.End()
	return s.bus.Status()
}
