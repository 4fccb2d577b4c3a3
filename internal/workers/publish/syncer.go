// internal/workers/publish/syncer.go
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"marketing-maas/internal/agent"
	"marketing-maas/internal/domain"
)

// ContentSink stores generated content against its campaign.
type ContentSink interface {
	AttachContent(ctx context.Context, campaignID string, pieces []domain.ContentPiece) error
}

// Publisher pushes a ready batch to an external system.
type Publisher interface {
	Publish(ctx context.Context, doc any) error
}

// Batch is the document handed to the Publisher.
type Batch struct {
	CampaignID  string                `json:"campaign_id"`
	Content     []domain.ContentPiece `json:"content"`
	PublishedAt time.Time             `json:"published_at"`
}

// Syncer receives finished content and distributes it: it always records the
// content on the campaign and, if a Publisher is set, forwards the batch.
type Syncer struct {
	*agent.BaseWorker

	sink      ContentSink
	publisher Publisher
}

// NewSyncer creates the cross-platform sync worker. publisher may be nil.
func NewSyncer(sink ContentSink, publisher Publisher, logger *slog.Logger) *Syncer {
	return &Syncer{
		BaseWorker: agent.NewBaseWorker(domain.CrossPlatformSyncID, logger),
		sink:       sink,
		publisher:  publisher,
	}
}

func (s *Syncer) Start(ctx context.Context) error {
	if err := s.MarkStarted(); err != nil {
		return err
	}
	s.Logger().Info("started", "publishing", s.publisher != nil)
	return nil
}

func (s *Syncer) Stop(ctx context.Context) error {
	if err := s.MarkStopped(); err != nil {
		return err
	}
	s.Logger().Info("stopped")
	return nil
}

// Handle implements agent.Worker.
func (s *Syncer) Handle(ctx context.Context, msg agent.Message) error {
	if msg.Kind != domain.KindContentReady {
		s.Logger().Debug("ignoring message", "kind", msg.Kind, "sender", msg.Sender)
		return nil
	}

	campaignID := msg.Payload.String(domain.PayloadCampaignID)
	if campaignID == "" {
		return fmt.Errorf("%s: payload has no campaign id", msg.Kind)
	}
	var pieces []domain.ContentPiece
	if err := msg.Payload.Decode(domain.PayloadContent, &pieces); err != nil {
		return fmt.Errorf("%s: %w", msg.Kind, err)
	}

	if err := s.sink.AttachContent(ctx, campaignID, pieces); err != nil {
		return fmt.Errorf("failed to attach content to campaign %s: %w", campaignID, err)
	}
	s.Logger().Info("content attached to campaign", "campaign_id", campaignID, "pieces", len(pieces))

	if s.publisher == nil {
		return nil
	}
	batch := Batch{CampaignID: campaignID, Content: pieces, PublishedAt: time.Now()}
	if err := s.publisher.Publish(ctx, batch); err != nil {
		return fmt.Errorf("failed to publish content for campaign %s: %w", campaignID, err)
	}
	return nil
}
