package domain

import "context"

// CampaignRepository stores campaigns. Implementations return copies, never
// their internal values.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *Campaign) error
	Update(ctx context.Context, id string, update CampaignUpdate) (*Campaign, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Campaign, error)
	List(ctx context.Context) ([]*Campaign, error)
	AttachContent(ctx context.Context, id string, pieces []ContentPiece) error
}
