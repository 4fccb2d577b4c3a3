package memory

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"marketing-maas/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCampaign(id string, created time.Time) *domain.Campaign {
	return &domain.Campaign{
		ID:              id,
		Name:            "Campaign " + id,
		TargetPlatforms: []string{"instagram"},
		Budget:          100,
		CreatedAt:       created,
	}
}

func TestCampaignRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewCampaignRepository(slog.Default())

	c := newCampaign("c1", time.Now())
	require.NoError(t, repo.Create(ctx, c))
	assert.ErrorIs(t, repo.Create(ctx, c), domain.ErrCampaignExists)

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Campaign c1", got.Name)

	// Returned values are copies.
	got.TargetPlatforms[0] = "tiktok"
	again, _ := repo.Get(ctx, "c1")
	assert.Equal(t, "instagram", again.TargetPlatforms[0])

	name := "Renamed"
	updated, err := repo.Update(ctx, "c1", domain.CampaignUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.False(t, updated.UpdatedAt.IsZero())

	require.NoError(t, repo.Delete(ctx, "c1"))
	_, err = repo.Get(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrCampaignNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "c1"), domain.ErrCampaignNotFound)
}

func TestCampaignRepository_UpdateRejectsInvalidResult(t *testing.T) {
	ctx := context.Background()
	repo := NewCampaignRepository(slog.Default())
	require.NoError(t, repo.Create(ctx, newCampaign("c1", time.Now())))

	budget := -10.0
	_, err := repo.Update(ctx, "c1", domain.CampaignUpdate{Budget: &budget})
	assert.ErrorIs(t, err, domain.ErrInvalidCampaign)

	got, _ := repo.Get(ctx, "c1")
	assert.Equal(t, 100.0, got.Budget)

	_, err = repo.Update(ctx, "missing", domain.CampaignUpdate{})
	assert.ErrorIs(t, err, domain.ErrCampaignNotFound)
}

func TestCampaignRepository_ListOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	repo := NewCampaignRepository(slog.Default())
	now := time.Now()
	require.NoError(t, repo.Create(ctx, newCampaign("late", now.Add(time.Minute))))
	require.NoError(t, repo.Create(ctx, newCampaign("early", now)))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "early", list[0].ID)
	assert.Equal(t, "late", list[1].ID)
}

func TestCampaignRepository_AttachContent(t *testing.T) {
	ctx := context.Background()
	repo := NewCampaignRepository(slog.Default())
	require.NoError(t, repo.Create(ctx, newCampaign("c1", time.Now())))

	pieces := []domain.ContentPiece{{ID: "p1", Platform: "instagram", Hashtags: []string{"#AI"}}}
	require.NoError(t, repo.AttachContent(ctx, "c1", pieces))
	pieces[0].Hashtags[0] = "#mutated"

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got.Content, 1)
	assert.Equal(t, "#AI", got.Content[0].Hashtags[0])

	assert.ErrorIs(t, repo.AttachContent(ctx, "missing", pieces), domain.ErrCampaignNotFound)
}
