package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validCampaign() *Campaign {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &Campaign{
		ID:              "spring-launch",
		Name:            "Spring Launch",
		TargetPlatforms: []string{"instagram", "tiktok"},
		StartDate:       start,
		EndDate:         start.Add(30 * 24 * time.Hour),
		Budget:          5000,
		TargetAudience:  TargetAudience{AgeRange: []int{18, 34}, Interests: []string{"tech"}},
		Objectives:      []string{"awareness"},
	}
}

func TestCampaign_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Campaign)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Campaign) {}},
		{name: "missing id", mutate: func(c *Campaign) { c.ID = "" }, wantErr: "id"},
		{name: "missing name", mutate: func(c *Campaign) { c.Name = "" }, wantErr: "name"},
		{name: "no platforms", mutate: func(c *Campaign) { c.TargetPlatforms = nil }, wantErr: "platform"},
		{name: "negative budget", mutate: func(c *Campaign) { c.Budget = -1 }, wantErr: "budget"},
		{name: "end before start", mutate: func(c *Campaign) { c.EndDate = c.StartDate.Add(-time.Hour) }, wantErr: "end date"},
		{name: "inverted age range", mutate: func(c *Campaign) { c.TargetAudience.AgeRange = []int{40, 20} }, wantErr: "age range"},
		{name: "single age", mutate: func(c *Campaign) { c.TargetAudience.AgeRange = []int{40} }, wantErr: "age range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCampaign()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.ErrorIs(t, err, ErrInvalidCampaign) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCampaign_Apply(t *testing.T) {
	c := validCampaign()
	name := "Summer Launch"
	budget := 7500.0

	c.Apply(CampaignUpdate{Name: &name, Budget: &budget, Objectives: []string{"sales"}})

	assert.Equal(t, "Summer Launch", c.Name)
	assert.Equal(t, 7500.0, c.Budget)
	assert.Equal(t, []string{"sales"}, c.Objectives)
	assert.Equal(t, []string{"instagram", "tiktok"}, c.TargetPlatforms, "unset fields are untouched")
}

func TestCampaign_CloneIsDeep(t *testing.T) {
	c := validCampaign()
	c.Content = []ContentPiece{{ID: "p1", Hashtags: []string{"#AI"}}}

	clone := c.Clone()
	clone.TargetPlatforms[0] = "linkedin"
	clone.TargetAudience.AgeRange[0] = 99
	clone.Content[0].Hashtags[0] = "#changed"

	assert.Equal(t, "instagram", c.TargetPlatforms[0])
	assert.Equal(t, 18, c.TargetAudience.AgeRange[0])
	assert.Equal(t, "#AI", c.Content[0].Hashtags[0])
}
