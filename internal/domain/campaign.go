// internal/domain/campaign.go
package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrCampaignNotFound is a sentinel error returned when a campaign does not exist.
	ErrCampaignNotFound = errors.New("campaign not found")
	// ErrCampaignExists is returned when creating a campaign whose ID is already taken.
	ErrCampaignExists = errors.New("campaign already exists")
	// ErrInvalidCampaign wraps every Validate failure.
	ErrInvalidCampaign = errors.New("invalid campaign")
)

// TargetAudience describes who a campaign is aimed at.
type TargetAudience struct {
	AgeRange  []int    `json:"age_range"`
	Interests []string `json:"interests"`
	Location  string   `json:"location,omitempty"`
}

// Campaign is a marketing campaign managed through the API.
type Campaign struct {
	ID              string         `json:"campaign_id"`
	Name            string         `json:"name"`
	TargetPlatforms []string       `json:"target_platforms"`
	StartDate       time.Time      `json:"start_date"`
	EndDate         time.Time      `json:"end_date"`
	Budget          float64        `json:"budget"`
	TargetAudience  TargetAudience `json:"target_audience"`
	Objectives      []string       `json:"objectives"`
	Content         []ContentPiece `json:"content,omitempty"` // Filled in once the content pipeline completes
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// CampaignUpdate carries a partial update. Nil fields are left untouched.
type CampaignUpdate struct {
	Name            *string
	TargetPlatforms []string
	Budget          *float64
	TargetAudience  *TargetAudience
	Objectives      []string
}

// Validate checks if the campaign definition is valid.
func (c *Campaign) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: campaign id cannot be empty", ErrInvalidCampaign)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: campaign name cannot be empty", ErrInvalidCampaign)
	}
	if len(c.TargetPlatforms) == 0 {
		return fmt.Errorf("%w: campaign %s must target at least one platform", ErrInvalidCampaign, c.ID)
	}
	if c.Budget < 0 {
		return fmt.Errorf("%w: campaign budget cannot be negative", ErrInvalidCampaign)
	}
	if !c.EndDate.IsZero() && c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: campaign end date must not be before start date", ErrInvalidCampaign)
	}
	if r := c.TargetAudience.AgeRange; len(r) != 0 && (len(r) != 2 || r[0] > r[1]) {
		return fmt.Errorf("%w: target audience age range must be [min, max]", ErrInvalidCampaign)
	}
	return nil
}

// Apply merges u into c.
func (c *Campaign) Apply(u CampaignUpdate) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.TargetPlatforms != nil {
		c.TargetPlatforms = u.TargetPlatforms
	}
	if u.Budget != nil {
		c.Budget = *u.Budget
	}
	if u.TargetAudience != nil {
		c.TargetAudience = *u.TargetAudience
	}
	if u.Objectives != nil {
		c.Objectives = u.Objectives
	}
}

// Clone returns a deep copy so callers never share slices with the store.
func (c *Campaign) Clone() *Campaign {
	out := *c
	out.TargetPlatforms = append([]string(nil), c.TargetPlatforms...)
	out.Objectives = append([]string(nil), c.Objectives...)
	out.TargetAudience.AgeRange = append([]int(nil), c.TargetAudience.AgeRange...)
	out.TargetAudience.Interests = append([]string(nil), c.TargetAudience.Interests...)
	out.Content = nil
	for _, p := range c.Content {
		out.Content = append(out.Content, p.Clone())
	}
	return &out
}

// CampaignMetrics is the performance summary reported for a campaign.
type CampaignMetrics struct {
	CampaignID        string                     `json:"campaign_id"`
	Metrics           PerformanceMetrics         `json:"metrics"`
	PlatformBreakdown map[string]PlatformMetrics `json:"platform_breakdown"`
}

// PerformanceMetrics are aggregate campaign figures.
type PerformanceMetrics struct {
	Impressions    int     `json:"impressions"`
	Clicks         int     `json:"clicks"`
	Conversions    int     `json:"conversions"`
	CTR            float64 `json:"ctr"`
	ConversionRate float64 `json:"conversion_rate"`
	CostPerClick   float64 `json:"cost_per_click"`
	ROI            float64 `json:"roi"`
}

// PlatformMetrics are the per-platform figures.
type PlatformMetrics struct {
	Impressions    int     `json:"impressions"`
	EngagementRate float64 `json:"engagement_rate"`
}
