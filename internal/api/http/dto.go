package http

import (
	"time"

	"marketing-maas/internal/domain"
)

// TargetAudienceRequest is the DTO for a campaign's audience.
type TargetAudienceRequest struct {
	AgeRange  []int    `json:"age_range" validate:"required,age_range"`
	Interests []string `json:"interests" validate:"required,dive,required"`
	Location  string   `json:"location,omitempty"`
}

// CreateCampaignRequest is the Data Transfer Object for creating a campaign.
type CreateCampaignRequest struct {
	CampaignID      string                `json:"campaign_id" validate:"required,min=1,max=128"`
	Name            string                `json:"name" validate:"required,min=1,max=256"`
	TargetPlatforms []string              `json:"target_platforms" validate:"required,min=1,dive,required"`
	StartDate       time.Time             `json:"start_date" validate:"required"`
	EndDate         time.Time             `json:"end_date" validate:"required,gtefield=StartDate"`
	Budget          float64               `json:"budget" validate:"gte=0"`
	TargetAudience  TargetAudienceRequest `json:"target_audience"`
	Objectives      []string              `json:"objectives" validate:"required,dive,required"`
}

// UpdateCampaignRequest is the DTO for PATCH. Absent fields are left unchanged.
type UpdateCampaignRequest struct {
	Name            *string                `json:"name,omitempty" validate:"omitempty,min=1,max=256"`
	TargetPlatforms []string               `json:"target_platforms,omitempty" validate:"omitempty,min=1,dive,required"`
	Budget          *float64               `json:"budget,omitempty" validate:"omitempty,gte=0"`
	TargetAudience  *TargetAudienceRequest `json:"target_audience,omitempty" validate:"omitempty"`
	Objectives      []string               `json:"objectives,omitempty" validate:"omitempty,dive,required"`
}

// MessageResponse is the body of acknowledgement-only responses.
type MessageResponse struct {
	Message    string `json:"message"`
	CampaignID string `json:"campaign_id,omitempty"`
}

// CampaignListResponse wraps the campaign list.
type CampaignListResponse struct {
	Campaigns []*domain.Campaign `json:"campaigns"`
}

func (r TargetAudienceRequest) toDomain() domain.TargetAudience {
	return domain.TargetAudience{
		AgeRange:  append([]int(nil), r.AgeRange...),
		Interests: append([]string(nil), r.Interests...),
		Location:  r.Location,
	}
}

// ToDomainCampaign converts a CreateCampaignRequest DTO to a domain.Campaign object.
func (r *CreateCampaignRequest) ToDomainCampaign() *domain.Campaign {
	return &domain.Campaign{
		ID:              r.CampaignID,
		Name:            r.Name,
		TargetPlatforms: append([]string(nil), r.TargetPlatforms...),
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		Budget:          r.Budget,
		TargetAudience:  r.TargetAudience.toDomain(),
		Objectives:      append([]string(nil), r.Objectives...),
	}
}

// ToDomainUpdate converts an UpdateCampaignRequest DTO to a domain.CampaignUpdate.
func (r *UpdateCampaignRequest) ToDomainUpdate() domain.CampaignUpdate {
	u := domain.CampaignUpdate{
		Name:            r.Name,
		TargetPlatforms: r.TargetPlatforms,
		Budget:          r.Budget,
		Objectives:      r.Objectives,
	}
	if r.TargetAudience != nil {
		ta := r.TargetAudience.toDomain()
		u.TargetAudience = &ta
	}
	return u
}
