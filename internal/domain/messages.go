// internal/domain/messages.go
package domain

// Registered worker identifiers.
const (
	TrendPredictionID   = "trend_prediction"
	ContentGeneratorID  = "content_generator"
	CrossPlatformSyncID = "cross_platform_sync"
)

// Message kinds exchanged between workers, and the payload keys each one uses.
const (
	// KindGetTrends asks the trend detector to publish its latest trends. Empty payload.
	KindGetTrends = "get_trends"
	// KindTrendsUpdate carries PayloadTrends ([]Trend) to the content generator.
	KindTrendsUpdate = "trends_update"
	// KindAnalyzeTopic carries PayloadTopic; the reply goes back to the sender.
	KindAnalyzeTopic = "analyze_topic"
	// KindTrendAnalysis carries PayloadTopic and PayloadTrendData (TrendAnalysis).
	KindTrendAnalysis = "trend_analysis"
	// KindGenerateContent carries PayloadCampaignID, PayloadTargetPlatforms and PayloadObjectives.
	KindGenerateContent = "generate_content"
	// KindContentReady carries PayloadCampaignID and PayloadContent ([]ContentPiece).
	KindContentReady = "content_ready"
)

const (
	PayloadTrends          = "trends"
	PayloadTopic           = "topic"
	PayloadTrendData       = "trend_data"
	PayloadCampaignID      = "campaign_id"
	PayloadTargetPlatforms = "target_platforms"
	PayloadObjectives      = "objectives"
	PayloadContent         = "content"
)
