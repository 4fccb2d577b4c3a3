package domain

// Trend is a topic detected as gaining attention.
type Trend struct {
	Topic      string  `json:"topic"`
	Confidence float64 `json:"confidence"`
	GrowthRate float64 `json:"growth_rate"`
}

// TrendAnalysis is the result of analysing a single topic.
type TrendAnalysis struct {
	Sentiment            string   `json:"sentiment"`
	EngagementPotential  float64  `json:"engagement_potential"`
	RecommendedPlatforms []string `json:"recommended_platforms"`
}
