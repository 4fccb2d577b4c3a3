// internal/domain/content.go
package domain

// ContentPiece is one generated post for a single platform.
type ContentPiece struct {
	ID           string   `json:"id"`
	Platform     string   `json:"platform"`
	ContentType  string   `json:"content_type"`
	Text         string   `json:"text"`
	MediaURLs    []string `json:"media_urls"`
	Hashtags     []string `json:"hashtags"`
	QualityScore float64  `json:"quality_score"`
}

func (p ContentPiece) Clone() ContentPiece {
	p.MediaURLs = append([]string(nil), p.MediaURLs...)
	p.Hashtags = append([]string(nil), p.Hashtags...)
	return p
}
