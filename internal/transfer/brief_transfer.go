package transfer

import "github.com/maheshrc27/adwola-api/internal/models"

type BriefCreation struct {
	BrandID string `json:"brandId"`
	Topic   string `json:"topic"`
	Goal    string `json:"goal"`
	CTA     string `json:"cta"`
	Async   bool   `json:"async"`
}

type BriefResult struct {
	BriefID        string `json:"brief_id"`
	PostsGenerated int    `json:"posts_generated"`
	Status         string `json:"status"`
}

type BriefDetails struct {
	Brief *models.ContentBrief     `json:"brief"`
	Posts []*models.GeneratedPost `json:"posts"`
}

type RegenerateRequest struct {
	PostID string `json:"post_id"`
}
