package models

import "time"

type GeneratedPost struct {
	ID                 string    `db:"id" json:"id"`
	BriefID            string    `db:"brief_id" json:"brief_id"`
	Platform           string    `db:"platform" json:"platform"`
	GeneratedText      string    `db:"generated_text" json:"generated_text"`
	GeneratedMediaURLs []string  `db:"generated_media_urls" json:"generated_media_urls"`
	Status             string    `db:"status" json:"status"` // draft, scheduled, published
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// PostWithOwner is a generated post joined through its brief to the brand,
// carrying everything needed to rebuild a copywriting prompt.
type PostWithOwner struct {
	Post  GeneratedPost
	Brief ContentBrief
	Brand Brand
}

const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
)
