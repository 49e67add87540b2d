package models

import "time"

type ContentBrief struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	BrandID   string    `db:"brand_id" json:"brand_id"`
	Topic     string    `db:"topic" json:"topic"`
	Goal      string    `db:"goal" json:"goal"`
	CTAText   string    `db:"cta_text" json:"cta_text"`
	Status    string    `db:"status" json:"status"` // pending, processing, completed, error
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

const (
	BriefStatusPending    = "pending"
	BriefStatusProcessing = "processing"
	BriefStatusCompleted  = "completed"
	BriefStatusError      = "error"
)

// IsTerminal reports whether the brief can no longer change status.
func (b *ContentBrief) IsTerminal() bool {
	return b.Status == BriefStatusCompleted || b.Status == BriefStatusError
}
