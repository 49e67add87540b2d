package models

import "time"

type Brand struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	BrandName        string    `db:"brand_name" json:"brand_name"`
	BrandDescription string    `db:"brand_description" json:"brand_description"`
	ToneOfVoice      string    `db:"tone_of_voice" json:"tone_of_voice"`
	LogoURL          *string   `db:"logo_url" json:"logo_url"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
