package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/adwola-api/internal/models"
)

type BrandRepository interface {
	GetByIDForUser(ctx context.Context, id, userID string) (*models.Brand, error)
}

type brandRepository struct {
	db *sql.DB
}

func NewBrandRepository(db *sql.DB) BrandRepository {
	return &brandRepository{db: db}
}

// GetByIDForUser returns nil, nil when the brand does not exist or belongs to
// someone else, the two cases are indistinguishable to the caller.
func (r *brandRepository) GetByIDForUser(ctx context.Context, id, userID string) (*models.Brand, error) {
	query := `SELECT id, user_id, brand_name, brand_description, tone_of_voice, logo_url, created_at FROM brands WHERE id = $1 AND user_id = $2`
	row := r.db.QueryRowContext(ctx, query, id, userID)

	var brand models.Brand
	var logoURL sql.NullString
	err := row.Scan(&brand.ID, &brand.UserID, &brand.BrandName, &brand.BrandDescription, &brand.ToneOfVoice, &logoURL, &brand.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	if logoURL.Valid {
		brand.LogoURL = &logoURL.String
	}

	return &brand, nil
}
