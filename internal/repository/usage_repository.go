package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/adwola-api/internal/models"
)

// UsageRepository wraps the server-side usage functions. The counter is only
// ever changed through increment_usage, which is atomic in the database.
type UsageRepository interface {
	CheckLimits(ctx context.Context, userID string) (*models.UsageLimits, error)
	Increment(ctx context.Context, userID, kind string, by int) error
}

type usageRepository struct {
	db *sql.DB
}

func NewUsageRepository(db *sql.DB) UsageRepository {
	return &usageRepository{db: db}
}

func (r *usageRepository) CheckLimits(ctx context.Context, userID string) (*models.UsageLimits, error) {
	query := `SELECT posts_remaining, brands_remaining, can_generate_post, can_create_brand FROM check_usage_limits($1)`

	var limits models.UsageLimits
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&limits.PostsRemaining, &limits.BrandsRemaining, &limits.CanGeneratePost, &limits.CanCreateBrand)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &limits, nil
}

func (r *usageRepository) Increment(ctx context.Context, userID, kind string, by int) error {
	query := `SELECT increment_usage($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, userID, kind, by)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
