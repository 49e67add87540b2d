package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/adwola-api/internal/models"
)

type BriefRepository interface {
	Create(ctx context.Context, brief *models.ContentBrief) (string, error)
	GetByID(ctx context.Context, id string) (*models.ContentBrief, error)
	GetByIDForUser(ctx context.Context, id, userID string) (*models.ContentBrief, error)
	UpdateStatus(ctx context.Context, id, status string) (bool, error)
	MarkStaleAsError(ctx context.Context, olderThan time.Time) (int64, error)
}

type briefRepository struct {
	db *sql.DB
}

func NewBriefRepository(db *sql.DB) BriefRepository {
	return &briefRepository{db: db}
}

const briefColumns = `id, user_id, brand_id, topic, goal, cta_text, status, created_at, updated_at`

func (r *briefRepository) Create(ctx context.Context, brief *models.ContentBrief) (string, error) {
	query := `
		INSERT INTO content_briefs (user_id, brand_id, topic, goal, cta_text, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id string
	err := r.db.QueryRowContext(ctx, query, brief.UserID, brief.BrandID, brief.Topic, brief.Goal, brief.CTAText, brief.Status).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return id, nil
}

func (r *briefRepository) GetByID(ctx context.Context, id string) (*models.ContentBrief, error) {
	query := `SELECT ` + briefColumns + ` FROM content_briefs WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *briefRepository) GetByIDForUser(ctx context.Context, id, userID string) (*models.ContentBrief, error) {
	query := `SELECT ` + briefColumns + ` FROM content_briefs WHERE id = $1 AND user_id = $2`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, userID))
}

func (r *briefRepository) scanOne(row *sql.Row) (*models.ContentBrief, error) {
	var brief models.ContentBrief
	err := row.Scan(&brief.ID, &brief.UserID, &brief.BrandID, &brief.Topic, &brief.Goal, &brief.CTAText, &brief.Status, &brief.CreatedAt, &brief.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &brief, nil
}

// UpdateStatus settles a brief that is still processing. It reports false
// when the brief had already reached a terminal status.
func (r *briefRepository) UpdateStatus(ctx context.Context, id, status string) (bool, error) {
	query := `UPDATE content_briefs SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	res, err := r.db.ExecContext(ctx, query, status, id, models.BriefStatusProcessing)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return n > 0, nil
}

// MarkStaleAsError closes briefs left in processing by a crashed or
// abandoned run.
func (r *briefRepository) MarkStaleAsError(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `UPDATE content_briefs SET status = $1, updated_at = NOW() WHERE status = $2 AND updated_at < $3`
	res, err := r.db.ExecContext(ctx, query, models.BriefStatusError, models.BriefStatusProcessing, olderThan)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.RowsAffected()
}
