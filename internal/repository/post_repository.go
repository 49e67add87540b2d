package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/lib/pq"
	"github.com/maheshrc27/adwola-api/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.GeneratedPost) (*models.GeneratedPost, error)
	GetWithOwner(ctx context.Context, id string) (*models.PostWithOwner, error)
	UpdateText(ctx context.Context, id, text string) (*models.GeneratedPost, error)
	GetByBriefID(ctx context.Context, briefID string) ([]*models.GeneratedPost, error)
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, brief_id, platform, generated_text, generated_media_urls, status, created_at, updated_at`

func (r *postRepository) Create(ctx context.Context, post *models.GeneratedPost) (*models.GeneratedPost, error) {
	query := `
		INSERT INTO generated_posts (brief_id, platform, generated_text, generated_media_urls, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + postColumns

	status := post.Status
	if status == "" {
		status = models.PostStatusDraft
	}

	// a nil slice is stored as NULL, not as an empty array
	var mediaURLs any
	if post.GeneratedMediaURLs != nil {
		mediaURLs = pq.Array(post.GeneratedMediaURLs)
	}

	row := r.db.QueryRowContext(ctx, query, post.BriefID, post.Platform, post.GeneratedText, mediaURLs, status)
	created, err := scanPost(row)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return created, nil
}

// GetWithOwner loads a post together with its brief and brand. The lookup is
// not scoped to a user so that callers can tell a foreign post from a missing one.
func (r *postRepository) GetWithOwner(ctx context.Context, id string) (*models.PostWithOwner, error) {
	query := `
		SELECT p.id, p.brief_id, p.platform, p.generated_text, p.generated_media_urls, p.status, p.created_at, p.updated_at,
		       b.id, b.user_id, b.brand_id, b.topic, b.goal, b.cta_text, b.status, b.created_at, b.updated_at,
		       br.id, br.user_id, br.brand_name, br.brand_description, br.tone_of_voice, br.logo_url, br.created_at
		FROM generated_posts p
		JOIN content_briefs b ON b.id = p.brief_id
		JOIN brands br ON br.id = b.brand_id
		WHERE p.id = $1
	`

	var out models.PostWithOwner
	var mediaURLs pq.StringArray
	var logoURL sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&out.Post.ID, &out.Post.BriefID, &out.Post.Platform, &out.Post.GeneratedText, &mediaURLs, &out.Post.Status, &out.Post.CreatedAt, &out.Post.UpdatedAt,
		&out.Brief.ID, &out.Brief.UserID, &out.Brief.BrandID, &out.Brief.Topic, &out.Brief.Goal, &out.Brief.CTAText, &out.Brief.Status, &out.Brief.CreatedAt, &out.Brief.UpdatedAt,
		&out.Brand.ID, &out.Brand.UserID, &out.Brand.BrandName, &out.Brand.BrandDescription, &out.Brand.ToneOfVoice, &logoURL, &out.Brand.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	if mediaURLs != nil {
		out.Post.GeneratedMediaURLs = []string(mediaURLs)
	}
	if logoURL.Valid {
		out.Brand.LogoURL = &logoURL.String
	}

	return &out, nil
}

func (r *postRepository) UpdateText(ctx context.Context, id, text string) (*models.GeneratedPost, error) {
	query := `UPDATE generated_posts SET generated_text = $1, updated_at = NOW() WHERE id = $2 RETURNING ` + postColumns

	updated, err := scanPost(r.db.QueryRowContext(ctx, query, text, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return updated, nil
}

func (r *postRepository) GetByBriefID(ctx context.Context, briefID string) ([]*models.GeneratedPost, error) {
	query := `SELECT ` + postColumns + ` FROM generated_posts WHERE brief_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, briefID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.GeneratedPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*models.GeneratedPost, error) {
	var post models.GeneratedPost
	var mediaURLs pq.StringArray
	err := s.Scan(&post.ID, &post.BriefID, &post.Platform, &post.GeneratedText, &mediaURLs, &post.Status, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if mediaURLs != nil {
		post.GeneratedMediaURLs = []string(mediaURLs)
	}
	return &post, nil
}
