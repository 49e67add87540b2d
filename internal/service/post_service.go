package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maheshrc27/adwola-api/internal/models"
	"github.com/maheshrc27/adwola-api/internal/observability"
	"github.com/maheshrc27/adwola-api/internal/prompts"
	"github.com/maheshrc27/adwola-api/internal/repository"
	"go.opentelemetry.io/otel/attribute"
)

type PostService interface {
	RegeneratePost(ctx context.Context, userID, postID string) (*models.GeneratedPost, error)
}

type postService struct {
	pr   repository.PostRepository
	us   UsageService
	text TextGenerator
	opts GenerationOptions
}

func NewPostService(pr repository.PostRepository, us UsageService, text TextGenerator, opts GenerationOptions) PostService {
	return &postService{
		pr:   pr,
		us:   us,
		text: text,
		opts: opts,
	}
}

// RegeneratePost rewrites the text of an existing post in place. The row is
// only touched by the final update, so any earlier failure leaves it as it was.
func (s *postService) RegeneratePost(ctx context.Context, userID, postID string) (post *models.GeneratedPost, err error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return nil, models.NewValidationError("post_id is required")
	}
	if !isUUID(postID) {
		return nil, models.NewValidationError("post_id must be a valid UUID")
	}

	if err := s.us.EnsureCanGenerate(ctx, userID); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "post.regenerate", attribute.String("post.id", postID))
	defer func() { observability.EndSpan(span, err) }()

	owned, err := s.pr.GetWithOwner(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("fetching post: %w", err)
	}
	if owned == nil {
		return nil, models.NewNotFoundError("Post", postID)
	}
	if owned.Brief.UserID != userID || owned.Brand.UserID != userID {
		slog.WarnContext(ctx, "regeneration attempted on a foreign post", "post_id", postID)
		return nil, models.NewForbiddenError("You do not have permission to regenerate this post")
	}

	strategy := prompts.RegenerationStrategy(owned.Post.Platform)
	text, err := s.text.Complete(ctx, CompletionRequest{
		System:      prompts.CopywritingSystem,
		Prompt:      prompts.CopywritingPrompt(&owned.Brand, &owned.Brief, strategy),
		Model:       s.opts.CopyModel,
		Temperature: RegenerateTemperature,
		MaxTokens:   copyMaxTokens,
		Kind:        "regenerate",
	})
	if err != nil {
		return nil, models.NewUpstreamAIError("copy regeneration failed", err)
	}

	post, err = s.pr.UpdateText(ctx, postID, text)
	if err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post", postID)
	}

	s.us.IncrementUsage(ctx, userID, models.UsageKindPosts, 1)

	return post, nil
}
