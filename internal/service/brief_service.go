package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/adwola-api/internal/models"
	"github.com/maheshrc27/adwola-api/internal/observability"
	"github.com/maheshrc27/adwola-api/internal/prompts"
	"github.com/maheshrc27/adwola-api/internal/repository"
	"github.com/maheshrc27/adwola-api/internal/transfer"
	"github.com/maheshrc27/adwola-api/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// BatchSize caps how many posts are generated at once.
	BatchSize = 3

	StrategyTemperature   = 0.8
	CopyTemperature       = 0.7
	RegenerateTemperature = 0.9

	strategyMaxTokens = 1500
	copyMaxTokens     = 1000

	finalizeTimeout = 10 * time.Second
)

// BriefEnqueuer hands a created brief to the background worker.
type BriefEnqueuer interface {
	EnqueueBriefGeneration(ctx context.Context, briefID string) error
}

// AIClients groups the outbound generation dependencies. Image and Storage
// may be nil, in which case image+caption posts are saved as text only.
type AIClients struct {
	Text    TextGenerator
	Image   ImageGenerator
	Storage Storage
}

type GenerationOptions struct {
	StrategyModel string
	CopyModel     string
}

type BriefService interface {
	CreateBrief(ctx context.Context, userID string, bc *transfer.BriefCreation, idempotencyKey string) (*transfer.BriefResult, error)
	RunBrief(ctx context.Context, briefID string) (*transfer.BriefResult, error)
	GetBrief(ctx context.Context, userID, briefID string) (*transfer.BriefDetails, error)
}

type briefService struct {
	br    repository.BriefRepository
	brr   repository.BrandRepository
	pr    repository.PostRepository
	us    UsageService
	ai    AIClients
	idem  IdempotencyStore
	queue BriefEnqueuer
	opts  GenerationOptions
}

func NewBriefService(
	br repository.BriefRepository,
	brr repository.BrandRepository,
	pr repository.PostRepository,
	us UsageService,
	ai AIClients,
	idem IdempotencyStore,
	queue BriefEnqueuer,
	opts GenerationOptions) BriefService {
	return &briefService{
		br:    br,
		brr:   brr,
		pr:    pr,
		us:    us,
		ai:    ai,
		idem:  idem,
		queue: queue,
		opts:  opts,
	}
}

func (s *briefService) CreateBrief(ctx context.Context, userID string, bc *transfer.BriefCreation, idempotencyKey string) (*transfer.BriefResult, error) {
	if bc == nil {
		return nil, models.NewValidationError("request body is required")
	}
	bc.BrandID = strings.TrimSpace(bc.BrandID)
	bc.Topic = strings.TrimSpace(bc.Topic)
	if bc.BrandID == "" || bc.Topic == "" {
		return nil, models.NewValidationError("brandId and topic are required")
	}
	if !isUUID(bc.BrandID) {
		return nil, models.NewValidationError("brandId must be a valid UUID")
	}

	var err error
	reserved := false
	if idempotencyKey != "" && s.idem != nil {
		var existing string
		existing, reserved, err = s.idem.Reserve(ctx, userID, idempotencyKey)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "idempotency store unavailable, continuing without it", "error", err)
			reserved = false
		case !reserved && existing == "":
			return nil, &models.AppError{Code: models.CodeConflict, Message: "a request with this Idempotency-Key is already in progress"}
		case !reserved:
			return s.replay(ctx, userID, existing)
		}
	}

	brief, brand, err := s.createBriefRecord(ctx, userID, bc)
	if reserved {
		if err != nil {
			if rerr := s.idem.Release(ctx, userID, idempotencyKey); rerr != nil {
				slog.WarnContext(ctx, "failed to release idempotency key", "error", rerr)
			}
		} else if cerr := s.idem.Complete(ctx, userID, idempotencyKey, brief.ID); cerr != nil {
			slog.WarnContext(ctx, "failed to store idempotency key", "error", cerr)
		}
	}
	if err != nil {
		return nil, err
	}

	ctx = observability.WithBriefID(ctx, brief.ID)

	if bc.Async && s.queue != nil {
		if err := s.queue.EnqueueBriefGeneration(ctx, brief.ID); err != nil {
			s.failBrief(ctx, brief.ID)
			return nil, fmt.Errorf("enqueueing brief generation: %w", err)
		}
		slog.InfoContext(ctx, "brief queued for generation")
		return &transfer.BriefResult{BriefID: brief.ID, Status: models.BriefStatusProcessing}, nil
	}

	return s.generate(ctx, brief, brand)
}

// createBriefRecord runs the quota gate and brand lookup, then inserts the
// brief in processing state.
func (s *briefService) createBriefRecord(ctx context.Context, userID string, bc *transfer.BriefCreation) (*models.ContentBrief, *models.Brand, error) {
	if err := s.us.EnsureCanGenerate(ctx, userID); err != nil {
		return nil, nil, err
	}

	brand, err := s.brr.GetByIDForUser(ctx, bc.BrandID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching brand: %w", err)
	}
	if brand == nil {
		return nil, nil, models.NewNotFoundError("Brand", bc.BrandID)
	}

	brief := &models.ContentBrief{
		UserID:  userID,
		BrandID: brand.ID,
		Topic:   bc.Topic,
		Goal:    strings.TrimSpace(bc.Goal),
		CTAText: strings.TrimSpace(bc.CTA),
		Status:  models.BriefStatusProcessing,
	}
	brief.ID, err = s.br.Create(ctx, brief)
	if err != nil {
		return nil, nil, fmt.Errorf("creating brief: %w", err)
	}

	return brief, brand, nil
}

// replay answers a retried request with the current state of the brief the
// first attempt created. A brief that is still processing is reported as
// such, and one that ended in error is reported as a failure.
func (s *briefService) replay(ctx context.Context, userID, briefID string) (*transfer.BriefResult, error) {
	brief, err := s.br.GetByIDForUser(ctx, briefID, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching brief: %w", err)
	}
	if brief == nil {
		return nil, models.NewNotFoundError("Brief", briefID)
	}

	posts, err := s.pr.GetByBriefID(ctx, briefID)
	if err != nil {
		return nil, fmt.Errorf("fetching posts: %w", err)
	}

	slog.InfoContext(ctx, "replaying brief for idempotency key", "brief_id", briefID, "status", brief.Status)
	if brief.Status == models.BriefStatusError {
		return nil, models.NewBriefFailedError(brief.ID, len(posts))
	}
	return &transfer.BriefResult{BriefID: brief.ID, PostsGenerated: len(posts), Status: brief.Status}, nil
}

// RunBrief generates the posts of a brief created in async mode.
func (s *briefService) RunBrief(ctx context.Context, briefID string) (*transfer.BriefResult, error) {
	ctx = observability.WithBriefID(ctx, briefID)

	brief, err := s.br.GetByID(ctx, briefID)
	if err != nil {
		return nil, fmt.Errorf("fetching brief: %w", err)
	}
	if brief == nil {
		return nil, models.NewNotFoundError("Brief", briefID)
	}
	if brief.Status != models.BriefStatusProcessing {
		slog.InfoContext(ctx, "brief already settled, skipping", "status", brief.Status)
		return &transfer.BriefResult{BriefID: brief.ID, Status: brief.Status}, nil
	}

	ctx = observability.WithUserID(ctx, brief.UserID)

	brand, err := s.brr.GetByIDForUser(ctx, brief.BrandID, brief.UserID)
	if err != nil {
		s.failBrief(ctx, briefID)
		return nil, fmt.Errorf("fetching brand: %w", err)
	}
	if brand == nil {
		s.failBrief(ctx, briefID)
		return nil, models.NewNotFoundError("Brand", brief.BrandID)
	}

	return s.generate(ctx, brief, brand)
}

func (s *briefService) GetBrief(ctx context.Context, userID, briefID string) (*transfer.BriefDetails, error) {
	if !isUUID(briefID) {
		return nil, models.NewValidationError("brief id must be a valid UUID")
	}

	brief, err := s.br.GetByIDForUser(ctx, briefID, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching brief: %w", err)
	}
	if brief == nil {
		return nil, models.NewNotFoundError("Brief", briefID)
	}

	posts, err := s.pr.GetByBriefID(ctx, briefID)
	if err != nil {
		return nil, fmt.Errorf("fetching posts: %w", err)
	}
	if posts == nil {
		posts = []*models.GeneratedPost{}
	}

	return &transfer.BriefDetails{Brief: brief, Posts: posts}, nil
}

// generate runs the strategy step and the batched post generation for a
// brief in processing state, then settles the brief.
func (s *briefService) generate(ctx context.Context, brief *models.ContentBrief, brand *models.Brand) (result *transfer.BriefResult, err error) {
	ctx, span := observability.StartSpan(ctx, "brief.generate", attribute.String("brief.id", brief.ID))
	defer func() { observability.EndSpan(span, err) }()

	strategies, err := s.generateStrategies(ctx, brand, brief)
	if err != nil {
		s.failBrief(ctx, brief.ID)
		return nil, err
	}

	results := utils.SettleInBatches(ctx, strategies, BatchSize, func(ctx context.Context, i int, st models.Strategy) (*models.GeneratedPost, error) {
		return s.generatePost(ctx, brief, brand, i, st)
	})
	for i, r := range results {
		if r.Err != nil {
			slog.WarnContext(ctx, "post generation failed",
				"strategy_index", i,
				"platform", strategies[i].Platform,
				"error", r.Err,
			)
		}
	}
	posts := utils.Successes(results)

	status := models.BriefStatusError
	if len(posts) > 0 {
		status = models.BriefStatusCompleted
	}

	// finish bookkeeping even if the caller went away mid-run
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	updated, err := s.br.UpdateStatus(fctx, brief.ID, status)
	if err != nil {
		return nil, fmt.Errorf("finalizing brief: %w", err)
	}
	if updated {
		observability.BriefsTotal.WithLabelValues(status).Inc()
	} else {
		// closed by the stale brief job while this run was still going
		slog.WarnContext(ctx, "brief already settled, keeping its status", "wanted", status)
		status = models.BriefStatusError
	}

	if len(posts) > 0 {
		s.us.IncrementUsage(fctx, brief.UserID, models.UsageKindPosts, len(posts))
	}

	span.SetAttributes(attribute.Int("brief.posts_generated", len(posts)))
	slog.InfoContext(ctx, "brief generation finished", "status", status, "posts_generated", len(posts))

	return &transfer.BriefResult{BriefID: brief.ID, PostsGenerated: len(posts), Status: status}, nil
}

func (s *briefService) generateStrategies(ctx context.Context, brand *models.Brand, brief *models.ContentBrief) (strategies []models.Strategy, err error) {
	ctx, span := observability.StartSpan(ctx, "brief.strategy")
	defer func() { observability.EndSpan(span, err) }()

	raw, err := s.ai.Text.Complete(ctx, CompletionRequest{
		System:      prompts.StrategySystem,
		Prompt:      prompts.StrategyPrompt(brand, brief),
		Model:       s.opts.StrategyModel,
		Temperature: StrategyTemperature,
		MaxTokens:   strategyMaxTokens,
		Kind:        "strategy",
	})
	if err != nil {
		return nil, models.NewUpstreamAIError("strategy generation failed", err)
	}

	strategies, err = transfer.ParseStrategies(raw)
	if err != nil {
		slog.WarnContext(ctx, "malformed strategy response", "error", err, "raw", truncate(raw, 500))
		return nil, models.NewMalformedStrategyError(err)
	}

	return strategies, nil
}

// generatePost writes the copy for one strategy, adds an image when the post
// type asks for one and persists the post. Image failures are not fatal.
func (s *briefService) generatePost(ctx context.Context, brief *models.ContentBrief, brand *models.Brand, index int, st models.Strategy) (post *models.GeneratedPost, err error) {
	ctx, span := observability.StartSpan(ctx, "brief.post",
		attribute.Int("strategy.index", index),
		attribute.String("strategy.platform", st.Platform),
		attribute.String("strategy.post_type", st.PostType),
	)
	defer func() { observability.EndSpan(span, err) }()

	text, err := s.ai.Text.Complete(ctx, CompletionRequest{
		System:      prompts.CopywritingSystem,
		Prompt:      prompts.CopywritingPrompt(brand, brief, st),
		Model:       s.opts.CopyModel,
		Temperature: CopyTemperature,
		MaxTokens:   copyMaxTokens,
		Kind:        "copy",
	})
	if err != nil {
		observability.PostGenerationFailures.WithLabelValues("copy").Inc()
		return nil, err
	}

	var mediaURLs []string
	if st.PostType == models.PostTypeImageCaption {
		url, err := s.generateImage(ctx, brief, brand, st)
		if err != nil {
			observability.PostGenerationFailures.WithLabelValues("image").Inc()
			slog.WarnContext(ctx, "image generation failed, saving post without media",
				"strategy_index", index,
				"platform", st.Platform,
				"error", err,
			)
		} else {
			mediaURLs = []string{url}
		}
	}

	post, err = s.pr.Create(ctx, &models.GeneratedPost{
		BriefID:            brief.ID,
		Platform:           st.Platform,
		GeneratedText:      text,
		GeneratedMediaURLs: mediaURLs,
		Status:             models.PostStatusDraft,
	})
	if err != nil {
		observability.PostGenerationFailures.WithLabelValues("persist").Inc()
		return nil, fmt.Errorf("saving post: %w", err)
	}

	observability.PostsGenerated.WithLabelValues(st.Platform).Inc()
	return post, nil
}

func (s *briefService) generateImage(ctx context.Context, brief *models.ContentBrief, brand *models.Brand, st models.Strategy) (string, error) {
	if s.ai.Image == nil || s.ai.Storage == nil {
		return "", errors.New("image generation is not configured")
	}

	image, err := s.ai.Image.Generate(ctx, prompts.ImagePrompt(brand, brief, st))
	if err != nil {
		return "", fmt.Errorf("generating image: %w", err)
	}

	kind, err := filetype.Match(image)
	if err != nil || kind == types.Unknown {
		kind = types.NewType("png", "image/png")
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("generated/%s/%s.%s", brief.ID, id, kind.Extension)

	url, err := s.ai.Storage.Upload(ctx, key, image, kind.MIME.Value)
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}
	return url, nil
}

// failBrief moves a brief to error without letting a second failure mask the first.
func (s *briefService) failBrief(ctx context.Context, briefID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	updated, err := s.br.UpdateStatus(ctx, briefID, models.BriefStatusError)
	if err != nil {
		slog.ErrorContext(ctx, "failed to mark brief as error", "brief_id", briefID, "error", err)
		return
	}
	if updated {
		observability.BriefsTotal.WithLabelValues(models.BriefStatusError).Inc()
	}
}
