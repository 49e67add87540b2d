package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maheshrc27/adwola-api/internal/models"
	"github.com/maheshrc27/adwola-api/internal/observability"
	"github.com/maheshrc27/adwola-api/internal/repository"
)

// FailPolicy decides what happens when the usage check itself fails.
type FailPolicy string

const (
	FailOpen   FailPolicy = "open"
	FailClosed FailPolicy = "closed"
)

type UsageService interface {
	CheckUsageLimits(ctx context.Context, userID string) (*models.UsageLimits, error)
	EnsureCanGenerate(ctx context.Context, userID string) error
	IncrementUsage(ctx context.Context, userID, kind string, by int) bool
}

type usageService struct {
	ur     repository.UsageRepository
	policy FailPolicy
}

func NewUsageService(ur repository.UsageRepository, policy FailPolicy) UsageService {
	if policy != FailClosed {
		policy = FailOpen
	}
	return &usageService{ur: ur, policy: policy}
}

func (s *usageService) CheckUsageLimits(ctx context.Context, userID string) (*models.UsageLimits, error) {
	limits, err := s.ur.CheckLimits(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("checking usage limits: %w", err)
	}
	return limits, nil
}

// EnsureCanGenerate is the quota gate run before any generation work. It
// returns a USAGE_LIMIT_EXCEEDED error when the user is out of posts. When
// limits cannot be read the configured FailPolicy applies.
func (s *usageService) EnsureCanGenerate(ctx context.Context, userID string) error {
	limits, err := s.CheckUsageLimits(ctx, userID)
	if err != nil || limits == nil {
		observability.UsageCheckFailures.Inc()
		if s.policy == FailClosed {
			slog.WarnContext(ctx, "usage check unavailable, denying generation", "error", err)
			return &models.AppError{
				Code:    models.CodeUsageUnavailable,
				Message: "Usage limits could not be verified, please try again later",
				Err:     err,
			}
		}
		slog.WarnContext(ctx, "usage check unavailable, allowing generation", "error", err)
		return nil
	}

	if !limits.CanGeneratePost {
		return models.NewUsageLimitError(limits)
	}
	return nil
}

// IncrementUsage adds by to the user's counter of kind. It never touches the
// store for by <= 0. A false return means the increment was not recorded.
func (s *usageService) IncrementUsage(ctx context.Context, userID, kind string, by int) bool {
	if by <= 0 {
		return true
	}
	if err := s.ur.Increment(ctx, userID, kind, by); err != nil {
		slog.ErrorContext(ctx, "failed to increment usage", "kind", kind, "by", by, "error", err)
		return false
	}
	return true
}
