package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/adwola-api/internal/models"
)

func (j *Queue) HandleGenerateBriefTask(ctx context.Context, task *asynq.Task) error {
	var payload GenerateBriefPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decoding payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.BriefID == "" {
		return fmt.Errorf("payload without brief id: %w", asynq.SkipRetry)
	}

	result, err := j.bs.RunBrief(ctx, payload.BriefID)
	if err != nil {
		slog.ErrorContext(ctx, "brief generation failed", "brief_id", payload.BriefID, "error", err)
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	slog.InfoContext(ctx, "brief generated", "brief_id", result.BriefID, "status", result.Status, "posts", result.PostsGenerated)
	return nil
}
