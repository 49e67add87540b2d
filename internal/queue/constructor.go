package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const generateTimeout = 10 * time.Minute

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer publishes brief generation tasks. Tasks are never retried; a
// failed run settles the brief as error.
type Enqueuer struct {
	client taskEnqueuer
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) EnqueueBriefGeneration(ctx context.Context, briefID string) error {
	taskPayload, err := json.Marshal(GenerateBriefPayload{BriefID: briefID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeGenerateBrief, taskPayload)

	info, err := e.client.EnqueueContext(ctx, task, asynq.MaxRetry(0), asynq.Timeout(generateTimeout))
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "brief generation queued", "brief_id", briefID, "task_id", info.ID)
	return nil
}
