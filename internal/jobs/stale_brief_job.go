package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/maheshrc27/adwola-api/internal/repository"
)

const reapTimeout = 30 * time.Second

// StaleBriefJob closes briefs that stayed in processing longer than any
// generation run can take, e.g. after a crash mid-pipeline.
type StaleBriefJob struct {
	br    repository.BriefRepository
	after time.Duration
	now   func() time.Time
}

func NewStaleBriefJob(br repository.BriefRepository, after time.Duration) *StaleBriefJob {
	return &StaleBriefJob{
		br:    br,
		after: after,
		now:   time.Now,
	}
}

func (j *StaleBriefJob) ReapStaleBriefs() {
	ctx, cancel := context.WithTimeout(context.Background(), reapTimeout)
	defer cancel()

	n, err := j.br.MarkStaleAsError(ctx, j.now().Add(-j.after))
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if n > 0 {
		slog.Warn("stale briefs marked as error", "count", n, "older_than", j.after.String())
	}
}
