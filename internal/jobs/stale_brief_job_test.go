package job

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/maheshrc27/adwola-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReapStaleBriefs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	j := NewStaleBriefJob(repository.NewBriefRepository(db), 15*time.Minute)
	j.now = func() time.Time { return now }

	query := regexp.QuoteMeta(`UPDATE content_briefs SET status = $1, updated_at = NOW() WHERE status = $2 AND updated_at < $3`)

	mock.ExpectExec(query).
		WithArgs("error", "processing", now.Add(-15*time.Minute)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	j.ReapStaleBriefs()

	mock.ExpectExec(query).
		WithArgs("error", "processing", now.Add(-15*time.Minute)).
		WillReturnError(errors.New("connection timeout"))
	j.ReapStaleBriefs()

	assert.NoError(t, mock.ExpectationsWereMet())
}
