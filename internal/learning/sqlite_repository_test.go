package learning

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/spacedrep/internal/config"
	"github.com/at-ishikawa/spacedrep/internal/database"
	"github.com/at-ishikawa/spacedrep/internal/scheduler"
)

func TestDBRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	db, err := database.Open(
		config.StorageConfig{Driver: database.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "spacedrep.db")},
		config.DatabaseConfig{},
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = database.Migrate(ctx, db)
	require.NoError(t, err)

	repo := NewDBRepository(db)
	first := NewCard("hola", "hello", t0)
	second := NewCard("adiós", "goodbye", t0.Add(-time.Hour))
	require.NoError(t, repo.Create(ctx, &first))
	require.NoError(t, repo.Create(ctx, &second))

	due, err := repo.FindDue(ctx, t0, 0)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, second.ID, due[0].ID)
	assert.Nil(t, due[0].LastReviewedAt)

	next, log := scheduler.ReviewCard(scheduler.NewFSRS(scheduler.DefaultParameters()), first.State(), scheduler.Easy, t0)
	first.ApplyState(next)
	first.UpdatedAt = t0
	stored := NewReviewLog(first.ID, log)
	require.NoError(t, repo.RecordReview(ctx, &first, &stored))
	assert.NotZero(t, stored.ID)

	got, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, scheduler.Review, got.Phase)
	assert.Equal(t, 6, got.IntervalDays)
	require.NotNil(t, got.LastReviewedAt)
	assert.True(t, t0.Equal(*got.LastReviewedAt))
	assert.True(t, t0.AddDate(0, 0, 6).Equal(got.DueAt))

	due, err = repo.FindDue(ctx, t0, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, second.ID, due[0].ID)

	require.NoError(t, repo.BatchCreateReviewLogs(ctx, []*ReviewLog{
		{CardID: second.ID, Rating: scheduler.Again, Strategy: "sm2", Phase: scheduler.Learning, IntervalDays: 1, ReviewedAt: t0.Add(-time.Minute), DueAt: t0.AddDate(0, 0, 1)},
	}))
	logs, err := repo.FindAllReviewLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, second.ID, logs[0].CardID)
	assert.Equal(t, scheduler.Easy, logs[1].Rating)

	unchanged := *got
	require.NoError(t, repo.UpdateState(ctx, &unchanged))

	missing := Card{ID: 999, DueAt: t0, UpdatedAt: t0}
	assert.ErrorIs(t, repo.UpdateState(ctx, &missing), ErrCardNotFound)
	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, ErrCardNotFound)
}
