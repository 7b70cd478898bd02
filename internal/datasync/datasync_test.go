package datasync

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/spacedrep/internal/learning"
	mock_learning "github.com/at-ishikawa/spacedrep/internal/mocks/learning"
	"github.com/at-ishikawa/spacedrep/internal/scheduler"
)

func TestImporter_Import(t *testing.T) {
	t0 := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	newCard := func(id int64, front string, phase scheduler.Phase) learning.Card {
		card := learning.NewCard(front, front+"-back", t0)
		card.ID = id
		card.Phase = phase
		return card
	}
	sourceCards := []learning.Card{
		newCard(1, "hola", scheduler.Review),
		newCard(2, "adiós", scheduler.Learning),
	}
	sourceLogs := []learning.ReviewLog{
		{ID: 1, CardID: 1, Rating: scheduler.Good, ReviewedAt: t0},
		{ID: 2, CardID: 2, Rating: scheduler.Again, ReviewedAt: t0},
		{ID: 3, CardID: 1, Rating: scheduler.Good, ReviewedAt: t0.AddDate(0, 0, 2)},
	}

	tests := []struct {
		name       string
		opts       ImportOptions
		setup      func(source, target *mock_learning.MockRepository)
		want       *ImportResult
		wantOutput string
		wantErr    bool
	}{
		{
			name: "new cards and their logs are created",
			setup: func(source, target *mock_learning.MockRepository) {
				source.EXPECT().FindAll(gomock.Any()).Return(sourceCards, nil)
				target.EXPECT().FindAll(gomock.Any()).Return([]learning.Card{newCard(10, "adiós", scheduler.New)}, nil)
				target.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, card *learning.Card) error {
					assert.Equal(t, "hola", card.Front)
					assert.Equal(t, scheduler.Review, card.Phase)
					card.ID = 20
					return nil
				})
				source.EXPECT().FindAllReviewLogs(gomock.Any()).Return(sourceLogs, nil)
				target.EXPECT().BatchCreateReviewLogs(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, logs []*learning.ReviewLog) error {
					require.Len(t, logs, 2)
					for _, l := range logs {
						assert.Equal(t, int64(20), l.CardID)
						assert.Zero(t, l.ID)
					}
					return nil
				})
			},
			want:       &ImportResult{CardsNew: 1, CardsSkipped: 1, LogsNew: 2, LogsSkipped: 1},
			wantOutput: "  [NEW]  \"hola\"\n",
		},
		{
			name: "existing cards are updated",
			opts: ImportOptions{UpdateExisting: true},
			setup: func(source, target *mock_learning.MockRepository) {
				source.EXPECT().FindAll(gomock.Any()).Return(sourceCards[1:], nil)
				target.EXPECT().FindAll(gomock.Any()).Return([]learning.Card{newCard(10, "adiós", scheduler.New)}, nil)
				target.EXPECT().UpdateState(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, card *learning.Card) error {
					assert.Equal(t, int64(10), card.ID)
					assert.Equal(t, scheduler.Learning, card.Phase)
					return nil
				})
				source.EXPECT().FindAllReviewLogs(gomock.Any()).Return(sourceLogs, nil)
			},
			want:       &ImportResult{CardsUpdated: 1, LogsSkipped: 3},
			wantOutput: "  [UPDATE]  \"adiós\"\n",
		},
		{
			name: "dry run writes nothing",
			opts: ImportOptions{DryRun: true, UpdateExisting: true},
			setup: func(source, target *mock_learning.MockRepository) {
				source.EXPECT().FindAll(gomock.Any()).Return(sourceCards, nil)
				target.EXPECT().FindAll(gomock.Any()).Return([]learning.Card{newCard(10, "adiós", scheduler.New)}, nil)
				source.EXPECT().FindAllReviewLogs(gomock.Any()).Return(sourceLogs, nil)
			},
			want: &ImportResult{CardsNew: 1, CardsUpdated: 1, LogsNew: 2, LogsSkipped: 1},
		},
		{
			name: "target error",
			setup: func(source, target *mock_learning.MockRepository) {
				source.EXPECT().FindAll(gomock.Any()).Return(sourceCards, nil)
				target.EXPECT().FindAll(gomock.Any()).Return(nil, errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			source := mock_learning.NewMockRepository(ctrl)
			target := mock_learning.NewMockRepository(ctrl)
			tt.setup(source, target)

			var out bytes.Buffer
			got, err := NewImporter(source, target, &out).Import(context.Background(), tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.wantOutput != "" {
				assert.Contains(t, out.String(), tt.wantOutput)
			}
		})
	}
}

func TestImporter_ImportBetweenYAMLStores(t *testing.T) {
	t0 := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()
	source := learning.NewYAMLRepository(t.TempDir())
	target := learning.NewYAMLRepository(t.TempDir())

	card := learning.NewCard("hola", "hello", t0)
	require.NoError(t, source.Create(ctx, &card))
	next, log := scheduler.ReviewCard(scheduler.NewSM2(scheduler.DefaultParameters()), card.State(), scheduler.Good, t0)
	card.ApplyState(next)
	stored := learning.NewReviewLog(card.ID, log)
	require.NoError(t, source.RecordReview(ctx, &card, &stored))

	var out bytes.Buffer
	importer := NewImporter(source, target, &out)
	result, err := importer.Import(ctx, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{CardsNew: 1, LogsNew: 1}, result)

	again, err := importer.Import(ctx, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{CardsSkipped: 1, LogsSkipped: 1}, again)

	logs, err := target.FindAllReviewLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "sm2", logs[0].Strategy)
}

func TestImporter_ImportStoresUTC(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	reviewed := time.Date(2025, 6, 16, 8, 0, 0, 0, tokyo)

	card := learning.NewCard("hola", "hello", reviewed.AddDate(0, 0, -1))
	card.ID = 1
	card.Phase = scheduler.Review
	card.LastReviewedAt = &reviewed
	card.DueAt = reviewed.AddDate(0, 0, 2)
	card.UpdatedAt = reviewed
	log := learning.ReviewLog{ID: 1, CardID: 1, Rating: scheduler.Good, ReviewedAt: reviewed, DueAt: card.DueAt}

	assertCardUTC := func(t *testing.T, c *learning.Card) {
		t.Helper()
		assert.Equal(t, time.UTC, c.DueAt.Location())
		assert.Equal(t, time.UTC, c.CreatedAt.Location())
		assert.Equal(t, time.UTC, c.UpdatedAt.Location())
		require.NotNil(t, c.LastReviewedAt)
		assert.Equal(t, time.UTC, c.LastReviewedAt.Location())
		assert.True(t, card.DueAt.Equal(c.DueAt))
	}

	t.Run("new card and its logs", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		source := mock_learning.NewMockRepository(ctrl)
		target := mock_learning.NewMockRepository(ctrl)

		source.EXPECT().FindAll(gomock.Any()).Return([]learning.Card{card}, nil)
		target.EXPECT().FindAll(gomock.Any()).Return(nil, nil)
		target.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *learning.Card) error {
			assertCardUTC(t, c)
			c.ID = 10
			return nil
		})
		source.EXPECT().FindAllReviewLogs(gomock.Any()).Return([]learning.ReviewLog{log}, nil)
		target.EXPECT().BatchCreateReviewLogs(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, logs []*learning.ReviewLog) error {
			require.Len(t, logs, 1)
			assert.Equal(t, int64(10), logs[0].CardID)
			assert.Equal(t, time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC), logs[0].ReviewedAt)
			assert.Equal(t, time.UTC, logs[0].DueAt.Location())
			return nil
		})

		_, err := NewImporter(source, target, &bytes.Buffer{}).Import(context.Background(), ImportOptions{})
		require.NoError(t, err)
	})

	t.Run("updated existing card", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		source := mock_learning.NewMockRepository(ctrl)
		target := mock_learning.NewMockRepository(ctrl)

		existing := learning.NewCard("hola", "hello", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		existing.ID = 10
		source.EXPECT().FindAll(gomock.Any()).Return([]learning.Card{card}, nil)
		target.EXPECT().FindAll(gomock.Any()).Return([]learning.Card{existing}, nil)
		target.EXPECT().UpdateState(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *learning.Card) error {
			assertCardUTC(t, c)
			assert.Equal(t, int64(10), c.ID)
			return nil
		})
		source.EXPECT().FindAllReviewLogs(gomock.Any()).Return([]learning.ReviewLog{log}, nil)

		_, err := NewImporter(source, target, &bytes.Buffer{}).Import(context.Background(), ImportOptions{UpdateExisting: true})
		require.NoError(t, err)
	})
}
