package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptbattle/internal/model"
)

func TestMemoryRecapRepo(t *testing.T) {
	t.Parallel()
	repo := NewMemoryRecapRepo()
	ctx := context.Background()

	got, err := repo.ListByCode(ctx, "ABC123", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &model.GameRecap{
			RoomCode:   "ABC123",
			FinishedAt: time.Date(2026, 8, 1+i, 0, 0, 0, 0, time.UTC),
			Winner:     model.FinalScore{Name: "Alice"},
		}))
	}
	require.NoError(t, repo.Create(ctx, &model.GameRecap{RoomCode: "OTHER1"}))

	got, err = repo.ListByCode(ctx, "ABC123", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].FinishedAt.After(got[1].FinishedAt), "newest first")

	got, err = repo.ListByCode(ctx, "ABC123", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
