package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapops/volcsync/internal/domain/model"
)

func TestRunRepo_AppendAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)
	ctx := context.Background()

	started := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	rec := model.RunRecord{
		StartedAt:    started,
		FinishedAt:   started.Add(3 * time.Second),
		Duration:     3 * time.Second,
		State:        model.RunStateOverwritten,
		DatasetPath:  "volcano.geojson",
		DatasetBytes: 4096,
		ItemID:       "abc123",
	}

	id, err := repo.Append(ctx, rec)
	require.NoError(t, err)
	assert.Positive(t, id)

	recs, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	got := recs[0]
	assert.Equal(t, id, got.ID)
	assert.True(t, got.StartedAt.Equal(started))
	assert.Equal(t, 3*time.Second, got.Duration)
	assert.Equal(t, model.RunStateOverwritten, got.State)
	assert.Equal(t, "volcano.geojson", got.DatasetPath)
	assert.Equal(t, int64(4096), got.DatasetBytes)
	assert.Equal(t, "abc123", got.ItemID)
	assert.Empty(t, got.Error)
}

func TestRunRepo_AppendFailure(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)
	ctx := context.Background()

	now := time.Now()
	rec := model.RunRecord{
		StartedAt:  now,
		FinishedAt: now.Add(time.Second),
		Duration:   time.Second,
		State:      model.RunStateFailed,
		ItemID:     "abc123",
		Error:      "fetch dataset: remote fetch failed",
	}

	_, err := repo.Append(ctx, rec)
	require.NoError(t, err)

	recs, err := repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, model.RunStateFailed, recs[0].State)
	assert.Equal(t, "fetch dataset: remote fetch failed", recs[0].Error)
}

func TestRunRepo_ListRecentOrderAndLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		_, err := repo.Append(ctx, model.RunRecord{
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + time.Second),
			Duration:   time.Second,
			State:      model.RunStateOverwritten,
			ItemID:     fmt.Sprintf("item-%d", i),
		})
		require.NoError(t, err)
	}

	recs, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "item-4", recs[0].ItemID)
	assert.Equal(t, "item-3", recs[1].ItemID)
	assert.Equal(t, "item-2", recs[2].ItemID)
}

func TestRunRepo_ListRecentEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)

	recs, err := repo.ListRecent(context.Background(), 10)

	require.NoError(t, err)
	assert.Empty(t, recs)
}
