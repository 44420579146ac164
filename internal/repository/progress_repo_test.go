package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

func TestProgressRepositoryUpsertCreatesAndOverwrites(t *testing.T) {
	db := setupTestDB(t, &models.CourseProgress{})
	repo := NewProgressRepository(db)
	ctx := context.Background()

	record := models.CourseProgress{
		StudentID:       "student-1",
		CourseID:        "course-1",
		ProgressPercent: 40,
		Status:          models.ProgressInProgress,
		LastAccessed:    time.Now().UTC(),
	}
	require.NoError(t, repo.Upsert(ctx, &record))

	stored, err := repo.Get(ctx, "student-1", "course-1")
	require.NoError(t, err)
	require.Equal(t, 40, stored.ProgressPercent)
	require.Equal(t, models.ProgressInProgress, stored.Status)

	update := models.CourseProgress{
		StudentID:       "student-1",
		CourseID:        "course-1",
		ProgressPercent: 100,
		Status:          models.ProgressCompleted,
		LastAccessed:    time.Now().UTC(),
	}
	require.NoError(t, repo.Upsert(ctx, &update))

	stored, err = repo.Get(ctx, "student-1", "course-1")
	require.NoError(t, err)
	require.Equal(t, 100, stored.ProgressPercent)
	require.Equal(t, models.ProgressCompleted, stored.Status)

	var count int64
	require.NoError(t, db.Model(&models.CourseProgress{}).Count(&count).Error)
	require.Equal(t, int64(1), count, "upsert must keep a single row per pair")
}

func TestProgressRepositoryRecomputePreservesTopics(t *testing.T) {
	db := setupTestDB(t, &models.CourseProgress{})
	repo := NewProgressRepository(db)
	ctx := context.Background()

	withTopics := models.CourseProgress{
		StudentID:       "student-1",
		CourseID:        "course-1",
		ProgressPercent: 20,
		Status:          models.ProgressInProgress,
		CompletedTopics: datatypes.JSON([]byte(`["loops","variables"]`)),
		LastAccessed:    time.Now().UTC(),
	}
	require.NoError(t, repo.UpsertWithTopics(ctx, &withTopics))

	recompute := models.CourseProgress{
		StudentID:       "student-1",
		CourseID:        "course-1",
		ProgressPercent: 60,
		Status:          models.ProgressInProgress,
		LastAccessed:    time.Now().UTC(),
	}
	require.NoError(t, repo.Upsert(ctx, &recompute))

	stored, err := repo.Get(ctx, "student-1", "course-1")
	require.NoError(t, err)
	require.Equal(t, 60, stored.ProgressPercent)
	require.JSONEq(t, `["loops","variables"]`, string(stored.CompletedTopics))
}
