package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

func TestSubmissionRepositoryDeduplicatesResubmissions(t *testing.T) {
	db := setupTestDB(t, &models.AssignmentSubmission{})
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	rows := []models.AssignmentSubmission{
		{AssignmentID: "hw-1", StudentID: "student-1", SubmittedAt: now},
		{AssignmentID: "hw-1", StudentID: "student-1", SubmittedAt: now.Add(time.Hour)}, // resubmission
		{AssignmentID: "hw-2", StudentID: "student-1", SubmittedAt: now},
		{AssignmentID: "hw-3", StudentID: "student-1", SubmittedAt: now}, // outside the course set
		{AssignmentID: "hw-2", StudentID: "student-2", SubmittedAt: now}, // another student
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	ids, err := repo.DistinctSubmittedAssignments(ctx, "student-1", []models.AssignmentID{"hw-1", "hw-2"})
	require.NoError(t, err)
	require.ElementsMatch(t, []models.AssignmentID{"hw-1", "hw-2"}, ids)
}

func TestSubmissionRepositoryEmptyAssignmentSet(t *testing.T) {
	db := setupTestDB(t, &models.AssignmentSubmission{})
	repo := NewSubmissionRepository(db)

	ids, err := repo.DistinctSubmittedAssignments(context.Background(), "student-1", nil)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestAssignmentRepositoryListIDs(t *testing.T) {
	db := setupTestDB(t, &models.CourseAssignment{})
	repo := NewAssignmentRepository(db)

	assignments := []models.CourseAssignment{
		{ID: "hw-1", CourseID: "course-1", Title: "Homework 1"},
		{ID: "hw-2", CourseID: "course-1", Title: "Homework 2"},
		{ID: "hw-9", CourseID: "course-2", Title: "Other course"},
	}
	for i := range assignments {
		require.NoError(t, db.Create(&assignments[i]).Error)
	}

	ids, err := repo.ListIDs(context.Background(), "course-1")
	require.NoError(t, err)
	require.ElementsMatch(t, []models.AssignmentID{"hw-1", "hw-2"}, ids)
}
