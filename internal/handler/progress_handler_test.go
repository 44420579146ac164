package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
	"github.com/noah-isme/gema-progress-api/internal/repository"
	"github.com/noah-isme/gema-progress-api/internal/service"
)

func newProgressTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := setupHandlerDB(t)

	resolver := service.NewIdentityResolver(
		repository.NewStudentProfileRepository(db),
		repository.NewAccountRepository(db),
		zerolog.Nop(),
	)
	svc := service.NewProgressService(
		repository.NewProgressRepository(db),
		repository.NewWatchRepository(db),
		repository.NewContentRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewSubmissionRepository(db),
		resolver,
		nil,
		time.Minute,
		zerolog.Nop(),
	)

	app := fiber.New()
	NewProgressHandler(svc, zerolog.Nop()).Register(app.Group("/api/v2/progress"))
	return app, db
}

func seedProgressCourse(t *testing.T, db *gorm.DB) {
	t.Helper()
	items := []models.CourseContentItem{
		{ID: "vid-1", CourseID: "course-1", ContentType: models.ContentTypeVideo, Title: "Intro"},
		{ID: "vid-2", CourseID: "course-1", ContentType: models.ContentTypeVideo, Title: "Loops"},
		{ID: "doc-1", CourseID: "course-1", ContentType: "document", Title: "Syllabus"},
	}
	for i := range items {
		require.NoError(t, db.Create(&items[i]).Error)
	}
	require.NoError(t, db.Create(&models.CourseAssignment{ID: "hw-1", CourseID: "course-1", Title: "Homework"}).Error)
	require.NoError(t, db.Create(&models.AssignmentSubmission{AssignmentID: "hw-1", StudentID: "stud-1", SubmittedAt: time.Now().UTC()}).Error)
}

func TestProgressHandlerRecompute(t *testing.T) {
	app, db := newProgressTestApp(t)
	seedProgressCourse(t, db)

	req := httptest.NewRequest(http.MethodPost, "/api/v2/progress/courses/course-1/students/stud-1/recompute", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool `json:"success"`
		Data    struct {
			OverallProgress      int    `json:"overall_progress"`
			TotalVideos          int64  `json:"total_videos"`
			CompletedAssignments int64  `json:"completed_assignments"`
			Status               string `json:"status"`
		} `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.True(t, payload.Success)
	// 1 of 3 countable items complete: 2 videos + 1 assignment, 1 submission.
	require.Equal(t, 33, payload.Data.OverallProgress)
	require.Equal(t, int64(2), payload.Data.TotalVideos)
	require.Equal(t, int64(1), payload.Data.CompletedAssignments)
	require.Equal(t, string(models.ProgressInProgress), payload.Data.Status)
}

func TestProgressHandlerRecomputeUnknownCourse(t *testing.T) {
	app, _ := newProgressTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v2/progress/courses/course-missing/students/stud-1/recompute", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestProgressHandlerGetBeforeAnyAggregation(t *testing.T) {
	app, _ := newProgressTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v2/progress/courses/course-1/students/stud-1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestProgressHandlerPushClampsPercent(t *testing.T) {
	app, _ := newProgressTestApp(t)

	resp := putJSON(t, app, "/api/v2/progress/courses/course-1/students/stud-1", map[string]interface{}{
		"progress_percent": 250,
		"completed_topics": []string{"loops"},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Data struct {
			ProgressPercent int      `json:"progress_percent"`
			Status          string   `json:"status"`
			CompletedTopics []string `json:"completed_topics"`
		} `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Equal(t, 100, payload.Data.ProgressPercent)
	require.Equal(t, string(models.ProgressCompleted), payload.Data.Status)
	require.Equal(t, []string{"loops"}, payload.Data.CompletedTopics)
}
