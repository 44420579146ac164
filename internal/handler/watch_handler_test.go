package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
	"github.com/noah-isme/gema-progress-api/internal/repository"
	"github.com/noah-isme/gema-progress-api/internal/service"
)

func setupHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.StudentProfile{},
		&models.CourseContentItem{},
		&models.CourseAssignment{},
		&models.AssignmentSubmission{},
		&models.WatchRecord{},
		&models.CourseProgress{},
	))

	require.NoError(t, db.Create(&models.Account{ID: "acct-1", Name: "Jane", Email: "jane@example.com"}).Error)
	require.NoError(t, db.Create(&models.StudentProfile{ID: "stud-1", AccountID: "acct-1", Name: "Jane", Email: "jane@example.com"}).Error)

	return db
}

func newWatchTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := setupHandlerDB(t)

	resolver := service.NewIdentityResolver(
		repository.NewStudentProfileRepository(db),
		repository.NewAccountRepository(db),
		zerolog.Nop(),
	)
	svc := service.NewWatchService(
		repository.NewWatchRepository(db),
		resolver,
		nil,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)

	app := fiber.New()
	NewWatchHandler(svc, zerolog.Nop()).Register(app.Group("/api/v2/progress"))
	return app, db
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func putJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestWatchHandlerUpdateHappyPath(t *testing.T) {
	app, _ := newWatchTestApp(t)

	resp := postJSON(t, app, "/api/v2/progress/watch", map[string]interface{}{
		"student_id":     "stud-1",
		"course_id":      "course-1",
		"video_id":       "vid-1",
		"watch_duration": 30,
		"total_duration": 100,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool `json:"success"`
		Data    struct {
			StudentID     string  `json:"student_id"`
			WatchDuration float64 `json:"watch_duration"`
			WatchCount    int     `json:"watch_count"`
		} `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.True(t, payload.Success)
	require.Equal(t, "stud-1", payload.Data.StudentID)
	require.Equal(t, float64(30), payload.Data.WatchDuration)
	require.Equal(t, 1, payload.Data.WatchCount)
}

func TestWatchHandlerUpdateMissingIdentifier(t *testing.T) {
	app, _ := newWatchTestApp(t)

	resp := postJSON(t, app, "/api/v2/progress/watch", map[string]interface{}{
		"student_id":     "stud-1",
		"course_id":      "course-1",
		"watch_duration": 30,
		"total_duration": 100,
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestWatchHandlerUnknownIdentityIsEmptySuccess(t *testing.T) {
	app, _ := newWatchTestApp(t)

	resp := postJSON(t, app, "/api/v2/progress/watch", map[string]interface{}{
		"student_id":     "ghost",
		"course_id":      "course-1",
		"video_id":       "vid-1",
		"watch_duration": 30,
		"total_duration": 100,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool        `json:"success"`
		Data    interface{} `json:"data"`
		Message string      `json:"message"`
	}
	decodeResponse(t, resp, &payload)
	require.True(t, payload.Success)
	require.Nil(t, payload.Data)
	require.Equal(t, "no matching student identity", payload.Message)
}

func TestWatchHandlerCompleteAndList(t *testing.T) {
	app, _ := newWatchTestApp(t)

	resp := postJSON(t, app, "/api/v2/progress/watch/complete", map[string]interface{}{
		"student_id":  "stud-1",
		"course_id":   "course-1",
		"video_id":    "vid-1",
		"video_title": "Intro",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/v2/progress/watch/completed?student_id=stud-1&course_id=course-1", nil)
	listResp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, listResp.StatusCode)

	var payload struct {
		Data []struct {
			VideoID    string `json:"video_id"`
			VideoTitle string `json:"video_title"`
		} `json:"data"`
	}
	decodeResponse(t, listResp, &payload)
	require.Len(t, payload.Data, 1)
	require.Equal(t, "vid-1", payload.Data[0].VideoID)
	require.Equal(t, "Intro", payload.Data[0].VideoTitle)
}

func TestWatchHandlerResetRequiresIdentifiers(t *testing.T) {
	app, _ := newWatchTestApp(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v2/progress/watch?student_id=stud-1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
