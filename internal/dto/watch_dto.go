package dto

import (
	"time"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// WatchUpdateRequest is the payload reported by video players. Metadata
// pointers distinguish "absent" (leave stored value) from "" (clear it).
type WatchUpdateRequest struct {
	StudentID     string  `json:"student_id" validate:"required"`
	CourseID      string  `json:"course_id" validate:"required"`
	VideoID       string  `json:"video_id" validate:"required"`
	WatchDuration float64 `json:"watch_duration" validate:"gte=0"`
	TotalDuration float64 `json:"total_duration" validate:"gte=0"`
	VideoTitle    *string `json:"video_title,omitempty"`
	CourseName    *string `json:"course_name,omitempty"`
	StudentEmail  *string `json:"student_email,omitempty" validate:"omitempty,email"`
}

// MarkCompleteRequest marks a video as fully watched.
type MarkCompleteRequest struct {
	StudentID     string   `json:"student_id" validate:"required"`
	CourseID      string   `json:"course_id" validate:"required"`
	VideoID       string   `json:"video_id" validate:"required"`
	TotalDuration *float64 `json:"total_duration,omitempty" validate:"omitempty,gt=0"`
	VideoTitle    *string  `json:"video_title,omitempty"`
	CourseName    *string  `json:"course_name,omitempty"`
}

// WatchRecordResponse is the serialized watch record returned to clients.
type WatchRecordResponse struct {
	StudentID         string    `json:"student_id"`
	CourseID          string    `json:"course_id"`
	VideoID           string    `json:"video_id"`
	WatchDuration     float64   `json:"watch_duration"`
	TotalDuration     float64   `json:"total_duration"`
	IsCompleted       bool      `json:"is_completed"`
	CompletionPercent float64   `json:"completion_percentage"`
	WatchCount        int       `json:"watch_count"`
	VideoTitle        string    `json:"video_title,omitempty"`
	CourseName        string    `json:"course_name,omitempty"`
	LastWatched       time.Time `json:"last_watched"`
}

// NewWatchRecordResponse converts a model into a DTO.
func NewWatchRecordResponse(model models.WatchRecord) WatchRecordResponse {
	return WatchRecordResponse{
		StudentID:         model.StudentID.String(),
		CourseID:          model.CourseID.String(),
		VideoID:           model.VideoID.String(),
		WatchDuration:     model.WatchDuration,
		TotalDuration:     model.TotalDuration,
		IsCompleted:       model.IsCompleted,
		CompletionPercent: model.CompletionPercent,
		WatchCount:        model.WatchCount,
		VideoTitle:        model.VideoTitle,
		CourseName:        model.CourseName,
		LastWatched:       model.LastWatched,
	}
}

// CompletedVideo is the listing entry for finished videos.
type CompletedVideo struct {
	VideoID    string `json:"video_id"`
	VideoTitle string `json:"video_title"`
}

// NewCompletedVideoSlice converts completed watch records into listing DTOs.
func NewCompletedVideoSlice(records []models.WatchRecord) []CompletedVideo {
	videos := make([]CompletedVideo, 0, len(records))
	for _, record := range records {
		videos = append(videos, CompletedVideo{
			VideoID:    record.VideoID.String(),
			VideoTitle: record.VideoTitle,
		})
	}
	return videos
}
