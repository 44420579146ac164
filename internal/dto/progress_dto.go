package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// ProgressPushRequest carries a pre-computed percentage from a coarse
// external updater. Out-of-range percentages are clamped, not rejected.
type ProgressPushRequest struct {
	ProgressPercent int      `json:"progress_percent"`
	CompletedTopics []string `json:"completed_topics,omitempty"`
}

// ProgressResponse is the serialized course progress summary.
type ProgressResponse struct {
	StudentID       string    `json:"student_id"`
	CourseID        string    `json:"course_id"`
	ProgressPercent int       `json:"progress_percent"`
	Status          string    `json:"status"`
	CompletedTopics []string  `json:"completed_topics"`
	LastAccessed    time.Time `json:"last_accessed"`
}

// NewProgressResponse converts a model into a DTO.
func NewProgressResponse(model models.CourseProgress) ProgressResponse {
	topics := []string{}
	if len(model.CompletedTopics) > 0 {
		// A malformed stored list degrades to empty rather than failing the read.
		_ = json.Unmarshal([]byte(model.CompletedTopics), &topics)
	}

	return ProgressResponse{
		StudentID:       model.StudentID.String(),
		CourseID:        model.CourseID.String(),
		ProgressPercent: model.ProgressPercent,
		Status:          string(model.Status),
		CompletedTopics: topics,
		LastAccessed:    model.LastAccessed,
	}
}

// ProgressBreakdown is the full recompute result including the per-source
// counts it was derived from.
type ProgressBreakdown struct {
	StudentID            string `json:"student_id"`
	CourseID             string `json:"course_id"`
	IdentityMatch        string `json:"identity_match,omitempty"`
	OverallProgress      int    `json:"overall_progress"`
	VideoProgress        int    `json:"video_progress"`
	AssignmentProgress   int    `json:"assignment_progress"`
	CompletedVideos      int64  `json:"completed_videos"`
	TotalVideos          int64  `json:"total_videos"`
	CompletedAssignments int64  `json:"completed_assignments"`
	TotalAssignments     int64  `json:"total_assignments"`
	Status               string `json:"status"`
}
