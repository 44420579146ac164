package models

import (
	"time"

	"gorm.io/datatypes"
)

// ProgressStatus is the derived completion state of a (student, course) pair.
type ProgressStatus string

const (
	// ProgressNotStarted means nothing has been completed yet.
	ProgressNotStarted ProgressStatus = "not_started"
	// ProgressInProgress means some but not all items are complete.
	ProgressInProgress ProgressStatus = "in_progress"
	// ProgressCompleted means every countable item is complete.
	ProgressCompleted ProgressStatus = "completed"
)

// StatusForPercent derives the status from a completion percentage. Status is
// never stored independently of the percent.
func StatusForPercent(percent int) ProgressStatus {
	switch {
	case percent <= 0:
		return ProgressNotStarted
	case percent >= 100:
		return ProgressCompleted
	default:
		return ProgressInProgress
	}
}

// CourseProgress is the single per-student-per-course completion summary.
// Exactly one row exists per (student, course).
type CourseProgress struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	StudentID       StudentID      `gorm:"size:64;not null;uniqueIndex:idx_progress_student_course" json:"student_id"`
	CourseID        CourseID       `gorm:"size:64;not null;uniqueIndex:idx_progress_student_course" json:"course_id"`
	ProgressPercent int            `gorm:"not null;default:0" json:"progress_percent"`
	Status          ProgressStatus `gorm:"size:32;not null;default:not_started" json:"status"`
	CompletedTopics datatypes.JSON `gorm:"type:json" json:"completed_topics"`
	LastAccessed    time.Time      `json:"last_accessed"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// TableName pins the table name used by the repository upsert expressions.
func (CourseProgress) TableName() string {
	return "course_progress"
}
