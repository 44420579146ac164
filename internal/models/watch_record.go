package models

import "time"

// WatchRecord tracks one student's engagement with one video in one course.
// At most one row exists per (student, course, video); WatchDuration never
// decreases and IsCompleted is sticky once set.
type WatchRecord struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	StudentID         StudentID `gorm:"size:64;not null;uniqueIndex:idx_watch_student_course_video" json:"student_id"`
	CourseID          CourseID  `gorm:"size:64;not null;uniqueIndex:idx_watch_student_course_video" json:"course_id"`
	VideoID           VideoID   `gorm:"size:64;not null;uniqueIndex:idx_watch_student_course_video" json:"video_id"`
	WatchDuration     float64   `gorm:"not null;default:0" json:"watch_duration"`
	TotalDuration     float64   `gorm:"not null;default:0" json:"total_duration"`
	IsCompleted       bool      `gorm:"not null;default:false" json:"is_completed"`
	CompletionPercent float64   `gorm:"not null;default:0" json:"completion_percentage"`
	WatchCount        int       `gorm:"not null;default:0" json:"watch_count"`
	VideoTitle        string    `gorm:"size:255" json:"video_title"`
	CourseName        string    `gorm:"size:255" json:"course_name"`
	StudentEmail      string    `gorm:"size:255" json:"student_email"`
	LastWatched       time.Time `json:"last_watched"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName pins the table name; the upsert expressions in the repository
// reference it literally.
func (WatchRecord) TableName() string {
	return "watch_records"
}
