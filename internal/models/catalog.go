package models

import "time"

const (
	// ContentTypeVideo marks a course content item as a video. Only video
	// items count toward the video totals in progress aggregation.
	ContentTypeVideo = "video"
)

// CourseContentItem mirrors the course-content collection owned by the
// authoring subsystem. Read-only here.
type CourseContentItem struct {
	ID          VideoID   `gorm:"primaryKey;size:64" json:"id"`
	CourseID    CourseID  `gorm:"size:64;index;not null" json:"course_id"`
	ContentType string    `gorm:"size:32;not null" json:"content_type"`
	Title       string    `gorm:"size:255" json:"title"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CourseAssignment mirrors the assignment collection. Each assignment belongs
// to exactly one course and defines the assignment universe for it.
type CourseAssignment struct {
	ID        AssignmentID `gorm:"primaryKey;size:64" json:"id"`
	CourseID  CourseID     `gorm:"size:64;index;not null" json:"course_id"`
	Title     string       `gorm:"size:255" json:"title"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// AssignmentSubmission mirrors the submission collection. A student may
// submit more than once to the same assignment; aggregation counts distinct
// assignment ids, never raw submission rows.
type AssignmentSubmission struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	AssignmentID AssignmentID `gorm:"size:64;index;not null" json:"assignment_id"`
	StudentID    StudentID    `gorm:"size:64;index;not null" json:"student_id"`
	SubmittedAt  time.Time    `json:"submitted_at"`
	CreatedAt    time.Time    `json:"created_at"`
}
