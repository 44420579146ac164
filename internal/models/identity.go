package models

import "time"

// AccountID identifies a platform account as issued by the auth subsystem.
type AccountID string

// StudentID identifies a student profile. It is the canonical key for every
// per-student record owned by this service; the identity resolver is the only
// place an AccountID is converted into a StudentID.
type StudentID string

// CourseID identifies a course in the catalog.
type CourseID string

// VideoID identifies a single video content item.
type VideoID string

// AssignmentID identifies a course assignment.
type AssignmentID string

func (id AccountID) String() string    { return string(id) }
func (id StudentID) String() string    { return string(id) }
func (id CourseID) String() string     { return string(id) }
func (id VideoID) String() string      { return string(id) }
func (id AssignmentID) String() string { return string(id) }

// Account mirrors the auth subsystem's account collection. Read-only here.
type Account struct {
	ID        AccountID `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:255" json:"name"`
	Email     string    `gorm:"size:255;index" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentProfile mirrors the student collection owned by the enrolment
// subsystem. AccountID is the secondary key pointing at the owning account;
// legacy rows are known to carry either identifier shape in client payloads,
// which is why the resolver tries both fields.
type StudentProfile struct {
	ID        StudentID `gorm:"primaryKey;size:64" json:"id"`
	AccountID AccountID `gorm:"size:64;index" json:"account_id"`
	Name      string    `gorm:"size:255" json:"name"`
	Email     string    `gorm:"size:255;index" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
