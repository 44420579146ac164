package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// AssignmentRepository reads the assignment collection. Assignments define
// the per-course universe the completion counter works against.
type AssignmentRepository interface {
	ListIDs(ctx context.Context, courseID models.CourseID) ([]models.AssignmentID, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) ListIDs(ctx context.Context, courseID models.CourseID) ([]models.AssignmentID, error) {
	var ids []models.AssignmentID
	err := r.db.WithContext(ctx).
		Model(&models.CourseAssignment{}).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}
