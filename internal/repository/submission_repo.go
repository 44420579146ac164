package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// SubmissionRepository reads the submission collection. Queries are always
// restricted to a known assignment id set and deduplicate at the database, so
// resubmissions never inflate completion counts.
type SubmissionRepository interface {
	DistinctSubmittedAssignments(ctx context.Context, studentID models.StudentID, assignmentIDs []models.AssignmentID) ([]models.AssignmentID, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates a GORM-backed repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) DistinctSubmittedAssignments(ctx context.Context, studentID models.StudentID, assignmentIDs []models.AssignmentID) ([]models.AssignmentID, error) {
	if len(assignmentIDs) == 0 {
		return nil, nil
	}

	var ids []models.AssignmentID
	err := r.db.WithContext(ctx).
		Model(&models.AssignmentSubmission{}).
		Distinct("assignment_id").
		Where("student_id = ?", studentID).
		Where("assignment_id IN ?", assignmentIDs).
		Pluck("assignment_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}
