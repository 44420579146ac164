package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// ProgressRepository defines persistence operations for course progress
// summaries. Upserts are single conflict-resolving statements keyed on the
// (student, course) unique index.
type ProgressRepository interface {
	Get(ctx context.Context, studentID models.StudentID, courseID models.CourseID) (models.CourseProgress, error)
	Upsert(ctx context.Context, progress *models.CourseProgress) error
	UpsertWithTopics(ctx context.Context, progress *models.CourseProgress) error
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository instantiates a GORM-backed repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

var progressConflictColumns = []clause.Column{
	{Name: "student_id"},
	{Name: "course_id"},
}

func (r *progressRepository) Get(ctx context.Context, studentID models.StudentID, courseID models.CourseID) (models.CourseProgress, error) {
	var progress models.CourseProgress
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("course_id = ?", courseID).
		First(&progress).Error
	if err != nil {
		return models.CourseProgress{}, err
	}

	return progress, nil
}

// Upsert writes percent, status and last_accessed. Previously stored
// completed_topics survive a recompute untouched.
func (r *progressRepository) Upsert(ctx context.Context, progress *models.CourseProgress) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: progressConflictColumns,
			DoUpdates: clause.Assignments(map[string]interface{}{
				"progress_percent": gorm.Expr("excluded.progress_percent"),
				"status":           gorm.Expr("excluded.status"),
				"last_accessed":    gorm.Expr("excluded.last_accessed"),
				"updated_at":       gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(progress).Error
}

// UpsertWithTopics additionally overwrites the completed_topics list; used by
// the direct push path.
func (r *progressRepository) UpsertWithTopics(ctx context.Context, progress *models.CourseProgress) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: progressConflictColumns,
			DoUpdates: clause.Assignments(map[string]interface{}{
				"progress_percent": gorm.Expr("excluded.progress_percent"),
				"status":           gorm.Expr("excluded.status"),
				"completed_topics": gorm.Expr("excluded.completed_topics"),
				"last_accessed":    gorm.Expr("excluded.last_accessed"),
				"updated_at":       gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(progress).Error
}
