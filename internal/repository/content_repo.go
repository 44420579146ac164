package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// ContentRepository reads the course-content collection owned by the
// authoring subsystem.
type ContentRepository interface {
	CountAll(ctx context.Context, courseID models.CourseID) (int64, error)
	CountVideos(ctx context.Context, courseID models.CourseID) (int64, error)
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository instantiates a GORM-backed repository.
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) CountAll(ctx context.Context, courseID models.CourseID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CourseContentItem{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *contentRepository) CountVideos(ctx context.Context, courseID models.CourseID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CourseContentItem{}).
		Where("course_id = ?", courseID).
		Where("content_type = ?", models.ContentTypeVideo).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
