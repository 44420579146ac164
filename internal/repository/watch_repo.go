package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// WatchMetadata carries the optional descriptive fields of a watch record.
// A nil pointer leaves the stored value untouched; an explicit empty string
// clears it.
type WatchMetadata struct {
	VideoTitle   *string
	CourseName   *string
	StudentEmail *string
}

// WatchRepository defines persistence operations for watch records. All
// writes are single atomic upsert statements so concurrent reports for the
// same (student, course, video) cannot lose updates.
type WatchRepository interface {
	ApplyWatch(ctx context.Context, record models.WatchRecord, meta WatchMetadata) (models.WatchRecord, error)
	MarkCompleted(ctx context.Context, record models.WatchRecord, meta WatchMetadata) (models.WatchRecord, error)
	Get(ctx context.Context, studentID models.StudentID, courseID models.CourseID, videoID models.VideoID) (models.WatchRecord, error)
	ListCompleted(ctx context.Context, studentID models.StudentID, courseID models.CourseID) ([]models.WatchRecord, error)
	CountCompleted(ctx context.Context, studentID models.StudentID, courseID models.CourseID) (int64, error)
	DeleteForCourse(ctx context.Context, studentID models.StudentID, courseID models.CourseID) (int64, error)
}

type watchRepository struct {
	db *gorm.DB
}

// NewWatchRepository instantiates a GORM-backed repository.
func NewWatchRepository(db *gorm.DB) WatchRepository {
	return &watchRepository{db: db}
}

var watchConflictColumns = []clause.Column{
	{Name: "student_id"},
	{Name: "course_id"},
	{Name: "video_id"},
}

// greaterWatchDuration keeps the stored duration monotonic under duplicate or
// out-of-order client reports. Written as CASE so it runs unchanged on both
// postgres and sqlite.
const greaterWatchDuration = "CASE WHEN excluded.watch_duration > watch_records.watch_duration " +
	"THEN excluded.watch_duration ELSE watch_records.watch_duration END"

func watchPercentExpr() string {
	ratio := fmt.Sprintf("(%s) * 100.0 / excluded.total_duration", greaterWatchDuration)
	return fmt.Sprintf(
		"CASE WHEN excluded.total_duration <= 0 THEN watch_records.completion_percent "+
			"WHEN %s > 100 THEN 100 ELSE %s END", ratio, ratio)
}

func (r *watchRepository) ApplyWatch(ctx context.Context, record models.WatchRecord, meta WatchMetadata) (models.WatchRecord, error) {
	record.WatchCount = 1
	if record.TotalDuration > 0 {
		percent := record.WatchDuration * 100.0 / record.TotalDuration
		if percent > 100 {
			percent = 100
		}
		record.CompletionPercent = percent
	}
	applyMetadata(&record, meta)

	assignments := map[string]interface{}{
		"watch_duration":     gorm.Expr(greaterWatchDuration),
		"completion_percent": gorm.Expr(watchPercentExpr()),
		"total_duration":     gorm.Expr("excluded.total_duration"),
		"watch_count":        gorm.Expr("watch_records.watch_count + 1"),
		"last_watched":       gorm.Expr("excluded.last_watched"),
		"updated_at":         gorm.Expr("excluded.updated_at"),
	}
	addMetadataAssignments(assignments, meta)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   watchConflictColumns,
			DoUpdates: clause.Assignments(assignments),
		}).
		Create(&record).Error
	if err != nil {
		return models.WatchRecord{}, err
	}

	return r.Get(ctx, record.StudentID, record.CourseID, record.VideoID)
}

func (r *watchRepository) MarkCompleted(ctx context.Context, record models.WatchRecord, meta WatchMetadata) (models.WatchRecord, error) {
	record.IsCompleted = true
	record.CompletionPercent = 100
	if record.WatchCount == 0 {
		record.WatchCount = 1
	}
	applyMetadata(&record, meta)

	assignments := map[string]interface{}{
		"is_completed":       true,
		"completion_percent": float64(100),
		"watch_duration":     gorm.Expr("excluded.watch_duration"),
		"total_duration":     gorm.Expr("excluded.total_duration"),
		"last_watched":       gorm.Expr("excluded.last_watched"),
		"updated_at":         gorm.Expr("excluded.updated_at"),
	}
	addMetadataAssignments(assignments, meta)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   watchConflictColumns,
			DoUpdates: clause.Assignments(assignments),
		}).
		Create(&record).Error
	if err != nil {
		return models.WatchRecord{}, err
	}

	return r.Get(ctx, record.StudentID, record.CourseID, record.VideoID)
}

func (r *watchRepository) Get(ctx context.Context, studentID models.StudentID, courseID models.CourseID, videoID models.VideoID) (models.WatchRecord, error) {
	var record models.WatchRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("course_id = ?", courseID).
		Where("video_id = ?", videoID).
		First(&record).Error
	if err != nil {
		return models.WatchRecord{}, err
	}

	return record, nil
}

func (r *watchRepository) ListCompleted(ctx context.Context, studentID models.StudentID, courseID models.CourseID) ([]models.WatchRecord, error) {
	var records []models.WatchRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("course_id = ?", courseID).
		Where("is_completed = ?", true).
		Order("last_watched DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *watchRepository) CountCompleted(ctx context.Context, studentID models.StudentID, courseID models.CourseID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WatchRecord{}).
		Where("student_id = ?", studentID).
		Where("course_id = ?", courseID).
		Where("is_completed = ?", true).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *watchRepository) DeleteForCourse(ctx context.Context, studentID models.StudentID, courseID models.CourseID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("course_id = ?", courseID).
		Delete(&models.WatchRecord{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func applyMetadata(record *models.WatchRecord, meta WatchMetadata) {
	if meta.VideoTitle != nil {
		record.VideoTitle = *meta.VideoTitle
	}
	if meta.CourseName != nil {
		record.CourseName = *meta.CourseName
	}
	if meta.StudentEmail != nil {
		record.StudentEmail = *meta.StudentEmail
	}
}

func addMetadataAssignments(assignments map[string]interface{}, meta WatchMetadata) {
	if meta.VideoTitle != nil {
		assignments["video_title"] = *meta.VideoTitle
	}
	if meta.CourseName != nil {
		assignments["course_name"] = *meta.CourseName
	}
	if meta.StudentEmail != nil {
		assignments["student_email"] = *meta.StudentEmail
	}
}
