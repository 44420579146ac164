package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progress-api/internal/dto"
	"github.com/noah-isme/gema-progress-api/internal/models"
	"github.com/noah-isme/gema-progress-api/internal/repository"
)

// defaultCompletedDuration is recorded as the watch duration when a
// mark-complete call carries no duration hint.
const defaultCompletedDuration = 100.0

// WatchService owns per-(student, course, video) watch state and applies the
// monotonic, idempotent update rules for it.
type WatchService interface {
	RecordWatch(ctx context.Context, payload dto.WatchUpdateRequest) (dto.WatchRecordResponse, error)
	MarkComplete(ctx context.Context, payload dto.MarkCompleteRequest) (dto.WatchRecordResponse, error)
	ListCompleted(ctx context.Context, studentRef, courseID string) ([]dto.CompletedVideo, error)
	Reset(ctx context.Context, studentRef, courseID string) (int64, error)
}

type watchService struct {
	watches   repository.WatchRepository
	resolver  IdentityResolver
	cache     *redis.Client
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewWatchService builds the watch tracker.
func NewWatchService(watches repository.WatchRepository, resolver IdentityResolver, cache *redis.Client, validate *validator.Validate, logger zerolog.Logger) WatchService {
	return &watchService{
		watches:   watches,
		resolver:  resolver,
		cache:     cache,
		validator: validate,
		logger:    logger.With().Str("component", "watch_service").Logger(),
		now:       time.Now,
	}
}

func (s *watchService) RecordWatch(ctx context.Context, payload dto.WatchUpdateRequest) (dto.WatchRecordResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.WatchRecordResponse{}, err
	}

	identity, err := s.resolver.Resolve(ctx, payload.StudentID)
	if err != nil {
		return dto.WatchRecordResponse{}, err
	}

	record := models.WatchRecord{
		StudentID:     identity.StudentID,
		CourseID:      models.CourseID(payload.CourseID),
		VideoID:       models.VideoID(payload.VideoID),
		WatchDuration: payload.WatchDuration,
		TotalDuration: payload.TotalDuration,
		LastWatched:   s.now().UTC(),
	}
	meta := repository.WatchMetadata{
		VideoTitle:   payload.VideoTitle,
		CourseName:   payload.CourseName,
		StudentEmail: payload.StudentEmail,
	}

	stored, err := s.watches.ApplyWatch(ctx, record, meta)
	if err != nil {
		return dto.WatchRecordResponse{}, wrapPersistence("apply watch update", err)
	}

	s.invalidateProgress(ctx, stored.CourseID, stored.StudentID)

	return dto.NewWatchRecordResponse(stored), nil
}

func (s *watchService) MarkComplete(ctx context.Context, payload dto.MarkCompleteRequest) (dto.WatchRecordResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.WatchRecordResponse{}, err
	}

	identity, err := s.resolver.Resolve(ctx, payload.StudentID)
	if err != nil {
		return dto.WatchRecordResponse{}, err
	}

	duration := defaultCompletedDuration
	if payload.TotalDuration != nil {
		duration = *payload.TotalDuration
	}

	record := models.WatchRecord{
		StudentID:     identity.StudentID,
		CourseID:      models.CourseID(payload.CourseID),
		VideoID:       models.VideoID(payload.VideoID),
		WatchDuration: duration,
		TotalDuration: duration,
		LastWatched:   s.now().UTC(),
	}
	meta := repository.WatchMetadata{
		VideoTitle: payload.VideoTitle,
		CourseName: payload.CourseName,
	}

	stored, err := s.watches.MarkCompleted(ctx, record, meta)
	if err != nil {
		return dto.WatchRecordResponse{}, wrapPersistence("mark video complete", err)
	}

	s.invalidateProgress(ctx, stored.CourseID, stored.StudentID)

	return dto.NewWatchRecordResponse(stored), nil
}

func (s *watchService) ListCompleted(ctx context.Context, studentRef, courseID string) ([]dto.CompletedVideo, error) {
	if studentRef == "" || courseID == "" {
		return nil, ErrValidation
	}

	identity, err := s.resolver.Resolve(ctx, studentRef)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return []dto.CompletedVideo{}, nil
		}
		return nil, err
	}

	records, err := s.watches.ListCompleted(ctx, identity.StudentID, models.CourseID(courseID))
	if err != nil {
		return nil, wrapPersistence("list completed videos", err)
	}

	return dto.NewCompletedVideoSlice(records), nil
}

func (s *watchService) Reset(ctx context.Context, studentRef, courseID string) (int64, error) {
	if studentRef == "" || courseID == "" {
		return 0, ErrValidation
	}

	identity, err := s.resolver.Resolve(ctx, studentRef)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return 0, nil
		}
		return 0, err
	}

	deleted, err := s.watches.DeleteForCourse(ctx, identity.StudentID, models.CourseID(courseID))
	if err != nil {
		return 0, wrapPersistence("reset watch records", err)
	}

	s.invalidateProgress(ctx, models.CourseID(courseID), identity.StudentID)
	s.logger.Info().
		Str("student_id", identity.StudentID.String()).
		Str("course_id", courseID).
		Int64("deleted", deleted).
		Msg("watch records reset")

	return deleted, nil
}

func (s *watchService) invalidateProgress(ctx context.Context, courseID models.CourseID, studentID models.StudentID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, progressCacheKey(courseID, studentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate progress cache")
	}
}
