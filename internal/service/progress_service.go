package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/dto"
	"github.com/noah-isme/gema-progress-api/internal/models"
	"github.com/noah-isme/gema-progress-api/internal/observability"
	"github.com/noah-isme/gema-progress-api/internal/repository"
)

// ErrCourseNotFound indicates the referenced course has no content and no
// assignments, i.e. it is unknown to the catalog.
var ErrCourseNotFound = errors.New("course not found")

// ErrProgressNotFound indicates no progress record exists for the pair yet.
var ErrProgressNotFound = errors.New("progress not found")

// ProgressService produces and persists the canonical completion percentage
// and status for a (student, course) pair.
type ProgressService interface {
	Recompute(ctx context.Context, courseID, studentRef string) (dto.ProgressBreakdown, error)
	Get(ctx context.Context, courseID, studentRef string) (dto.ProgressResponse, error)
	SetProgress(ctx context.Context, courseID, studentRef string, payload dto.ProgressPushRequest) (dto.ProgressResponse, error)
}

type progressService struct {
	progress    repository.ProgressRepository
	watches     repository.WatchRepository
	contents    repository.ContentRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	resolver    IdentityResolver
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewProgressService builds the aggregator.
func NewProgressService(
	progress repository.ProgressRepository,
	watches repository.WatchRepository,
	contents repository.ContentRepository,
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	resolver IdentityResolver,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) ProgressService {
	return &progressService{
		progress:    progress,
		watches:     watches,
		contents:    contents,
		assignments: assignments,
		submissions: submissions,
		resolver:    resolver,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("component", "progress_service").Logger(),
		now:         time.Now,
	}
}

func progressCacheKey(courseID models.CourseID, studentID models.StudentID) string {
	return fmt.Sprintf("progress:course:%s:student:%s", courseID, studentID)
}

// roundPercent rounds half up to the nearest integer percentage. A zero total
// never divides and always yields zero.
func roundPercent(completed, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(completed)*100/float64(total) + 0.5))
}

// assignmentCompletion derives the per-course assignment counts for a
// student. Duplicate submissions to the same assignment count once because
// the repository deduplicates assignment ids.
func (s *progressService) assignmentCompletion(ctx context.Context, studentID models.StudentID, courseID models.CourseID) (completed, total int64, err error) {
	ids, err := s.assignments.ListIDs(ctx, courseID)
	if err != nil {
		return 0, 0, wrapPersistence("list course assignments", err)
	}
	if len(ids) == 0 {
		return 0, 0, nil
	}

	submitted, err := s.submissions.DistinctSubmittedAssignments(ctx, studentID, ids)
	if err != nil {
		return 0, 0, wrapPersistence("list student submissions", err)
	}

	return int64(len(submitted)), int64(len(ids)), nil
}

func (s *progressService) Recompute(ctx context.Context, courseID, studentRef string) (dto.ProgressBreakdown, error) {
	if courseID == "" || studentRef == "" {
		return dto.ProgressBreakdown{}, ErrValidation
	}

	identity, err := s.resolver.Resolve(ctx, studentRef)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			// Zero eligible students is a valid outcome, not an error.
			observability.RecomputeOutcomes().WithLabelValues("identity_not_found").Inc()
			return dto.ProgressBreakdown{
				CourseID: courseID,
				Status:   string(models.ProgressNotStarted),
			}, nil
		}
		observability.RecomputeOutcomes().WithLabelValues("error").Inc()
		return dto.ProgressBreakdown{}, err
	}

	course := models.CourseID(courseID)

	contentCount, err := s.contents.CountAll(ctx, course)
	if err != nil {
		observability.RecomputeOutcomes().WithLabelValues("error").Inc()
		return dto.ProgressBreakdown{}, wrapPersistence("count course content", err)
	}

	totalVideos, err := s.contents.CountVideos(ctx, course)
	if err != nil {
		observability.RecomputeOutcomes().WithLabelValues("error").Inc()
		return dto.ProgressBreakdown{}, wrapPersistence("count course videos", err)
	}

	completedAssignments, totalAssignments, err := s.assignmentCompletion(ctx, identity.StudentID, course)
	if err != nil {
		observability.RecomputeOutcomes().WithLabelValues("error").Inc()
		return dto.ProgressBreakdown{}, err
	}

	if contentCount == 0 && totalAssignments == 0 {
		observability.RecomputeOutcomes().WithLabelValues("course_not_found").Inc()
		return dto.ProgressBreakdown{}, ErrCourseNotFound
	}

	completedVideos, err := s.watches.CountCompleted(ctx, identity.StudentID, course)
	if err != nil {
		observability.RecomputeOutcomes().WithLabelValues("error").Inc()
		return dto.ProgressBreakdown{}, wrapPersistence("count completed videos", err)
	}

	totalItems := totalVideos + totalAssignments
	completedItems := completedVideos + completedAssignments
	percent := roundPercent(completedItems, totalItems)
	status := models.StatusForPercent(percent)

	// The upsert is the single point of externally observable change; nothing
	// is persisted before this line.
	record := models.CourseProgress{
		StudentID:       identity.StudentID,
		CourseID:        course,
		ProgressPercent: percent,
		Status:          status,
		LastAccessed:    s.now().UTC(),
	}
	if err := s.progress.Upsert(ctx, &record); err != nil {
		observability.RecomputeOutcomes().WithLabelValues("error").Inc()
		return dto.ProgressBreakdown{}, wrapPersistence("upsert course progress", err)
	}

	// Re-read so the cache reflects the merged row, including any previously
	// stored completed_topics the upsert left untouched.
	if stored, readErr := s.progress.Get(ctx, identity.StudentID, course); readErr == nil {
		s.storeCache(ctx, course, identity.StudentID, stored)
	}
	observability.RecomputeOutcomes().WithLabelValues("success").Inc()

	s.logger.Info().
		Str("student_id", identity.StudentID.String()).
		Str("course_id", courseID).
		Str("identity_match", string(identity.Strategy)).
		Int("progress_percent", percent).
		Msg("progress recomputed")

	return dto.ProgressBreakdown{
		StudentID:            identity.StudentID.String(),
		CourseID:             courseID,
		IdentityMatch:        string(identity.Strategy),
		OverallProgress:      percent,
		VideoProgress:        roundPercent(completedVideos, totalVideos),
		AssignmentProgress:   roundPercent(completedAssignments, totalAssignments),
		CompletedVideos:      completedVideos,
		TotalVideos:          totalVideos,
		CompletedAssignments: completedAssignments,
		TotalAssignments:     totalAssignments,
		Status:               string(status),
	}, nil
}

func (s *progressService) Get(ctx context.Context, courseID, studentRef string) (dto.ProgressResponse, error) {
	if courseID == "" || studentRef == "" {
		return dto.ProgressResponse{}, ErrValidation
	}

	identity, err := s.resolver.Resolve(ctx, studentRef)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return dto.ProgressResponse{}, ErrProgressNotFound
		}
		return dto.ProgressResponse{}, err
	}

	course := models.CourseID(courseID)
	cacheKey := progressCacheKey(course, identity.StudentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.ProgressResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Str("cache_key", cacheKey).Msg("progress cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read progress cache")
		}
	}

	record, err := s.progress.Get(ctx, identity.StudentID, course)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgressResponse{}, ErrProgressNotFound
		}
		return dto.ProgressResponse{}, wrapPersistence("load course progress", err)
	}

	s.storeCache(ctx, course, identity.StudentID, record)

	return dto.NewProgressResponse(record), nil
}

func (s *progressService) SetProgress(ctx context.Context, courseID, studentRef string, payload dto.ProgressPushRequest) (dto.ProgressResponse, error) {
	if courseID == "" || studentRef == "" {
		return dto.ProgressResponse{}, ErrValidation
	}

	identity, err := s.resolver.Resolve(ctx, studentRef)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	percent := payload.ProgressPercent
	if percent < 0 || percent > 100 {
		s.logger.Warn().
			Int("supplied_percent", percent).
			Str("student_id", identity.StudentID.String()).
			Str("course_id", courseID).
			Msg("clamping out-of-range progress percent")
		percent = min(100, max(0, percent))
	}

	topics := payload.CompletedTopics
	if topics == nil {
		topics = []string{}
	}
	encoded, err := json.Marshal(topics)
	if err != nil {
		return dto.ProgressResponse{}, fmt.Errorf("encode completed topics: %w", err)
	}

	record := models.CourseProgress{
		StudentID:       identity.StudentID,
		CourseID:        models.CourseID(courseID),
		ProgressPercent: percent,
		Status:          models.StatusForPercent(percent),
		CompletedTopics: datatypes.JSON(encoded),
		LastAccessed:    s.now().UTC(),
	}
	if err := s.progress.UpsertWithTopics(ctx, &record); err != nil {
		return dto.ProgressResponse{}, wrapPersistence("upsert course progress", err)
	}

	s.storeCache(ctx, record.CourseID, identity.StudentID, record)

	return dto.NewProgressResponse(record), nil
}

func (s *progressService) storeCache(ctx context.Context, courseID models.CourseID, studentID models.StudentID, record models.CourseProgress) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(dto.NewProgressResponse(record))
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, progressCacheKey(courseID, studentID), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store progress cache")
	}
}
