package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	"github.com/noah-isme/class-scheduler-api/internal/models"
	"github.com/noah-isme/class-scheduler-api/pkg/cache"
	appErrors "github.com/noah-isme/class-scheduler-api/pkg/errors"
)

const (
	defaultSchedulePageSize = 50
	maxSchedulePageSize     = 500
)

var scheduleCachePattern = cache.Key("schedules", "*")

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, int, error)
	FindDetails(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleDetail, error)
	DeleteMany(ctx context.Context, scope models.ScheduleScope) (int64, error)
}

type sectionLookup interface {
	FindByID(ctx context.Context, id string) (*models.Section, error)
}

type scheduleListCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Invalidate(ctx context.Context, pattern string) error
}

// ScheduleService serves read-side schedule queries and scoped deletes.
type ScheduleService struct {
	repo      scheduleRepository
	sections  sectionLookup
	cache     scheduleListCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(repo scheduleRepository, sections sectionLookup, cache scheduleListCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, sections: sections, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

type cachedScheduleList struct {
	Items []models.ScheduleDetail `json:"items"`
	Total int                     `json:"total"`
}

// List returns schedules with pagination metadata, served from cache when possible.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, *models.Pagination, error) {
	if filter.Semester != "" && !filter.Semester.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "semester must be 1st or 2nd")
	}
	if filter.Day != "" && !filter.Day.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "day must be Monday through Saturday")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultSchedulePageSize
	}
	if filter.PageSize > maxSchedulePageSize {
		filter.PageSize = maxSchedulePageSize
	}

	key := scheduleListKey(filter)
	var cached cachedScheduleList
	if s.cache != nil && s.cache.Get(ctx, key, &cached) {
		return cached.Items, models.NewPagination(filter.Page, filter.PageSize, cached.Total), nil
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, cachedScheduleList{Items: items, Total: total}, s.cacheTTL)
	}
	return items, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a single schedule row.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.ScheduleDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return detail, nil
}

// ListBySection returns a section's timetable, optionally for one semester.
func (s *ScheduleService) ListBySection(ctx context.Context, sectionID string, semester models.Semester) ([]models.ScheduleDetail, error) {
	if semester != "" && !semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester must be 1st or 2nd")
	}
	if _, err := s.sections.FindByID(ctx, sectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	items, err := s.repo.FindDetails(ctx, models.ScheduleFilter{SectionID: sectionID, Semester: semester})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list section schedules")
	}
	return items, nil
}

// ListBySemester returns every schedule row in a semester.
func (s *ScheduleService) ListBySemester(ctx context.Context, semester models.Semester) ([]models.ScheduleDetail, error) {
	if !semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester must be 1st or 2nd")
	}
	items, err := s.repo.FindDetails(ctx, models.ScheduleFilter{Semester: semester})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semester schedules")
	}
	return items, nil
}

// DeleteScope removes schedules matching the request; an empty scope removes everything.
func (s *ScheduleService) DeleteScope(ctx context.Context, req dto.DeleteSchedulesRequest) (*dto.DeleteSchedulesResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid delete scope")
	}
	deleted, err := s.repo.DeleteMany(ctx, models.ScheduleScope{
		SectionID:    req.SectionID,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedules")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, scheduleCachePattern); err != nil {
			s.logger.Warn("schedule cache invalidation failed", zap.Error(err))
		}
	}
	s.logger.Info("schedules deleted",
		zap.String("section_id", req.SectionID),
		zap.String("semester", string(req.Semester)),
		zap.String("academic_year", req.AcademicYear),
		zap.Int64("deleted", deleted),
	)
	return &dto.DeleteSchedulesResponse{Deleted: deleted}, nil
}

func scheduleListKey(f models.ScheduleFilter) string {
	return cache.Key("schedules", "list", fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%d|%d|%s|%s",
		f.SectionID, f.SubjectID, f.Semester, f.AcademicYear, f.Day, f.RoomID, f.ProfessorID,
		f.Page, f.PageSize, f.SortBy, f.SortOrder))
}
