package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	"github.com/noah-isme/class-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/class-scheduler-api/pkg/errors"
	"github.com/noah-isme/class-scheduler-api/pkg/logger"
)

type generatorSectionReader interface {
	FindByScope(ctx context.Context, scope models.SectionScope) ([]models.Section, error)
	FindByID(ctx context.Context, id string) (*models.Section, error)
}

type generatorSubjectReader interface {
	FindByScope(ctx context.Context, courseID, yearLevelID string, semester models.Semester) ([]models.Subject, error)
}

type generatorRoomReader interface {
	FindAll(ctx context.Context) ([]models.Room, error)
}

type generatorTimeSlotReader interface {
	FindAll(ctx context.Context) ([]models.TimeSlot, error)
}

type generatorScheduleStore interface {
	DeleteMany(ctx context.Context, scope models.ScheduleScope) (int64, error)
	Insert(ctx context.Context, schedule *models.Schedule) error
	Find(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error)
}

type scheduleCacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// ScheduleGeneratorConfig governs generator behaviour.
type ScheduleGeneratorConfig struct {
	DailyHourCeiling     float64
	WeekPasses           int
	ShuffleGrid          bool
	ConflictMode         string
	CheckRoom            bool
	CheckProfessor       bool
	RequiredHoursPolicy  string
	DefaultRequiredHours float64
	GridSource           string
	DayWindow            DayWindow
	DefaultAcademicYear  string
	// Seed fixes the shuffle order; zero seeds from the clock per run.
	Seed int64
}

// ScheduleGeneratorService runs schedule generation for a section or every section in a semester.
type ScheduleGeneratorService struct {
	sections   generatorSectionReader
	subjects   generatorSubjectReader
	rooms      generatorRoomReader
	professors professorFinder
	timeSlots  generatorTimeSlotReader
	schedules  generatorScheduleStore
	cache      scheduleCacheInvalidator
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        ScheduleGeneratorConfig
	policy     ConflictPolicy
}

// NewScheduleGeneratorService wires scheduler dependencies. Invalid conflict
// modes fall back to cross_cohort.
func NewScheduleGeneratorService(
	sections generatorSectionReader,
	subjects generatorSubjectReader,
	rooms generatorRoomReader,
	professors professorFinder,
	timeSlots generatorTimeSlotReader,
	schedules generatorScheduleStore,
	cache scheduleCacheInvalidator,
	metrics *MetricsService,
	validate *validator.Validate,
	log *zap.Logger,
	cfg ScheduleGeneratorConfig,
) *ScheduleGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.DayWindow == (DayWindow{}) {
		cfg.DayWindow = DefaultDayWindow()
	}
	if cfg.WeekPasses <= 0 {
		cfg.WeekPasses = DefaultWeekPasses
	}
	if cfg.GridSource == "" {
		cfg.GridSource = GridSourceDatabase
	}
	policy, err := ConflictPolicyFromMode(cfg.ConflictMode, cfg.CheckRoom, cfg.CheckProfessor)
	if err != nil {
		log.Warn("falling back to cross_cohort conflict mode", zap.Error(err))
		policy = ConflictPolicy{CheckCrossCohort: true, CheckRoom: cfg.CheckRoom, CheckProfessor: cfg.CheckProfessor}
	}
	return &ScheduleGeneratorService{
		sections:   sections,
		subjects:   subjects,
		rooms:      rooms,
		professors: professors,
		timeSlots:  timeSlots,
		schedules:  schedules,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     log,
		cfg:        cfg,
		policy:     policy,
	}
}

// generationPlan holds everything resolved before any row is deleted.
type generationPlan struct {
	targets     []models.Section
	allSections []models.Section
	subjects    map[models.CohortKey][]models.Subject
	grid        *TimeGrid
	rooms       []models.Room
	hours       RequiredHoursPolicy
}

// Generate deletes the requested scope and regenerates it. Precondition
// failures return before anything is mutated; placement failures are reported
// in the result rather than returned as errors.
func (s *ScheduleGeneratorService) Generate(ctx context.Context, req dto.GenerateSchedulesRequest) (*dto.GenerationReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}
	academicYear := req.AcademicYear
	if academicYear == "" {
		academicYear = s.cfg.DefaultAcademicYear
	}

	plan, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	runID := uuid.NewString()
	log := logger.WithContext(ctx, s.logger).With(
		zap.String("run_id", runID),
		zap.String("semester", string(req.Semester)),
		zap.String("academic_year", academicYear),
		zap.String("section_id", req.SectionID),
	)

	scope := models.ScheduleScope{SectionID: req.SectionID, Semester: req.Semester, AcademicYear: academicYear}
	deleted, err := s.schedules.DeleteMany(ctx, scope)
	if err != nil {
		s.metrics.ObserveScheduleRun(ScheduleRunError, time.Since(started), 0, 0)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear existing schedules")
	}
	log.Info("schedule generation started", zap.Int64("deleted", deleted), zap.Int("sections", len(plan.targets)), zap.Int("grid_size", plan.grid.Size()))

	existing, err := s.schedules.Find(ctx, models.ScheduleFilter{Semester: req.Semester})
	if err != nil {
		s.metrics.ObserveScheduleRun(ScheduleRunError, time.Since(started), 0, 0)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load committed schedules")
	}
	tracker := SeedBookingTracker(existing, indexSections(plan.allSections))

	seed := s.cfg.Seed
	if seed == 0 {
		seed = started.UnixNano()
	}
	allocator := NewSlotAllocator(plan.grid, tracker, s.schedules, s.professors, plan.rooms, AllocatorConfig{
		DailyCeiling: s.cfg.DailyHourCeiling,
		WeekPasses:   s.cfg.WeekPasses,
		Shuffle:      s.cfg.ShuffleGrid,
		Policy:       s.policy,
		Hours:        plan.hours,
	}, AllocationRun{
		RunID:        runID,
		Semester:     req.Semester,
		AcademicYear: academicYear,
		Rng:          rand.New(rand.NewSource(seed)),
	}, log)

	outcomes := make([]AllocationOutcome, 0)
	notices := make([]string, 0)
	processed := 0
	for _, section := range plan.targets {
		subjects := plan.subjects[section.Cohort()]
		if len(subjects) == 0 {
			notices = append(notices, fmt.Sprintf("%s: no subjects found for %s semester", section.Name, req.Semester))
			log.Info("section skipped without subjects", zap.String("section", section.Name))
			continue
		}
		sectionOutcomes, err := allocator.AllocateSection(ctx, section, subjects)
		outcomes = append(outcomes, sectionOutcomes...)
		if err != nil {
			log.Error("schedule generation aborted", zap.String("section", section.Name), zap.Int("placed_rows", countPlacements(outcomes)), zap.Error(err))
			s.metrics.ObserveScheduleRun(ScheduleRunError, time.Since(started), countPlacements(outcomes), 0)
			s.invalidateCache(ctx, log)
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "schedule generation aborted; scope may be partially regenerated")
		}
		processed++
	}

	report := BuildGenerationReport(ReportInput{
		RunID:        runID,
		Semester:     req.Semester,
		AcademicYear: academicYear,
		Sections:     plan.targets,
		Processed:    processed,
		Outcomes:     outcomes,
		Notices:      notices,
	})

	s.invalidateCache(ctx, log)
	status := ScheduleRunComplete
	if report.SubjectsFailed > 0 {
		status = ScheduleRunPartial
	}
	s.metrics.ObserveScheduleRun(status, time.Since(started), len(report.Schedules), report.SubjectsFailed)

	log.Info("schedule generation finished",
		zap.Int("subjects", report.TotalSubjects),
		zap.Int("scheduled", report.SubjectsScheduled),
		zap.Int("failed", report.SubjectsFailed),
		zap.Int("rows", len(report.Schedules)),
		zap.Duration("duration", time.Since(started)),
	)
	return report, nil
}

func (s *ScheduleGeneratorService) prepare(ctx context.Context, req dto.GenerateSchedulesRequest) (*generationPlan, error) {
	plan := &generationPlan{subjects: make(map[models.CohortKey][]models.Subject)}

	allSections, err := s.sections.FindByScope(ctx, models.SectionScope{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sections")
	}
	plan.allSections = allSections

	if req.SectionID != "" {
		section, err := s.sections.FindByID(ctx, req.SectionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
		}
		plan.targets = []models.Section{*section}
		if _, known := indexSections(allSections)[section.ID]; !known {
			plan.allSections = append(plan.allSections, *section)
		}
	} else {
		plan.targets = allSections
	}
	if len(plan.targets) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no sections found")
	}

	grid, err := s.loadGrid(ctx)
	if err != nil {
		return nil, err
	}
	plan.grid = grid

	hours, err := NewRequiredHoursPolicy(s.cfg.RequiredHoursPolicy, s.cfg.DefaultRequiredHours, grid.ShortestCellHours())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, "invalid required hours policy")
	}
	plan.hours = hours

	if s.policy.CheckRoom {
		if s.rooms == nil {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no rooms found")
		}
		rooms, err := s.rooms.FindAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
		}
		if len(rooms) == 0 {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no rooms found")
		}
		plan.rooms = rooms
	}

	total := 0
	for _, section := range plan.targets {
		cohort := section.Cohort()
		if _, loaded := plan.subjects[cohort]; loaded {
			total += len(plan.subjects[cohort])
			continue
		}
		subjects, err := s.subjects.FindByScope(ctx, cohort.CourseID, cohort.YearLevelID, req.Semester)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
		}
		plan.subjects[cohort] = subjects
		total += len(subjects)
	}
	if total == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no subjects found")
	}
	return plan, nil
}

func (s *ScheduleGeneratorService) loadGrid(ctx context.Context) (*TimeGrid, error) {
	var (
		cells []models.TimeSlot
		err   error
	)
	if s.cfg.GridSource == GridSourceDatabase {
		if s.timeSlots == nil {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no time slots found")
		}
		cells, err = s.timeSlots.FindAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
		}
	} else {
		cells, err = PresetSlots(GridPreset(s.cfg.GridSource))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, "invalid grid source")
		}
	}
	if len(cells) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no time slots found")
	}

	grid, err := NewTimeGrid(cells, s.cfg.DayWindow)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, fmt.Sprintf("invalid time grid: %v", err))
	}
	return grid, nil
}

func (s *ScheduleGeneratorService) invalidateCache(ctx context.Context, log *zap.Logger) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, scheduleCachePattern); err != nil {
		log.Warn("schedule cache invalidation failed", zap.Error(err))
	}
}

func countPlacements(outcomes []AllocationOutcome) int {
	total := 0
	for _, outcome := range outcomes {
		total += len(outcome.Placements)
	}
	return total
}
