package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

// DefaultWeekPasses bounds placement attempts per subject to this many sweeps of the grid.
const DefaultWeekPasses = 4

type scheduleInserter interface {
	Insert(ctx context.Context, schedule *models.Schedule) error
}

type professorFinder interface {
	FindPreferring(ctx context.Context, sectionID, subjectID string) ([]models.Professor, error)
}

// AllocatorConfig tunes one allocation run.
type AllocatorConfig struct {
	DailyCeiling float64
	WeekPasses   int
	Shuffle      bool
	Policy       ConflictPolicy
	Hours        RequiredHoursPolicy
}

// MaxAttempts returns the per-subject attempt budget for a grid of gridSize cells.
func (c AllocatorConfig) MaxAttempts(gridSize int) int {
	passes := c.WeekPasses
	if passes <= 0 {
		passes = DefaultWeekPasses
	}
	return gridSize * passes
}

// skipCounts tallies why candidate cells were rejected.
type skipCounts struct {
	PreferredDay int `json:"preferredDay,omitempty"`
	DailyCeiling int `json:"dailyCeiling,omitempty"`
	Conflict     int `json:"conflict,omitempty"`
	Duplicate    int `json:"duplicate,omitempty"`
	NoRoom       int `json:"noRoom,omitempty"`
	NoProfessor  int `json:"noProfessor,omitempty"`
}

// AllocationOutcome is the result of placing one subject for one section.
type AllocationOutcome struct {
	Section        models.Section
	Subject        models.Subject
	Semester       models.Semester
	RequiredHours  float64
	ScheduledHours float64
	Attempts       int
	Placements     []models.Schedule
	Skips          skipCounts
}

// Scheduled reports whether the subject reached its required hours.
func (o AllocationOutcome) Scheduled() bool {
	return o.ScheduledHours+hoursEpsilon >= o.RequiredHours
}

// Reason explains an unmet requirement.
func (o AllocationOutcome) Reason() string {
	if o.Scheduled() {
		return ""
	}
	s := o.Skips
	return fmt.Sprintf("attempt budget of %d exhausted (daily ceiling %d, conflicts %d, duplicates %d, no room %d, no professor %d)",
		o.Attempts, s.DailyCeiling, s.Conflict, s.Duplicate, s.NoRoom, s.NoProfessor)
}

// SlotAllocator is the greedy bounded slot filler. One allocator serves one
// generation run and shares that run's BookingTracker across sections.
type SlotAllocator struct {
	grid         *TimeGrid
	tracker      *BookingTracker
	checker      *ConflictChecker
	load         *LoadTracker
	writer       scheduleInserter
	professors   professorFinder
	rooms        []models.Room
	cfg          AllocatorConfig
	rng          *rand.Rand
	runID        string
	semester     models.Semester
	academicYear string
	logger       *zap.Logger
	now          func() time.Time
	newID        func() string
}

// AllocationRun identifies the run an allocator writes for.
type AllocationRun struct {
	RunID        string
	Semester     models.Semester
	AcademicYear string
	Rng          *rand.Rand
}

// NewSlotAllocator wires an allocator for a single run.
func NewSlotAllocator(
	grid *TimeGrid,
	tracker *BookingTracker,
	writer scheduleInserter,
	professors professorFinder,
	rooms []models.Room,
	cfg AllocatorConfig,
	run AllocationRun,
	logger *zap.Logger,
) *SlotAllocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracker == nil {
		tracker = NewBookingTracker()
	}
	if run.Rng == nil {
		run.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	return &SlotAllocator{
		grid:         grid,
		tracker:      tracker,
		checker:      NewConflictChecker(tracker, cfg.Policy),
		load:         NewLoadTracker(tracker, run.Semester, run.AcademicYear),
		writer:       writer,
		professors:   professors,
		rooms:        rooms,
		cfg:          cfg,
		rng:          run.Rng,
		runID:        run.RunID,
		semester:     run.Semester,
		academicYear: run.AcademicYear,
		logger:       logger,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// sortSubjectsForPlacement orders heavier subjects first, then by code.
func sortSubjectsForPlacement(subjects []models.Subject) []models.Subject {
	sorted := make([]models.Subject, len(subjects))
	copy(sorted, subjects)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Units != sorted[j].Units {
			return sorted[i].Units > sorted[j].Units
		}
		return sorted[i].Code < sorted[j].Code
	})
	return sorted
}

// AllocateSection places every subject for section. Placement failures are
// returned as outcomes; only unexpected persistence errors abort.
func (a *SlotAllocator) AllocateSection(ctx context.Context, section models.Section, subjects []models.Subject) ([]AllocationOutcome, error) {
	cells := a.grid.Slots()
	if a.cfg.Shuffle {
		cells = a.grid.Shuffled(a.rng)
	}
	gridSize := len(cells)
	maxAttempts := a.cfg.MaxAttempts(gridSize)

	outcomes := make([]AllocationOutcome, 0, len(subjects))
	cursor := 0
	for _, subject := range sortSubjectsForPlacement(subjects) {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		outcome, next, err := a.allocateSubject(ctx, section, subject, cells, cursor, maxAttempts)
		cursor = next
		if err != nil {
			return outcomes, err
		}
		if !outcome.Scheduled() {
			a.logger.Warn("subject not fully scheduled",
				zap.String("run_id", a.runID),
				zap.String("section", section.Name),
				zap.String("subject", subject.Code),
				zap.Float64("scheduled_hours", outcome.ScheduledHours),
				zap.Float64("required_hours", outcome.RequiredHours),
				zap.Int("attempts", outcome.Attempts),
			)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (a *SlotAllocator) allocateSubject(
	ctx context.Context,
	section models.Section,
	subject models.Subject,
	cells []models.TimeSlot,
	cursor, maxAttempts int,
) (AllocationOutcome, int, error) {
	outcome := AllocationOutcome{
		Section:        section,
		Subject:        subject,
		Semester:       a.semester,
		RequiredHours:  a.cfg.Hours.RequiredHours(subject),
		ScheduledHours: a.load.SubjectHours(section.ID, subject.ID),
	}

	var candidates []models.Professor
	if a.cfg.Policy.CheckProfessor && a.professors != nil {
		found, err := a.professors.FindPreferring(ctx, section.ID, subject.ID)
		if err != nil {
			return outcome, cursor, fmt.Errorf("load professors for subject %s: %w", subject.Code, err)
		}
		candidates = found
	}

	gridSize := len(cells)
	for outcome.ScheduledHours+hoursEpsilon < outcome.RequiredHours && outcome.Attempts < maxAttempts {
		cell := cells[cursor%gridSize]
		cursor++
		outcome.Attempts++

		if subject.PreferredDay != nil && outcome.Attempts <= gridSize && cell.Day != *subject.PreferredDay {
			outcome.Skips.PreferredDay++
			continue
		}

		hours := cell.Hours()
		if a.load.WouldExceedDaily(section.ID, cell.Day, hours, a.cfg.DailyCeiling) {
			outcome.Skips.DailyCeiling++
			continue
		}

		candidate := Booking{
			SectionID:    section.ID,
			Cohort:       section.Cohort(),
			SubjectID:    subject.ID,
			Day:          cell.Day,
			Start:        cell.StartTime,
			End:          cell.EndTime,
			Semester:     a.semester,
			AcademicYear: a.academicYear,
		}
		if a.checker.HasConflict(candidate) {
			outcome.Skips.Conflict++
			continue
		}

		if a.cfg.Policy.CheckRoom {
			roomID, ok := a.pickRoom(candidate)
			if !ok {
				outcome.Skips.NoRoom++
				continue
			}
			candidate.RoomID = roomID
		}
		if a.cfg.Policy.CheckProfessor && len(candidates) > 0 {
			professorID, ok := a.pickProfessor(candidate, candidates)
			if !ok {
				outcome.Skips.NoProfessor++
				continue
			}
			candidate.ProfessorID = professorID
		}

		row := models.Schedule{
			ID:           a.newID(),
			RunID:        a.runID,
			SectionID:    section.ID,
			SubjectID:    subject.ID,
			Day:          cell.Day,
			StartTime:    cell.StartTime,
			EndTime:      cell.EndTime,
			Semester:     a.semester,
			AcademicYear: stringPtr(a.academicYear),
			RoomID:       stringPtr(candidate.RoomID),
			ProfessorID:  stringPtr(candidate.ProfessorID),
		}
		row.CreatedAt = a.now().UTC()
		row.UpdatedAt = row.CreatedAt

		if err := a.writer.Insert(ctx, &row); err != nil {
			if errors.Is(err, models.ErrDuplicateSchedule) {
				outcome.Skips.Duplicate++
				continue
			}
			return outcome, cursor, fmt.Errorf("insert schedule for section %s subject %s: %w", section.Name, subject.Code, err)
		}

		candidate.ScheduleID = row.ID
		a.tracker.Record(candidate)
		outcome.ScheduledHours += hours
		outcome.Placements = append(outcome.Placements, row)
	}
	return outcome, cursor, nil
}

// pickRoom returns the first room free for the candidate interval.
func (a *SlotAllocator) pickRoom(candidate Booking) (string, bool) {
	for _, room := range a.rooms {
		candidate.RoomID = room.ID
		if !a.checker.HasConflict(candidate) {
			return room.ID, true
		}
	}
	return "", false
}

// pickProfessor returns the first preferring professor who is available and free.
func (a *SlotAllocator) pickProfessor(candidate Booking, professors []models.Professor) (string, bool) {
	for _, professor := range professors {
		if !professor.AvailableAt(candidate.Day, candidate.Start, candidate.End) {
			continue
		}
		candidate.ProfessorID = professor.ID
		if !a.checker.HasConflict(candidate) {
			return professor.ID, true
		}
	}
	return "", false
}
