package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

const pqUniqueViolation = "23505"

const scheduleColumns = "id, run_id, section_id, subject_id, day, start_time, end_time, semester, academic_year, room_id, professor_id, created_at, updated_at"

const scheduleDetailSelect = `SELECT s.id, s.run_id, s.section_id, s.subject_id, s.day, s.start_time, s.end_time, s.semester, s.academic_year, s.room_id, s.professor_id, s.created_at, s.updated_at,
sec.name AS section_name, sub.code AS subject_code, sub.name AS subject_name, r.name AS room_name, p.username AS professor_name
FROM schedules s
JOIN sections sec ON sec.id = s.section_id
JOIN subjects sub ON sub.id = s.subject_id
LEFT JOIN rooms r ON r.id = s.room_id
LEFT JOIN professors p ON p.id = s.professor_id`

const dayOrderExpr = "CASE s.day WHEN 'Monday' THEN 1 WHEN 'Tuesday' THEN 2 WHEN 'Wednesday' THEN 3 WHEN 'Thursday' THEN 4 WHEN 'Friday' THEN 5 WHEN 'Saturday' THEN 6 ELSE 7 END"

// ScheduleRepository provides persistence for generated schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Insert stores one placement. A unique violation on the section cell is
// reported as models.ErrDuplicateSchedule.
func (r *ScheduleRepository) Insert(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	if schedule.UpdatedAt.IsZero() {
		schedule.UpdatedAt = schedule.CreatedAt
	}

	const query = `INSERT INTO schedules (id, run_id, section_id, subject_id, day, start_time, end_time, semester, academic_year, room_id, professor_id, created_at, updated_at)
VALUES (:id, :run_id, :section_id, :subject_id, :day, :start_time, :end_time, :semester, :academic_year, :room_id, :professor_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return fmt.Errorf("create schedule: %w", models.ErrDuplicateSchedule)
		}
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// DeleteMany removes rows matching scope; an empty scope clears the table.
func (r *ScheduleRepository) DeleteMany(ctx context.Context, scope models.ScheduleScope) (int64, error) {
	var conditions []string
	var args []interface{}
	if scope.SectionID != "" {
		args = append(args, scope.SectionID)
		conditions = append(conditions, fmt.Sprintf("section_id = $%d", len(args)))
	}
	if scope.Semester != "" {
		args = append(args, scope.Semester)
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)))
	}
	if scope.AcademicYear != "" {
		args = append(args, scope.AcademicYear)
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)))
	}

	query := "DELETE FROM schedules"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete schedules: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete schedules rows affected: %w", err)
	}
	return affected, nil
}

// Find returns raw schedule rows for the filter, unpaginated.
func (r *ScheduleRepository) Find(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error) {
	where, args := scheduleConditions(filter, "")
	query := fmt.Sprintf("SELECT %s FROM schedules%s ORDER BY section_id, day, start_time", scheduleColumns, where)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, fmt.Errorf("find schedules: %w", err)
	}
	return schedules, nil
}

// List returns joined schedules with optional filtering and pagination.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, int, error) {
	where, args := scheduleConditions(filter, "s.")

	allowedSorts := map[string]string{
		"day":        dayOrderExpr,
		"start_time": "s.start_time",
		"section":    "sec.name",
		"subject":    "sub.code",
		"semester":   "s.semester",
		"created_at": "s.created_at",
	}
	sortExpr, ok := allowedSorts[filter.SortBy]
	if !ok {
		sortExpr = allowedSorts["day"]
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("%s%s ORDER BY %s %s, s.start_time ASC, sec.name ASC LIMIT %d OFFSET %d", scheduleDetailSelect, where, sortExpr, order, size, offset)
	var schedules []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM schedules s%s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}
	return schedules, total, nil
}

// FindDetails returns every joined schedule matching the filter in timetable order.
func (r *ScheduleRepository) FindDetails(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, error) {
	where, args := scheduleConditions(filter, "s.")
	query := fmt.Sprintf("%s%s ORDER BY sec.sort_order ASC, sec.name ASC, %s, s.start_time ASC", scheduleDetailSelect, where, dayOrderExpr)
	var schedules []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, fmt.Errorf("find schedule details: %w", err)
	}
	return schedules, nil
}

// FindByID loads a joined schedule by id.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.ScheduleDetail, error) {
	query := scheduleDetailSelect + " WHERE s.id = $1"
	var detail models.ScheduleDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return &detail, nil
}

func scheduleConditions(filter models.ScheduleFilter, alias string) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s%s = $%d", alias, column, len(args)))
	}
	if filter.SectionID != "" {
		add("section_id", filter.SectionID)
	}
	if filter.SubjectID != "" {
		add("subject_id", filter.SubjectID)
	}
	if filter.Semester != "" {
		add("semester", filter.Semester)
	}
	if filter.AcademicYear != "" {
		add("academic_year", filter.AcademicYear)
	}
	if filter.Day != "" {
		add("day", filter.Day)
	}
	if filter.RoomID != "" {
		add("room_id", filter.RoomID)
	}
	if filter.ProfessorID != "" {
		add("professor_id", filter.ProfessorID)
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
