package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

var scheduleDetailColumns = []string{
	"id", "run_id", "section_id", "subject_id", "day", "start_time", "end_time", "semester", "academic_year", "room_id", "professor_id", "created_at", "updated_at",
	"section_name", "subject_code", "subject_name", "room_name", "professor_name",
}

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func newSchedule() *models.Schedule {
	return &models.Schedule{
		RunID:     "run-1",
		SectionID: "sec-1",
		SubjectID: "sub-1",
		Day:       models.Monday,
		StartTime: models.MustClock("08:00"),
		EndTime:   models.MustClock("11:00"),
		Semester:  models.SemesterFirst,
	}
}

func TestScheduleRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedules")).
		WithArgs(sqlmock.AnyArg(), "run-1", "sec-1", "sub-1", "Monday", "08:00", "11:00", "1st", nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	schedule := newSchedule()
	require.NoError(t, repo.Insert(context.Background(), schedule))
	assert.NotEmpty(t, schedule.ID)
	assert.False(t, schedule.CreatedAt.IsZero())
	assert.Equal(t, schedule.CreatedAt, schedule.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryInsertMapsUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedules")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Insert(context.Background(), newSchedule())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDuplicateSchedule))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryInsertPassesOtherErrors(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedules")).
		WillReturnError(&pq.Error{Code: "23503", Message: "foreign key violation"})

	err := repo.Insert(context.Background(), newSchedule())
	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrDuplicateSchedule))
}

func TestScheduleRepositoryDeleteMany(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedules WHERE section_id = $1 AND semester = $2")).
		WithArgs("sec-1", "1st").
		WillReturnResult(sqlmock.NewResult(0, 4))

	removed, err := repo.DeleteMany(context.Background(), models.ScheduleScope{SectionID: "sec-1", Semester: models.SemesterFirst})
	require.NoError(t, err)
	assert.EqualValues(t, 4, removed)

	mock.ExpectExec("^DELETE FROM schedules$").WillReturnResult(sqlmock.NewResult(0, 10))
	removed, err = repo.DeleteMany(context.Background(), models.ScheduleScope{})
	require.NoError(t, err)
	assert.EqualValues(t, 10, removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFind(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows(scheduleDetailColumns[:13]).
		AddRow("sch-1", "run-1", "sec-1", "sub-1", "Monday", "08:00:00", "11:00:00", "1st", "2025-2026", nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedules WHERE semester = $1 AND academic_year = $2 ORDER BY section_id, day, start_time")).
		WithArgs("1st", "2025-2026").
		WillReturnRows(rows)

	schedules, err := repo.Find(context.Background(), models.ScheduleFilter{Semester: models.SemesterFirst, AcademicYear: "2025-2026"})
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, models.MustClock("08:00"), schedules[0].StartTime)
	assert.Equal(t, models.MustClock("11:00"), schedules[0].EndTime)
	require.NotNil(t, schedules[0].AcademicYear)
	assert.Equal(t, "2025-2026", *schedules[0].AcademicYear)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListPaginatesAndCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows(scheduleDetailColumns).
		AddRow("sch-1", "run-1", "sec-1", "sub-1", "Tuesday", "08:00", "11:00", "1st", nil, "room-1", nil, time.Now(), time.Now(),
			"BSIT 1-A", "IT101", "Intro to Computing", "R101", nil)
	mock.ExpectQuery(`LEFT JOIN professors p ON p.id = s.professor_id WHERE s.semester = \$1 ORDER BY sec.name DESC, s.start_time ASC, sec.name ASC LIMIT 10 OFFSET 10`).
		WithArgs("1st").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedules s WHERE s.semester = $1")).
		WithArgs("1st").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	items, total, err := repo.List(context.Background(), models.ScheduleFilter{
		Semester:  models.SemesterFirst,
		Page:      2,
		PageSize:  10,
		SortBy:    "section",
		SortOrder: "desc",
	})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, items, 1)
	assert.Equal(t, "BSIT 1-A", items[0].SectionName)
	require.NotNil(t, items[0].RoomName)
	assert.Equal(t, "R101", *items[0].RoomName)
	assert.Nil(t, items[0].ProfessorName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListFallsBackToDayOrder(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(`ORDER BY CASE s.day WHEN 'Monday' THEN 1 .* END ASC, s.start_time ASC, sec.name ASC LIMIT 50 OFFSET 0`).
		WillReturnRows(sqlmock.NewRows(scheduleDetailColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedules s")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	items, total, err := repo.List(context.Background(), models.ScheduleFilter{SortBy: "1; DROP TABLE schedules", SortOrder: "sideways"})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindDetailsOrdersByTimetable(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows(scheduleDetailColumns).
		AddRow("sch-1", "run-1", "sec-1", "sub-1", "Monday", "08:00", "11:00", "1st", nil, nil, "prof-1", time.Now(), time.Now(),
			"BSIT 1-A", "IT101", "Intro to Computing", nil, "prof.santos")
	mock.ExpectQuery(`WHERE s.section_id = \$1 AND s.semester = \$2 ORDER BY sec.sort_order ASC, sec.name ASC, CASE s.day .* END, s.start_time ASC`).
		WithArgs("sec-1", "1st").
		WillReturnRows(rows)

	details, err := repo.FindDetails(context.Background(), models.ScheduleFilter{SectionID: "sec-1", Semester: models.SemesterFirst})
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.NotNil(t, details[0].ProfessorName)
	assert.Equal(t, "prof.santos", *details[0].ProfessorName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}
