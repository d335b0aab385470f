package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

var sectionColumns = []string{"id", "name", "course_id", "year_level_id", "capacity", "sort_order", "created_at", "course_code", "year_name"}

func TestSectionRepositoryFindByScope(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	rows := sqlmock.NewRows(sectionColumns).
		AddRow("sec-1", "BSIT 1-A", "bsit", "y1", 40, 1, time.Now(), "BSIT", "1st").
		AddRow("sec-2", "BSIT 1-B", "bsit", "y1", 0, 2, time.Now(), "BSIT", "1st")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE sec.course_id = $1 AND sec.year_level_id = $2 ORDER BY sec.sort_order ASC, sec.name ASC")).
		WithArgs("bsit", "y1").
		WillReturnRows(rows)

	sections, err := repo.FindByScope(context.Background(), models.SectionScope{CourseID: "bsit", YearLevelID: "y1"})
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "BSIT", sections[0].CourseCode)
	assert.Equal(t, models.DefaultSectionCapacity, sections[1].Capacity)
	assert.Equal(t, models.CohortKey{CourseID: "bsit", YearLevelID: "y1"}, sections[1].Cohort())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryFindByScopeWithoutFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN year_levels y ON y.id = sec.year_level_id ORDER BY sec.sort_order ASC")).
		WillReturnRows(sqlmock.NewRows(sectionColumns))

	sections, err := repo.FindByScope(context.Background(), models.SectionScope{})
	require.NoError(t, err)
	assert.Empty(t, sections)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE sec.id = $1")).
		WithArgs("sec-1").
		WillReturnRows(sqlmock.NewRows(sectionColumns).AddRow("sec-1", "BSIT 1-A", "bsit", "y1", 40, 1, time.Now(), "BSIT", "1st"))

	section, err := repo.FindByID(context.Background(), "sec-1")
	require.NoError(t, err)
	assert.Equal(t, "BSIT 1-A", section.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryFindByScope(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	rows := sqlmock.NewRows([]string{"id", "code", "name", "course_id", "year_level_id", "semester", "units", "hours_per_week", "preferred_day", "created_at"}).
		AddRow("sub-1", "IT101", "Intro to Computing", "bsit", "y1", "1st", 3.0, nil, "Wednesday", time.Now()).
		AddRow("sub-2", "IT102", "Programming 1", "bsit", "y1", "1st", 4.0, 4.5, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects WHERE course_id = $1 AND year_level_id = $2 AND semester = $3 ORDER BY code ASC")).
		WithArgs("bsit", "y1", "1st").
		WillReturnRows(rows)

	subjects, err := repo.FindByScope(context.Background(), "bsit", "y1", models.SemesterFirst)
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	require.NotNil(t, subjects[0].PreferredDay)
	assert.Equal(t, models.Wednesday, *subjects[0].PreferredDay)
	assert.Nil(t, subjects[0].HoursPerWeek)
	require.NotNil(t, subjects[1].HoursPerWeek)
	assert.Equal(t, 4.5, *subjects[1].HoursPerWeek)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomAndTimeSlotRepositories(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM rooms ORDER BY name ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("room-1", "R101").AddRow("room-2", "R102"))
	rooms, err := NewRoomRepository(db).FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, rooms, 2)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, day, start_time, end_time, sequence FROM time_slots")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "day", "start_time", "end_time", "sequence"}).
			AddRow("ts-1", "Monday", "08:00:00", "11:00:00", 1))
	slots, err := NewTimeSlotRepository(db).FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, 3.0, slots[0].Hours())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfessorRepositoryFindPreferring(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProfessorRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT p.id, p.username FROM professors p")).
		WithArgs("sec-1", "sub-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow("prof-1", "prof.reyes").AddRow("prof-2", "prof.santos"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM professor_preferred_sections WHERE professor_id IN (?, ?)")).
		WithArgs("prof-1", "prof-2").
		WillReturnRows(sqlmock.NewRows([]string{"professor_id", "target_id"}).AddRow("prof-2", "sec-1"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM professor_preferred_subjects WHERE professor_id IN (?, ?)")).
		WithArgs("prof-1", "prof-2").
		WillReturnRows(sqlmock.NewRows([]string{"professor_id", "target_id"}).AddRow("prof-1", "sub-1"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM professor_availability WHERE professor_id IN (?, ?)")).
		WithArgs("prof-1", "prof-2").
		WillReturnRows(sqlmock.NewRows([]string{"professor_id", "day", "start_time", "end_time"}).
			AddRow("prof-1", "Monday", "08:00", "12:00"))

	professors, err := repo.FindPreferring(context.Background(), "sec-1", "sub-1")
	require.NoError(t, err)
	require.Len(t, professors, 2)

	reyes, santos := professors[0], professors[1]
	assert.True(t, reyes.Prefers("sec-9", "sub-1"))
	assert.True(t, santos.Prefers("sec-1", "sub-9"))
	assert.True(t, reyes.AvailableAt(models.Monday, models.MustClock("08:00"), models.MustClock("11:00")))
	assert.False(t, reyes.AvailableAt(models.Tuesday, models.MustClock("08:00"), models.MustClock("11:00")))
	assert.True(t, santos.AvailableAt(models.Saturday, models.MustClock("14:00"), models.MustClock("17:00")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfessorRepositoryFindPreferringNone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProfessorRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT p.id, p.username FROM professors p")).
		WithArgs("sec-1", "sub-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	professors, err := repo.FindPreferring(context.Background(), "sec-1", "sub-1")
	require.NoError(t, err)
	assert.Empty(t, professors)
	require.NoError(t, mock.ExpectationsWereMet())
}
