package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	"github.com/noah-isme/class-scheduler-api/internal/models"
)

type stubScheduleRepository struct {
	details    []models.ScheduleDetail
	listCalls  int
	lastFilter models.ScheduleFilter
	lastScope  models.ScheduleScope
	deleted    int64
}

func (s *stubScheduleRepository) List(_ context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, int, error) {
	s.listCalls++
	s.lastFilter = filter
	return s.details, len(s.details), nil
}

func (s *stubScheduleRepository) FindDetails(_ context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, error) {
	s.lastFilter = filter
	result := make([]models.ScheduleDetail, 0)
	for _, d := range s.details {
		if filter.SectionID != "" && d.SectionID != filter.SectionID {
			continue
		}
		if filter.Semester != "" && d.Semester != filter.Semester {
			continue
		}
		result = append(result, d)
	}
	return result, nil
}

func (s *stubScheduleRepository) FindByID(_ context.Context, id string) (*models.ScheduleDetail, error) {
	for _, d := range s.details {
		if d.ID == id {
			found := d
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubScheduleRepository) DeleteMany(_ context.Context, scope models.ScheduleScope) (int64, error) {
	s.lastScope = scope
	return s.deleted, nil
}

func scheduleDetail(id, sectionID string, semester models.Semester) models.ScheduleDetail {
	return models.ScheduleDetail{
		Schedule: models.Schedule{
			ID:        id,
			SectionID: sectionID,
			Day:       models.Monday,
			StartTime: models.MustClock("08:00"),
			EndTime:   models.MustClock("11:00"),
			Semester:  semester,
		},
		SubjectCode: "IT101",
	}
}

func newScheduleServiceFixture(cacheEnabled bool) (*ScheduleService, *stubScheduleRepository, *memoryCacheRepo) {
	repo := &stubScheduleRepository{details: []models.ScheduleDetail{
		scheduleDetail("s1", sectionBSIT1A.ID, models.SemesterFirst),
		scheduleDetail("s2", sectionBSIT1A.ID, models.SemesterSecond),
		scheduleDetail("s3", sectionBSCS1A.ID, models.SemesterFirst),
	}}
	cacheRepo := newMemoryCacheRepo()
	cache := NewCacheService(cacheRepo, nil, 0, nil, cacheEnabled)
	sections := &stubSectionReader{sections: []models.Section{sectionBSIT1A, sectionBSCS1A}}
	return NewScheduleService(repo, sections, cache, 0, nil, nil), repo, cacheRepo
}

func TestScheduleServiceListDefaultsAndCache(t *testing.T) {
	svc, repo, _ := newScheduleServiceFixture(true)

	items, pagination, err := svc.List(context.Background(), models.ScheduleFilter{PageSize: 1000})
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, maxSchedulePageSize, pagination.PageSize)
	assert.Equal(t, 3, pagination.TotalCount)
	assert.Equal(t, 1, pagination.TotalPages)
	assert.Equal(t, maxSchedulePageSize, repo.lastFilter.PageSize)

	_, _, err = svc.List(context.Background(), models.ScheduleFilter{PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls, "second call served from cache")
}

func TestScheduleServiceListValidatesFilter(t *testing.T) {
	svc, _, _ := newScheduleServiceFixture(false)

	_, _, err := svc.List(context.Background(), models.ScheduleFilter{Semester: "summer"})
	assertAppError(t, err, http.StatusBadRequest)

	_, _, err = svc.List(context.Background(), models.ScheduleFilter{Day: "Sunday"})
	assertAppError(t, err, http.StatusBadRequest)
}

func TestScheduleServiceListBySection(t *testing.T) {
	svc, _, _ := newScheduleServiceFixture(false)

	items, err := svc.ListBySection(context.Background(), sectionBSIT1A.ID, models.SemesterFirst)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "s1", items[0].ID)

	items, err = svc.ListBySection(context.Background(), sectionBSIT1A.ID, "")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = svc.ListBySection(context.Background(), "missing", "")
	assertAppError(t, err, http.StatusNotFound)
}

func TestScheduleServiceListBySemester(t *testing.T) {
	svc, _, _ := newScheduleServiceFixture(false)

	items, err := svc.ListBySemester(context.Background(), models.SemesterFirst)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = svc.ListBySemester(context.Background(), "")
	assertAppError(t, err, http.StatusBadRequest)
}

func TestScheduleServiceGet(t *testing.T) {
	svc, _, _ := newScheduleServiceFixture(false)

	detail, err := svc.Get(context.Background(), "s3")
	require.NoError(t, err)
	assert.Equal(t, sectionBSCS1A.ID, detail.SectionID)

	_, err = svc.Get(context.Background(), "nope")
	assertAppError(t, err, http.StatusNotFound)
}

func TestScheduleServiceDeleteScopeInvalidatesCache(t *testing.T) {
	svc, repo, cacheRepo := newScheduleServiceFixture(true)
	repo.deleted = 2

	_, _, err := svc.List(context.Background(), models.ScheduleFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, cacheRepo.values)

	resp, err := svc.DeleteScope(context.Background(), dto.DeleteSchedulesRequest{SectionID: sectionBSIT1A.ID, Semester: models.SemesterFirst})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Deleted)
	assert.Equal(t, models.ScheduleScope{SectionID: sectionBSIT1A.ID, Semester: models.SemesterFirst}, repo.lastScope)
	assert.Empty(t, cacheRepo.values)

	_, err = svc.DeleteScope(context.Background(), dto.DeleteSchedulesRequest{Semester: "3rd"})
	assertAppError(t, err, http.StatusBadRequest)
}
