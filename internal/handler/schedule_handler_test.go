package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	"github.com/noah-isme/class-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/class-scheduler-api/pkg/errors"
)

type scheduleReaderStub struct {
	filter      models.ScheduleFilter
	sectionID   string
	semester    models.Semester
	deleteScope dto.DeleteSchedulesRequest
}

func (s *scheduleReaderStub) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, *models.Pagination, error) {
	s.filter = filter
	return []models.ScheduleDetail{{SectionName: "BSIT 1-A"}}, models.NewPagination(filter.Page, filter.PageSize, 1), nil
}

func (s *scheduleReaderStub) Get(ctx context.Context, id string) (*models.ScheduleDetail, error) {
	if id != "sch-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
	}
	detail := &models.ScheduleDetail{SubjectCode: "IT101"}
	detail.ID = id
	return detail, nil
}

func (s *scheduleReaderStub) ListBySection(ctx context.Context, sectionID string, semester models.Semester) ([]models.ScheduleDetail, error) {
	s.sectionID = sectionID
	s.semester = semester
	return []models.ScheduleDetail{}, nil
}

func (s *scheduleReaderStub) ListBySemester(ctx context.Context, semester models.Semester) ([]models.ScheduleDetail, error) {
	if !semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester must be 1st or 2nd")
	}
	s.semester = semester
	return []models.ScheduleDetail{}, nil
}

func (s *scheduleReaderStub) DeleteScope(ctx context.Context, req dto.DeleteSchedulesRequest) (*dto.DeleteSchedulesResponse, error) {
	s.deleteScope = req
	return &dto.DeleteSchedulesResponse{Deleted: 7}, nil
}

func newScheduleRouter(stub *scheduleReaderStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewScheduleHandler(stub)
	router := gin.New()
	router.GET("/schedules", h.List)
	router.DELETE("/schedules", h.Delete)
	router.GET("/schedules/semester/:semester", h.ListBySemester)
	router.GET("/schedules/:id", h.Get)
	router.GET("/sections/:id/schedules", h.ListBySection)
	return router
}

func serve(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestScheduleHandlerListParsesFilters(t *testing.T) {
	stub := &scheduleReaderStub{}
	w := serve(newScheduleRouter(stub), http.MethodGet, "/schedules?semester=1st&day=tue&page=2&limit=10&sort=section&order=desc&roomId=room-1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SemesterFirst, stub.filter.Semester)
	assert.Equal(t, models.Tuesday, stub.filter.Day)
	assert.Equal(t, 2, stub.filter.Page)
	assert.Equal(t, 10, stub.filter.PageSize)
	assert.Equal(t, "section", stub.filter.SortBy)
	assert.Equal(t, "room-1", stub.filter.RoomID)

	var body struct {
		Pagination models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Pagination.TotalCount)
}

func TestScheduleHandlerListRejectsUnknownDay(t *testing.T) {
	w := serve(newScheduleRouter(&scheduleReaderStub{}), http.MethodGet, "/schedules?day=sunday")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerGet(t *testing.T) {
	router := newScheduleRouter(&scheduleReaderStub{})

	w := serve(router, http.MethodGet, "/schedules/sch-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "IT101")

	w = serve(router, http.MethodGet, "/schedules/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleHandlerListBySemesterAndSection(t *testing.T) {
	stub := &scheduleReaderStub{}
	router := newScheduleRouter(stub)

	w := serve(router, http.MethodGet, "/schedules/semester/2nd")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SemesterSecond, stub.semester)

	w = serve(router, http.MethodGet, "/schedules/semester/3rd")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, http.MethodGet, "/sections/sec-9/schedules?semester=1st")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sec-9", stub.sectionID)
	assert.Equal(t, models.SemesterFirst, stub.semester)
}

func TestScheduleHandlerDeleteBindsScope(t *testing.T) {
	stub := &scheduleReaderStub{}
	w := serve(newScheduleRouter(stub), http.MethodDelete, "/schedules?sectionId=sec-1&semester=1st")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sec-1", stub.deleteScope.SectionID)
	assert.Equal(t, models.SemesterFirst, stub.deleteScope.Semester)
	assert.Contains(t, w.Body.String(), `"deleted":7`)
}
