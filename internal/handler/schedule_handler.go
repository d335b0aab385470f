package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	"github.com/noah-isme/class-scheduler-api/internal/middleware"
	"github.com/noah-isme/class-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/class-scheduler-api/pkg/errors"
	"github.com/noah-isme/class-scheduler-api/pkg/response"
)

type scheduleReader interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.ScheduleDetail, error)
	ListBySection(ctx context.Context, sectionID string, semester models.Semester) ([]models.ScheduleDetail, error)
	ListBySemester(ctx context.Context, semester models.Semester) ([]models.ScheduleDetail, error)
	DeleteScope(ctx context.Context, req dto.DeleteSchedulesRequest) (*dto.DeleteSchedulesResponse, error)
}

// ScheduleHandler serves generated schedules.
type ScheduleHandler struct {
	service scheduleReader
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(svc scheduleReader) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// List godoc
// @Summary List schedules
// @Tags Schedules
// @Produce json
// @Param sectionId query string false "Filter by section"
// @Param subjectId query string false "Filter by subject"
// @Param semester query string false "1st or 2nd"
// @Param academicYear query string false "Filter by academic year"
// @Param day query string false "Day name, full or three letters"
// @Param roomId query string false "Filter by room"
// @Param professorId query string false "Filter by professor"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "day, start_time, section, subject, semester or created_at"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	filter := models.ScheduleFilter{
		SectionID:    c.Query("sectionId"),
		SubjectID:    c.Query("subjectId"),
		Semester:     models.Semester(c.Query("semester")),
		AcademicYear: c.Query("academicYear"),
		RoomID:       c.Query("roomId"),
		ProfessorID:  c.Query("professorId"),
		SortBy:       c.Query("sort"),
		SortOrder:    c.Query("order"),
	}
	if raw := c.Query("day"); raw != "" {
		day, err := models.ParseWeekday(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "day must be Monday through Saturday"))
			return
		}
		filter.Day = day
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = limit
	}

	schedules, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, pagination, middleware.ResponseMeta(c))
}

// Get godoc
// @Summary Get schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, schedule)
}

// ListBySemester godoc
// @Summary List schedules for a semester
// @Tags Schedules
// @Produce json
// @Param semester path string true "1st or 2nd"
// @Success 200 {object} response.Envelope
// @Router /schedules/semester/{semester} [get]
func (h *ScheduleHandler) ListBySemester(c *gin.Context) {
	schedules, err := h.service.ListBySemester(c.Request.Context(), models.Semester(c.Param("semester")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, schedules, middleware.ResponseMeta(c))
}

// ListBySection godoc
// @Summary List a section timetable
// @Tags Schedules
// @Produce json
// @Param id path string true "Section ID"
// @Param semester query string false "1st or 2nd"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sections/{id}/schedules [get]
func (h *ScheduleHandler) ListBySection(c *gin.Context) {
	schedules, err := h.service.ListBySection(c.Request.Context(), c.Param("id"), models.Semester(c.Query("semester")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, schedules, middleware.ResponseMeta(c))
}

// Delete godoc
// @Summary Delete schedules in scope
// @Description Removes schedules matching the optional section, semester and academic year. No filters removes everything.
// @Tags Schedules
// @Produce json
// @Param sectionId query string false "Section ID"
// @Param semester query string false "1st or 2nd"
// @Param academicYear query string false "Academic year"
// @Success 200 {object} response.Envelope
// @Router /schedules [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	var req dto.DeleteSchedulesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid delete scope"))
		return
	}
	result, err := h.service.DeleteScope(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
