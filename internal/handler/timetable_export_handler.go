package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	"github.com/noah-isme/class-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/class-scheduler-api/pkg/errors"
	"github.com/noah-isme/class-scheduler-api/pkg/response"
)

type timetableRenderer interface {
	Render(ctx context.Context, sectionID string, semester models.Semester, format models.ExportFormat) (*dto.RenderedFile, error)
}

// TimetableExportHandler streams a single section timetable.
type TimetableExportHandler struct {
	service timetableRenderer
}

// NewTimetableExportHandler constructs the handler.
func NewTimetableExportHandler(svc timetableRenderer) *TimetableExportHandler {
	return &TimetableExportHandler{service: svc}
}

// Export godoc
// @Summary Download a section timetable
// @Tags Exports
// @Produce octet-stream
// @Param id path string true "Section ID"
// @Param semester query string true "1st or 2nd"
// @Param format query string false "csv, pdf, xlsx or ics"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sections/{id}/schedules/export [get]
func (h *TimetableExportHandler) Export(c *gin.Context) {
	var query dto.TimetableExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.service.Render(c.Request.Context(), c.Param("id"), query.Semester, query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
