package dto

import (
	"time"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

// TimetableExportQuery selects a section timetable rendering.
type TimetableExportQuery struct {
	Semester models.Semester     `form:"semester" validate:"required,oneof=1st 2nd"`
	Format   models.ExportFormat `form:"format" validate:"omitempty,oneof=csv pdf xlsx ics"`
}

// CreateExportJobRequest enqueues a semester-wide timetable export.
type CreateExportJobRequest struct {
	Semester     models.Semester     `json:"semester" validate:"required,oneof=1st 2nd"`
	AcademicYear string              `json:"academicYear" validate:"omitempty,max=16"`
	SectionIDs   []string            `json:"sectionIds" validate:"omitempty,dive,required"`
	Format       models.ExportFormat `json:"format" validate:"required,oneof=csv pdf xlsx ics"`
}

// ExportJobResponse describes the state of an export job.
type ExportJobResponse struct {
	ID          string              `json:"id"`
	Status      models.ExportStatus `json:"status"`
	Progress    int                 `json:"progress"`
	Format      models.ExportFormat `json:"format"`
	DownloadURL string              `json:"downloadUrl,omitempty"`
	ExpiresAt   *time.Time          `json:"expiresAt,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// RenderedFile is a rendered timetable ready to be streamed.
type RenderedFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}
