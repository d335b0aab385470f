package dto

import "github.com/noah-isme/class-scheduler-api/internal/models"

// GenerateSchedulesRequest triggers a generation run for one section or all sections.
type GenerateSchedulesRequest struct {
	SectionID    string          `json:"sectionId" validate:"omitempty,max=64"`
	Semester     models.Semester `json:"semester" validate:"required,oneof=1st 2nd"`
	AcademicYear string          `json:"academicYear" validate:"omitempty,max=16"`
}

// PlacementFailure records a subject that did not reach its required hours.
type PlacementFailure struct {
	SectionID      string          `json:"sectionId"`
	Section        string          `json:"section"`
	SubjectID      string          `json:"subjectId"`
	Subject        string          `json:"subject"`
	Semester       models.Semester `json:"semester"`
	Units          float64         `json:"units"`
	Course         string          `json:"course"`
	Year           string          `json:"year"`
	ScheduledHours float64         `json:"scheduledHours"`
	RequiredHours  float64         `json:"requiredHours"`
	Reason         string          `json:"reason"`
}

// SemesterBreakdown aggregates subject outcomes for one semester.
type SemesterBreakdown struct {
	Semester  models.Semester `json:"semester"`
	Total     int             `json:"total"`
	Scheduled int             `json:"scheduled"`
	Failed    int             `json:"failed"`
}

// SectionBreakdown compares required and scheduled subjects for one section.
type SectionBreakdown struct {
	SectionID         string  `json:"sectionId"`
	Section           string  `json:"section"`
	SubjectsRequired  int     `json:"subjectsRequired"`
	SubjectsScheduled int     `json:"subjectsScheduled"`
	HoursScheduled    float64 `json:"hoursScheduled"`
}

// GenerationReport summarises a generation run.
type GenerationReport struct {
	RunID             string              `json:"runId"`
	Semester          models.Semester     `json:"semester"`
	AcademicYear      string              `json:"academicYear,omitempty"`
	TotalSections     int                 `json:"totalSections"`
	SectionsProcessed int                 `json:"sectionsProcessed"`
	TotalSubjects     int                 `json:"totalSubjects"`
	SubjectsScheduled int                 `json:"subjectsScheduled"`
	SubjectsFailed    int                 `json:"subjectsFailed"`
	ScheduledPercent  float64             `json:"scheduledPercent"`
	Errors            []string            `json:"errors"`
	Failures          []PlacementFailure  `json:"failures"`
	SemesterBreakdown []SemesterBreakdown `json:"semesterBreakdown"`
	SectionBreakdown  []SectionBreakdown  `json:"sectionBreakdown"`
	Schedules         []models.Schedule   `json:"schedules"`
}

// DeleteSchedulesRequest scopes a bulk deletion; an empty body deletes everything.
type DeleteSchedulesRequest struct {
	SectionID    string          `json:"sectionId" form:"sectionId" validate:"omitempty,max=64"`
	Semester     models.Semester `json:"semester" form:"semester" validate:"omitempty,oneof=1st 2nd"`
	AcademicYear string          `json:"academicYear" form:"academicYear" validate:"omitempty,max=16"`
}

// DeleteSchedulesResponse reports how many rows were removed.
type DeleteSchedulesResponse struct {
	Deleted int64 `json:"deleted"`
}
