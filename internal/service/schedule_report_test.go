package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

func TestBuildGenerationReport(t *testing.T) {
	subjects := makeSubjects(bsit1, 3)
	placed := models.Schedule{ID: "row-1", SectionID: sectionBSIT1A.ID, SubjectID: subjects[0].ID}

	report := BuildGenerationReport(ReportInput{
		RunID:     "run-9",
		Semester:  models.SemesterFirst,
		Sections:  []models.Section{sectionBSIT1A, sectionBSCS1A},
		Processed: 1,
		Outcomes: []AllocationOutcome{
			{Section: sectionBSIT1A, Subject: subjects[0], Semester: models.SemesterFirst, RequiredHours: 3, ScheduledHours: 3, Placements: []models.Schedule{placed}},
			{Section: sectionBSIT1A, Subject: subjects[1], Semester: models.SemesterFirst, RequiredHours: 3, ScheduledHours: 3},
			{Section: sectionBSIT1A, Subject: subjects[2], Semester: models.SemesterFirst, RequiredHours: 3, Attempts: 72},
		},
		Notices: []string{"BSCS 1-A: no subjects found for 1st semester"},
	})

	assert.Equal(t, "run-9", report.RunID)
	assert.Equal(t, 2, report.TotalSections)
	assert.Equal(t, 1, report.SectionsProcessed)
	assert.Equal(t, 3, report.TotalSubjects)
	assert.Equal(t, 2, report.SubjectsScheduled)
	assert.Equal(t, 1, report.SubjectsFailed)
	assert.Equal(t, 66.67, report.ScheduledPercent)
	assert.Len(t, report.Schedules, 1)

	require.Len(t, report.Errors, 2)
	assert.Equal(t, "BSIT 1-A: bsit003 scheduled 0.0 of 3.0 hours", report.Errors[1])

	require.Len(t, report.Failures, 1)
	failure := report.Failures[0]
	assert.Equal(t, "BSIT", failure.Course)
	assert.Equal(t, "1st", failure.Year)
	assert.Equal(t, 3.0, failure.Units)
	assert.Contains(t, failure.Reason, "72")

	require.Len(t, report.SectionBreakdown, 2)
	assert.Equal(t, 3, report.SectionBreakdown[0].SubjectsRequired)
	assert.Equal(t, 2, report.SectionBreakdown[0].SubjectsScheduled)
	assert.Equal(t, 6.0, report.SectionBreakdown[0].HoursScheduled)
	assert.Zero(t, report.SectionBreakdown[1].SubjectsRequired)

	require.Len(t, report.SemesterBreakdown, 1)
	assert.Equal(t, 3, report.SemesterBreakdown[0].Total)
}

func TestBuildGenerationReportEmpty(t *testing.T) {
	report := BuildGenerationReport(ReportInput{Semester: models.SemesterSecond})
	assert.Zero(t, report.ScheduledPercent)
	assert.NotNil(t, report.Errors)
	assert.NotNil(t, report.Failures)
	assert.NotNil(t, report.Schedules)
}
