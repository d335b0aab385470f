package service

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

func newTimetableExportFixture(t *testing.T) *TimetableExportService {
	t.Helper()
	room := "R101"
	professor := "prof.santos"
	first := scheduleDetail("s1", sectionBSIT1A.ID, models.SemesterFirst)
	first.SubjectName = "Intro to Computing"
	first.RoomName = &room
	first.ProfessorName = &professor
	second := scheduleDetail("s2", sectionBSCS1A.ID, models.SemesterFirst)
	second.SubjectCode = "CS101"
	second.Day = models.Tuesday

	repo := &stubScheduleRepository{details: []models.ScheduleDetail{first, second}}
	sections := &stubSectionReader{sections: []models.Section{sectionBSIT1A, sectionBSCS1A}}
	return NewTimetableExportService(sections, repo, nil, TimetableExportConfig{
		GridSource: string(GridPresetThreeBlock),
		TermStart:  time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC),
		TermWeeks:  18,
	}, nil)
}

func TestTimetableExportServiceRenderCSV(t *testing.T) {
	svc := newTimetableExportFixture(t)

	file, err := svc.Render(context.Background(), sectionBSIT1A.ID, models.SemesterFirst, "")
	require.NoError(t, err)
	assert.Equal(t, "bsit_1-a_1st_timetable.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	body := string(file.Payload)
	assert.True(t, strings.HasPrefix(body, "Section,Day,Start,End,Subject Code,Subject,Room,Professor"))
	assert.Contains(t, body, "BSIT 1-A,Monday,08:00,11:00,IT101,Intro to Computing,R101,prof.santos")
	assert.NotContains(t, body, "CS101")
}

func TestTimetableExportServiceRenderFormats(t *testing.T) {
	svc := newTimetableExportFixture(t)

	for _, format := range []models.ExportFormat{models.ExportFormatPDF, models.ExportFormatXLSX, models.ExportFormatICS} {
		file, err := svc.Render(context.Background(), sectionBSIT1A.ID, models.SemesterFirst, format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, file.Payload, format)
		assert.Equal(t, format.ContentType(), file.ContentType)
		assert.True(t, strings.HasSuffix(file.Filename, "."+string(format)))
	}
}

func TestTimetableExportServiceRenderErrors(t *testing.T) {
	svc := newTimetableExportFixture(t)

	_, err := svc.Render(context.Background(), "missing", models.SemesterFirst, models.ExportFormatCSV)
	assertAppError(t, err, http.StatusNotFound)

	_, err = svc.Render(context.Background(), sectionBSIT1A.ID, "summer", models.ExportFormatCSV)
	assertAppError(t, err, http.StatusBadRequest)

	_, err = svc.Render(context.Background(), sectionBSIT1A.ID, models.SemesterFirst, "docx")
	assertAppError(t, err, http.StatusBadRequest)
}

func TestTimetableExportServiceRenderSemester(t *testing.T) {
	svc := newTimetableExportFixture(t)

	file, err := svc.RenderSemester(context.Background(), models.ExportJobParams{Semester: models.SemesterFirst, Format: models.ExportFormatCSV})
	require.NoError(t, err)
	body := string(file.Payload)
	assert.Contains(t, body, "IT101")
	assert.Contains(t, body, "CS101")

	file, err = svc.RenderSemester(context.Background(), models.ExportJobParams{
		Semester:   models.SemesterFirst,
		Format:     models.ExportFormatCSV,
		SectionIDs: []string{sectionBSCS1A.ID},
	})
	require.NoError(t, err)
	assert.NotContains(t, string(file.Payload), "IT101")

	_, err = svc.RenderSemester(context.Background(), models.ExportJobParams{
		Semester:   models.SemesterFirst,
		Format:     models.ExportFormatCSV,
		SectionIDs: []string{"unknown"},
	})
	assert.Error(t, err)
}

func TestTimetableExportServiceGridRows(t *testing.T) {
	svc := newTimetableExportFixture(t)
	rows := svc.gridRows(context.Background())
	require.Len(t, rows, 3)
	assert.Equal(t, "08:00-11:00", rows[0].String())
	assert.Equal(t, "14:00-17:00", rows[2].String())
}
