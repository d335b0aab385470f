package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	"github.com/noah-isme/class-scheduler-api/internal/models"
)

// ReportInput is everything a generation run hands to reporting.
type ReportInput struct {
	RunID        string
	Semester     models.Semester
	AcademicYear string
	Sections     []models.Section
	Processed    int
	Outcomes     []AllocationOutcome
	Notices      []string
}

// BuildGenerationReport aggregates allocator outcomes. It has no side effects.
func BuildGenerationReport(in ReportInput) *dto.GenerationReport {
	report := &dto.GenerationReport{
		RunID:             in.RunID,
		Semester:          in.Semester,
		AcademicYear:      in.AcademicYear,
		TotalSections:     len(in.Sections),
		SectionsProcessed: in.Processed,
		Errors:            append([]string{}, in.Notices...),
		Failures:          make([]dto.PlacementFailure, 0),
		SemesterBreakdown: make([]dto.SemesterBreakdown, 0),
		SectionBreakdown:  make([]dto.SectionBreakdown, 0, len(in.Sections)),
		Schedules:         make([]models.Schedule, 0),
	}

	sectionIdx := make(map[string]int, len(in.Sections))
	sectionRow := func(section models.Section) *dto.SectionBreakdown {
		idx, ok := sectionIdx[section.ID]
		if !ok {
			idx = len(report.SectionBreakdown)
			sectionIdx[section.ID] = idx
			report.SectionBreakdown = append(report.SectionBreakdown, dto.SectionBreakdown{
				SectionID: section.ID,
				Section:   section.Name,
			})
		}
		return &report.SectionBreakdown[idx]
	}
	for _, section := range in.Sections {
		sectionRow(section)
	}

	bySemester := make(map[models.Semester]*dto.SemesterBreakdown)
	for _, outcome := range in.Outcomes {
		report.TotalSubjects++
		report.Schedules = append(report.Schedules, outcome.Placements...)

		sem, ok := bySemester[outcome.Semester]
		if !ok {
			sem = &dto.SemesterBreakdown{Semester: outcome.Semester}
			bySemester[outcome.Semester] = sem
		}
		sem.Total++

		sec := sectionRow(outcome.Section)
		sec.SubjectsRequired++
		sec.HoursScheduled += outcome.ScheduledHours

		if outcome.Scheduled() {
			report.SubjectsScheduled++
			sem.Scheduled++
			sec.SubjectsScheduled++
			continue
		}

		report.SubjectsFailed++
		sem.Failed++
		failure := dto.PlacementFailure{
			SectionID:      outcome.Section.ID,
			Section:        outcome.Section.Name,
			SubjectID:      outcome.Subject.ID,
			Subject:        outcome.Subject.Code,
			Semester:       outcome.Semester,
			Units:          outcome.Subject.Units,
			Course:         outcome.Section.CourseCode,
			Year:           string(outcome.Section.YearName),
			ScheduledHours: outcome.ScheduledHours,
			RequiredHours:  outcome.RequiredHours,
			Reason:         outcome.Reason(),
		}
		report.Failures = append(report.Failures, failure)
		report.Errors = append(report.Errors, fmt.Sprintf("%s: %s scheduled %.1f of %.1f hours",
			failure.Section, failure.Subject, failure.ScheduledHours, failure.RequiredHours))
	}

	for _, sem := range bySemester {
		report.SemesterBreakdown = append(report.SemesterBreakdown, *sem)
	}
	sort.Slice(report.SemesterBreakdown, func(i, j int) bool {
		return report.SemesterBreakdown[i].Semester < report.SemesterBreakdown[j].Semester
	})

	if report.TotalSubjects > 0 {
		pct := float64(report.SubjectsScheduled) / float64(report.TotalSubjects) * 100
		report.ScheduledPercent = math.Round(pct*100) / 100
	}
	return report
}
