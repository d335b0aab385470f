package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	"github.com/noah-isme/class-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/class-scheduler-api/pkg/errors"
	"github.com/noah-isme/class-scheduler-api/pkg/export"
)

type timetableSectionReader interface {
	FindByScope(ctx context.Context, scope models.SectionScope) ([]models.Section, error)
	FindByID(ctx context.Context, id string) (*models.Section, error)
}

type timetableScheduleReader interface {
	FindDetails(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, error)
}

type gridRenderer interface {
	Render(timetables []export.Timetable) ([]byte, error)
}

type calendarRenderer interface {
	Render(calendarName string, timetables []export.Timetable) ([]byte, error)
}

// TimetableExportConfig controls grid rows and calendar expansion.
type TimetableExportConfig struct {
	GridSource string
	TermStart  time.Time
	TermWeeks  int
}

// TimetableExportService renders section timetables into downloadable files.
type TimetableExportService struct {
	sections  timetableSectionReader
	schedules timetableScheduleReader
	timeSlots generatorTimeSlotReader
	csv       gridRenderer
	pdf       gridRenderer
	xlsx      gridRenderer
	ics       calendarRenderer
	logger    *zap.Logger
	cfg       TimetableExportConfig
}

// NewTimetableExportService constructs the service with the default renderers.
func NewTimetableExportService(sections timetableSectionReader, schedules timetableScheduleReader, timeSlots generatorTimeSlotReader, cfg TimetableExportConfig, logger *zap.Logger) *TimetableExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.GridSource == "" {
		cfg.GridSource = GridSourceDatabase
	}
	return &TimetableExportService{
		sections:  sections,
		schedules: schedules,
		timeSlots: timeSlots,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		xlsx:      export.NewXLSXExporter(),
		ics:       export.NewICSExporter(cfg.TermStart, cfg.TermWeeks),
		logger:    logger,
		cfg:       cfg,
	}
}

// Render produces one section's timetable for a semester. Format defaults to csv.
func (s *TimetableExportService) Render(ctx context.Context, sectionID string, semester models.Semester, format models.ExportFormat) (*dto.RenderedFile, error) {
	if !semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester must be 1st or 2nd")
	}
	if format == "" {
		format = models.ExportFormatCSV
	}
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	section, err := s.sections.FindByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	details, err := s.schedules.FindDetails(ctx, models.ScheduleFilter{SectionID: section.ID, Semester: semester})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section schedules")
	}

	rows := s.gridRows(ctx)
	timetable := buildTimetable(*section, semester, details, rows)
	name := fmt.Sprintf("%s_%s_timetable.%s", fileSlug(section.Name), semester, format)
	return s.render(format, timetable.Title, name, []export.Timetable{timetable})
}

// RenderSemester renders every requested section into a single file.
func (s *TimetableExportService) RenderSemester(ctx context.Context, params models.ExportJobParams) (*dto.RenderedFile, error) {
	if !params.Semester.Valid() {
		return nil, fmt.Errorf("invalid semester %q", params.Semester)
	}
	if !params.Format.Valid() {
		return nil, fmt.Errorf("unsupported export format %q", params.Format)
	}

	sections, err := s.sections.FindByScope(ctx, models.SectionScope{})
	if err != nil {
		return nil, fmt.Errorf("load sections: %w", err)
	}
	if len(params.SectionIDs) > 0 {
		wanted := make(map[string]struct{}, len(params.SectionIDs))
		for _, id := range params.SectionIDs {
			wanted[id] = struct{}{}
		}
		filtered := sections[:0:0]
		for _, section := range sections {
			if _, ok := wanted[section.ID]; ok {
				filtered = append(filtered, section)
			}
		}
		sections = filtered
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("no sections to export")
	}

	details, err := s.schedules.FindDetails(ctx, models.ScheduleFilter{Semester: params.Semester, AcademicYear: params.AcademicYear})
	if err != nil {
		return nil, fmt.Errorf("load schedules: %w", err)
	}
	bySection := make(map[string][]models.ScheduleDetail)
	for _, detail := range details {
		bySection[detail.SectionID] = append(bySection[detail.SectionID], detail)
	}

	rows := s.gridRows(ctx)
	timetables := make([]export.Timetable, 0, len(sections))
	for _, section := range sections {
		timetables = append(timetables, buildTimetable(section, params.Semester, bySection[section.ID], rows))
	}

	title := fmt.Sprintf("%s semester timetables", params.Semester)
	if params.AcademicYear != "" {
		title = fmt.Sprintf("%s %s", title, params.AcademicYear)
	}
	name := fmt.Sprintf("timetables_%s_%s.%s", params.Semester, time.Now().UTC().Format("20060102_150405"), params.Format)
	return s.render(params.Format, title, name, timetables)
}

func (s *TimetableExportService) render(format models.ExportFormat, title, filename string, timetables []export.Timetable) (*dto.RenderedFile, error) {
	var (
		payload []byte
		err     error
	)
	switch format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(timetables)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(timetables)
	case models.ExportFormatXLSX:
		payload, err = s.xlsx.Render(timetables)
	case models.ExportFormatICS:
		payload, err = s.ics.Render(title, timetables)
	default:
		err = fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}
	return &dto.RenderedFile{Filename: filename, ContentType: format.ContentType(), Payload: payload}, nil
}

// gridRows lists the distinct cell intervals of the configured grid. An
// unavailable grid leaves rows to be derived from the placed entries.
func (s *TimetableExportService) gridRows(ctx context.Context) []export.SlotRow {
	var (
		cells []models.TimeSlot
		err   error
	)
	if s.cfg.GridSource == GridSourceDatabase {
		if s.timeSlots == nil {
			return nil
		}
		cells, err = s.timeSlots.FindAll(ctx)
	} else {
		cells, err = PresetSlots(GridPreset(s.cfg.GridSource))
	}
	if err != nil {
		s.logger.Warn("timetable grid unavailable, deriving rows from schedules", zap.Error(err))
		return nil
	}

	seen := make(map[export.SlotRow]struct{})
	rows := make([]export.SlotRow, 0)
	for _, cell := range cells {
		row := export.SlotRow{Start: cell.StartTime.String(), End: cell.EndTime.String()}
		if _, ok := seen[row]; ok {
			continue
		}
		seen[row] = struct{}{}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Start != rows[j].Start {
			return rows[i].Start < rows[j].Start
		}
		return rows[i].End < rows[j].End
	})
	return rows
}

func buildTimetable(section models.Section, semester models.Semester, details []models.ScheduleDetail, rows []export.SlotRow) export.Timetable {
	timetable := export.Timetable{
		Title:   fmt.Sprintf("%s - %s semester", section.Name, semester),
		Slots:   rows,
		Entries: make([]export.TimetableEntry, 0, len(details)),
	}
	for _, detail := range details {
		timetable.Entries = append(timetable.Entries, export.TimetableEntry{
			DayIndex:    detail.Day.Index(),
			Start:       detail.StartTime.String(),
			End:         detail.EndTime.String(),
			Section:     section.Name,
			SubjectCode: detail.SubjectCode,
			SubjectName: detail.SubjectName,
			Room:        derefString(detail.RoomName),
			Professor:   derefString(detail.ProfessorName),
		})
	}
	return timetable
}

func fileSlug(raw string) string {
	if raw == "" {
		return "section"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := strings.ToLower(replacer.Replace(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
