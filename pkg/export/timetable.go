package export

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultDays are the column labels used when a timetable does not set its own.
var DefaultDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// TimetableEntry is one placed class.
type TimetableEntry struct {
	DayIndex    int
	Start       string
	End         string
	Section     string
	SubjectCode string
	SubjectName string
	Room        string
	Professor   string
}

// Label renders the text shown inside a grid cell.
func (e TimetableEntry) Label() string {
	parts := []string{e.SubjectCode}
	if e.Room != "" {
		parts = append(parts, e.Room)
	}
	if e.Professor != "" {
		parts = append(parts, e.Professor)
	}
	return strings.Join(parts, " / ")
}

// SlotRow is one row of the timetable grid.
type SlotRow struct {
	Start string
	End   string
}

// String renders the row header.
func (r SlotRow) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// Timetable is a weekly grid of entries for one section.
type Timetable struct {
	Title   string
	Days    []string
	Slots   []SlotRow
	Entries []TimetableEntry
}

// DayLabels returns the configured day labels or DefaultDays.
func (t Timetable) DayLabels() []string {
	if len(t.Days) > 0 {
		return t.Days
	}
	return DefaultDays
}

// Rows returns the grid rows, deriving them from entries when none were set.
func (t Timetable) Rows() []SlotRow {
	if len(t.Slots) > 0 {
		return t.Slots
	}
	seen := make(map[SlotRow]struct{})
	rows := make([]SlotRow, 0)
	for _, entry := range t.Entries {
		row := SlotRow{Start: entry.Start, End: entry.End}
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

// Cell returns the joined labels of entries placed in the row on dayIndex.
func (t Timetable) Cell(dayIndex int, row SlotRow) string {
	labels := make([]string, 0, 1)
	for _, entry := range t.Entries {
		if entry.DayIndex == dayIndex && entry.Start == row.Start && entry.End == row.End {
			labels = append(labels, entry.Label())
		}
	}
	return strings.Join(labels, "\n")
}

// RowHeaders label the columns produced by Row.Record.
var RowHeaders = []string{"Section", "Day", "Start", "End", "Subject Code", "Subject", "Room", "Professor"}

// Row is one placed class in flat, section-qualified form.
type Row struct {
	Section string
	Day     string
	TimetableEntry
}

// Record returns the row values in RowHeaders order.
func (r Row) Record() []string {
	return []string{r.Section, r.Day, r.Start, r.End, r.SubjectCode, r.SubjectName, r.Room, r.Professor}
}

// Flatten lists every entry of every timetable, ordered by day and start within each timetable.
func Flatten(timetables []Timetable) []Row {
	rows := make([]Row, 0)
	for _, tt := range timetables {
		days := tt.DayLabels()
		entries := append([]TimetableEntry(nil), tt.Entries...)
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].DayIndex != entries[j].DayIndex {
				return entries[i].DayIndex < entries[j].DayIndex
			}
			return entries[i].Start < entries[j].Start
		})
		for _, entry := range entries {
			row := Row{Section: entry.Section, TimetableEntry: entry}
			if row.Section == "" {
				row.Section = tt.Title
			}
			if entry.DayIndex >= 0 && entry.DayIndex < len(days) {
				row.Day = days[entry.DayIndex]
			}
			rows = append(rows, row)
		}
	}
	return rows
}
