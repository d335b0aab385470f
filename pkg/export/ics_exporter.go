package export

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// ICSExporter renders timetables as weekly recurring calendar events.
type ICSExporter struct {
	termStart time.Time
	weeks     int
	now       func() time.Time
}

// NewICSExporter builds an exporter whose events start on the week of termStart
// and repeat for weeks occurrences. A zero termStart uses the current week.
func NewICSExporter(termStart time.Time, weeks int) *ICSExporter {
	if weeks <= 0 {
		weeks = 18
	}
	return &ICSExporter{termStart: termStart, weeks: weeks, now: time.Now}
}

// Render builds a VCALENDAR containing one VEVENT per timetable entry.
func (e *ICSExporter) Render(calendarName string, timetables []Timetable) ([]byte, error) {
	if len(timetables) == 0 {
		return nil, fmt.Errorf("ics requires at least one timetable")
	}
	now := e.now().UTC()
	monday := weekStart(e.termStart, e.now())

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//class-scheduler-api//timetable//EN")
	if calendarName != "" {
		cal.SetXWRCalName(calendarName)
	}

	for _, tt := range timetables {
		for _, entry := range tt.Entries {
			start, err := atClock(monday.AddDate(0, 0, entry.DayIndex), entry.Start)
			if err != nil {
				return nil, err
			}
			end, err := atClock(monday.AddDate(0, 0, entry.DayIndex), entry.End)
			if err != nil {
				return nil, err
			}

			section := entry.Section
			if section == "" {
				section = tt.Title
			}
			uid := fmt.Sprintf("%s-%s-%d-%s@class-scheduler", slug(section), slug(entry.SubjectCode), entry.DayIndex, strings.ReplaceAll(entry.Start, ":", ""))

			event := cal.AddEvent(uid)
			event.SetDtStampTime(now)
			event.SetCreatedTime(now)
			event.SetStartAt(start)
			event.SetEndAt(end)
			event.SetSummary(strings.TrimSpace(fmt.Sprintf("%s %s", entry.SubjectCode, entry.SubjectName)))
			if entry.Room != "" {
				event.SetLocation(entry.Room)
			}
			description := "Section " + section
			if entry.Professor != "" {
				description += "\nProfessor " + entry.Professor
			}
			event.SetDescription(description)
			event.AddProperty(ics.ComponentPropertyRrule, fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", e.weeks))
		}
	}

	return []byte(cal.Serialize()), nil
}

func weekStart(termStart, now time.Time) time.Time {
	base := termStart
	if base.IsZero() {
		base = now
	}
	base = time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, base.Location())
	offset := (int(base.Weekday()) + 6) % 7
	return base.AddDate(0, 0, -offset)
}

func atClock(day time.Time, clock string) (time.Time, error) {
	var h, m int
	if _, err := fmt.Sscanf(clock, "%d:%d", &h, &m); err != nil {
		return time.Time{}, fmt.Errorf("invalid clock %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location()), nil
}

func slug(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '-'
	}, value)
}
