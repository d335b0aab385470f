package service

import (
	"github.com/noah-isme/class-scheduler-api/internal/models"
)

// Booking is a committed or in-run placement tracked for conflict and load checks.
type Booking struct {
	ScheduleID   string
	SectionID    string
	Cohort       models.CohortKey
	SubjectID    string
	Day          models.Weekday
	Start        models.ClockTime
	End          models.ClockTime
	Semester     models.Semester
	AcademicYear string
	RoomID       string
	ProfessorID  string
}

// Hours returns the booking's duration in hours.
func (b Booking) Hours() float64 {
	return models.Hours(b.Start, b.End)
}

// Overlaps applies half-open interval semantics: [s1,e1) and [s2,e2) overlap iff s1 < e2 && s2 < e1.
func (b Booking) Overlaps(other Booking) bool {
	return b.Day == other.Day && b.Start < other.End && other.Start < b.End
}

// sameTerm reports whether two bookings can interact: same semester and
// either academic year unset or both equal.
func (b Booking) sameTerm(other Booking) bool {
	if b.Semester != other.Semester {
		return false
	}
	return b.AcademicYear == "" || other.AcademicYear == "" || b.AcademicYear == other.AcademicYear
}

type bookingDayKey struct {
	semester models.Semester
	day      models.Weekday
}

// BookingTracker holds the bookings known to one generation run. It is owned
// by a single run and is not safe for concurrent use.
type BookingTracker struct {
	bookings []Booking
	byDay    map[bookingDayKey][]int
}

// NewBookingTracker returns an empty tracker.
func NewBookingTracker() *BookingTracker {
	return &BookingTracker{byDay: make(map[bookingDayKey][]int)}
}

// SeedBookingTracker builds a tracker from persisted rows, resolving each row's
// cohort through sections. Rows whose section is unknown keep an empty cohort.
func SeedBookingTracker(rows []models.Schedule, sections map[string]models.Section) *BookingTracker {
	tracker := NewBookingTracker()
	for _, row := range rows {
		tracker.Record(bookingFromSchedule(row, sections[row.SectionID].Cohort()))
	}
	return tracker
}

// Record adds a booking to the tracker.
func (t *BookingTracker) Record(b Booking) {
	t.bookings = append(t.bookings, b)
	key := bookingDayKey{semester: b.Semester, day: b.Day}
	t.byDay[key] = append(t.byDay[key], len(t.bookings)-1)
}

// Len returns the number of tracked bookings.
func (t *BookingTracker) Len() int {
	return len(t.bookings)
}

// Bookings returns a copy of every tracked booking in insertion order.
func (t *BookingTracker) Bookings() []Booking {
	out := make([]Booking, len(t.bookings))
	copy(out, t.bookings)
	return out
}

// onDay invokes fn for every booking on the semester day until fn returns false.
func (t *BookingTracker) onDay(semester models.Semester, day models.Weekday, fn func(Booking) bool) {
	for _, idx := range t.byDay[bookingDayKey{semester: semester, day: day}] {
		if !fn(t.bookings[idx]) {
			return
		}
	}
}

// each invokes fn for every booking in the semester.
func (t *BookingTracker) each(semester models.Semester, fn func(Booking)) {
	for _, b := range t.bookings {
		if b.Semester == semester {
			fn(b)
		}
	}
}

func bookingFromSchedule(row models.Schedule, cohort models.CohortKey) Booking {
	return Booking{
		ScheduleID:   row.ID,
		SectionID:    row.SectionID,
		Cohort:       cohort,
		SubjectID:    row.SubjectID,
		Day:          row.Day,
		Start:        row.StartTime,
		End:          row.EndTime,
		Semester:     row.Semester,
		AcademicYear: derefString(row.AcademicYear),
		RoomID:       derefString(row.RoomID),
		ProfessorID:  derefString(row.ProfessorID),
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func stringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func indexSections(sections []models.Section) map[string]models.Section {
	index := make(map[string]models.Section, len(sections))
	for _, section := range sections {
		index[section.ID] = section
	}
	return index
}
