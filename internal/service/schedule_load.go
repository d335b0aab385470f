package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

const hoursEpsilon = 1e-9

// Required-hours modes accepted by RequiredHoursPolicy.
const (
	RequiredHoursFixed     = "fixed"
	RequiredHoursUnits     = "units"
	RequiredHoursCeilUnits = "ceil_units"
	RequiredHoursSlot      = "slot"
)

// RequiredHoursPolicy derives a subject's weekly contact-hour target. A
// subject's own HoursPerWeek always wins over the mode.
type RequiredHoursPolicy struct {
	Mode      string
	Fixed     float64
	SlotHours float64
}

// NewRequiredHoursPolicy validates the mode; fixed defaults to 3 hours.
func NewRequiredHoursPolicy(mode string, fixed, slotHours float64) (RequiredHoursPolicy, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = RequiredHoursFixed
	}
	switch mode {
	case RequiredHoursFixed, RequiredHoursUnits, RequiredHoursCeilUnits, RequiredHoursSlot:
	default:
		return RequiredHoursPolicy{}, fmt.Errorf("unknown required hours policy %q", mode)
	}
	if fixed <= 0 {
		fixed = models.DefaultSubjectUnits
	}
	return RequiredHoursPolicy{Mode: mode, Fixed: fixed, SlotHours: slotHours}, nil
}

// RequiredHours returns the weekly hours the allocator pursues for subject.
func (p RequiredHoursPolicy) RequiredHours(subject models.Subject) float64 {
	if subject.HoursPerWeek != nil && *subject.HoursPerWeek > 0 {
		return *subject.HoursPerWeek
	}
	units := subject.Units
	if units <= 0 {
		units = models.DefaultSubjectUnits
	}
	switch p.Mode {
	case RequiredHoursUnits:
		return units
	case RequiredHoursCeilUnits:
		return math.Max(1, math.Ceil(units))
	case RequiredHoursSlot:
		if p.SlotHours > 0 {
			return p.SlotHours
		}
	}
	if p.Fixed > 0 {
		return p.Fixed
	}
	return models.DefaultSubjectUnits
}

// LoadTracker sums scheduled hours per section over a run's bookings for one
// semester and academic year.
type LoadTracker struct {
	tracker      *BookingTracker
	semester     models.Semester
	academicYear string
}

// NewLoadTracker scopes a tracker to a semester and academic year.
func NewLoadTracker(tracker *BookingTracker, semester models.Semester, academicYear string) *LoadTracker {
	return &LoadTracker{tracker: tracker, semester: semester, academicYear: academicYear}
}

func (l *LoadTracker) matches(b Booking) bool {
	return l.academicYear == "" || b.AcademicYear == "" || b.AcademicYear == l.academicYear
}

// DailyHours returns the section's scheduled hours on day.
func (l *LoadTracker) DailyHours(sectionID string, day models.Weekday) float64 {
	total := 0.0
	l.tracker.onDay(l.semester, day, func(b Booking) bool {
		if b.SectionID == sectionID && l.matches(b) {
			total += b.Hours()
		}
		return true
	})
	return total
}

// SubjectHours returns the hours subject already received for section.
func (l *LoadTracker) SubjectHours(sectionID, subjectID string) float64 {
	total := 0.0
	l.tracker.each(l.semester, func(b Booking) {
		if b.SectionID == sectionID && b.SubjectID == subjectID && l.matches(b) {
			total += b.Hours()
		}
	})
	return total
}

// WouldExceedDaily reports whether adding hours on day pushes the section above ceiling.
// A non-positive ceiling disables the check.
func (l *LoadTracker) WouldExceedDaily(sectionID string, day models.Weekday, hours, ceiling float64) bool {
	if ceiling <= 0 {
		return false
	}
	return l.DailyHours(sectionID, day)+hours > ceiling+hoursEpsilon
}
