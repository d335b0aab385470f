package models

// AvailabilityWindow is a weekly interval a professor declared as available.
type AvailabilityWindow struct {
	Day   Weekday   `db:"day" json:"day"`
	Start ClockTime `db:"start_time" json:"start"`
	End   ClockTime `db:"end_time" json:"end"`
}

// Covers reports whether the window fully contains [start, end) on day.
func (w AvailabilityWindow) Covers(day Weekday, start, end ClockTime) bool {
	return w.Day == day && w.Start <= start && end <= w.End
}

// Professor is a user with teaching preferences and availability.
type Professor struct {
	ID                  string               `db:"id" json:"id"`
	Username            string               `db:"username" json:"username"`
	PreferredSectionIDs []string             `db:"-" json:"preferred_section_ids"`
	PreferredSubjectIDs []string             `db:"-" json:"preferred_subject_ids"`
	Availability        []AvailabilityWindow `db:"-" json:"availability"`
}

// AvailableAt reports whether any declared window covers the interval.
// Professors without declared windows are treated as always available.
func (p Professor) AvailableAt(day Weekday, start, end ClockTime) bool {
	if len(p.Availability) == 0 {
		return true
	}
	for _, window := range p.Availability {
		if window.Covers(day, start, end) {
			return true
		}
	}
	return false
}

// Prefers reports whether the professor listed the section or the subject.
func (p Professor) Prefers(sectionID, subjectID string) bool {
	for _, id := range p.PreferredSubjectIDs {
		if id == subjectID {
			return true
		}
	}
	for _, id := range p.PreferredSectionIDs {
		if id == sectionID {
			return true
		}
	}
	return false
}
