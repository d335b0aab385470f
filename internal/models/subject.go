package models

import "time"

// DefaultSubjectUnits is used when a subject is stored without units.
const DefaultSubjectUnits = 3.0

// Semester identifies the half of the academic year a subject is offered in.
type Semester string

const (
	SemesterFirst  Semester = "1st"
	SemesterSecond Semester = "2nd"
)

// Valid reports whether the semester is supported.
func (s Semester) Valid() bool {
	return s == SemesterFirst || s == SemesterSecond
}

// Subject is a course offering required by every section of its cohort.
type Subject struct {
	ID           string    `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	CourseID     string    `db:"course_id" json:"course_id"`
	YearLevelID  string    `db:"year_level_id" json:"year_level_id"`
	Semester     Semester  `db:"semester" json:"semester"`
	Units        float64   `db:"units" json:"units"`
	HoursPerWeek *float64  `db:"hours_per_week" json:"hours_per_week,omitempty"`
	PreferredDay *Weekday  `db:"preferred_day" json:"preferred_day,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Cohort returns the course and year level the subject belongs to.
func (s Subject) Cohort() CohortKey {
	return CohortKey{CourseID: s.CourseID, YearLevelID: s.YearLevelID}
}
