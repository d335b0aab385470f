package models

import "time"

// DefaultSectionCapacity is applied when a section has no explicit capacity.
const DefaultSectionCapacity = 40

// CohortKey groups sections that share a course and year level.
type CohortKey struct {
	CourseID    string
	YearLevelID string
}

// Section is the unit that receives a weekly timetable.
type Section struct {
	ID          string        `db:"id" json:"id"`
	Name        string        `db:"name" json:"name"`
	CourseID    string        `db:"course_id" json:"course_id"`
	YearLevelID string        `db:"year_level_id" json:"year_level_id"`
	Capacity    int           `db:"capacity" json:"capacity"`
	Order       int           `db:"sort_order" json:"order"`
	CourseCode  string        `db:"course_code" json:"course_code"`
	YearName    YearLevelName `db:"year_name" json:"year_name"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

// Cohort returns the grouping key used by cross-cohort conflict checks.
func (s Section) Cohort() CohortKey {
	return CohortKey{CourseID: s.CourseID, YearLevelID: s.YearLevelID}
}

// SectionScope narrows section lookups; empty fields are ignored.
type SectionScope struct {
	ID          string
	CourseID    string
	YearLevelID string
}
