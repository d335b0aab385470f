package models

import (
	"errors"
	"time"
)

// ErrDuplicateSchedule is returned when an insert violates the
// (section, day, start, end, semester) uniqueness constraint.
var ErrDuplicateSchedule = errors.New("schedule already exists for section cell")

// Schedule is one committed placement of a subject for a section.
type Schedule struct {
	ID           string    `db:"id" json:"id"`
	RunID        string    `db:"run_id" json:"run_id"`
	SectionID    string    `db:"section_id" json:"section_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	Day          Weekday   `db:"day" json:"day"`
	StartTime    ClockTime `db:"start_time" json:"start_time"`
	EndTime      ClockTime `db:"end_time" json:"end_time"`
	Semester     Semester  `db:"semester" json:"semester"`
	AcademicYear *string   `db:"academic_year" json:"academic_year,omitempty"`
	RoomID       *string   `db:"room_id" json:"room_id,omitempty"`
	ProfessorID  *string   `db:"professor_id" json:"professor_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Hours returns the placement's duration in hours.
func (s Schedule) Hours() float64 {
	return Hours(s.StartTime, s.EndTime)
}

// ScheduleScope selects the rows replaced by a generation run; empty fields match all.
type ScheduleScope struct {
	SectionID    string
	Semester     Semester
	AcademicYear string
}

// ScheduleFilter describes query params for listing schedules.
type ScheduleFilter struct {
	SectionID    string
	SubjectID    string
	Semester     Semester
	AcademicYear string
	Day          Weekday
	RoomID       string
	ProfessorID  string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// ScheduleDetail joins a schedule with display names for read endpoints and exports.
type ScheduleDetail struct {
	Schedule
	SectionName   string  `db:"section_name" json:"section_name"`
	SubjectCode   string  `db:"subject_code" json:"subject_code"`
	SubjectName   string  `db:"subject_name" json:"subject_name"`
	RoomName      *string `db:"room_name" json:"room_name,omitempty"`
	ProfessorName *string `db:"professor_name" json:"professor_name,omitempty"`
}
