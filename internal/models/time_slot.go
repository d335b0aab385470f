package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Weekday is a teaching day, Monday through Saturday.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
)

// Weekdays lists the teaching days in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// Index returns the zero-based position of the day in Weekdays, or -1.
func (d Weekday) Index() int {
	for i, day := range Weekdays {
		if day == d {
			return i
		}
	}
	return -1
}

// Valid reports whether d is a teaching day.
func (d Weekday) Valid() bool {
	return d.Index() >= 0
}

// ParseWeekday accepts full or three-letter day names case-insensitively.
func ParseWeekday(raw string) (Weekday, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	for _, day := range Weekdays {
		name := strings.ToLower(string(day))
		if value == name || value == name[:3] {
			return day, nil
		}
	}
	return "", fmt.Errorf("unknown weekday %q", raw)
}

// ClockTime is a time of day stored as minutes since midnight.
type ClockTime int

// ParseClock parses an "HH:MM" 24-hour value.
func ParseClock(raw string) (ClockTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(raw), "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q", raw)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("clock time %q out of range", raw)
	}
	return ClockTime(h*60 + m), nil
}

// MustClock parses raw and panics on malformed input; intended for constants.
func MustClock(raw string) ClockTime {
	c, err := ParseClock(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// String formats the clock as "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Hours converts a minute span to fractional hours.
func Hours(start, end ClockTime) float64 {
	return float64(end-start) / 60
}

// Value stores the clock as "HH:MM".
func (c ClockTime) Value() (driver.Value, error) {
	return c.String(), nil
}

// Scan reads "HH:MM" or "HH:MM:SS" column values.
func (c *ClockTime) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported type %T for ClockTime", value)
	}
	if len(raw) > 5 {
		raw = raw[:5]
	}
	parsed, err := ParseClock(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalText renders the clock for JSON encoding.
func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses "HH:MM" for JSON decoding.
func (c *ClockTime) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// TimeSlot is one admin-defined cell of the weekly grid.
type TimeSlot struct {
	ID        string    `db:"id" json:"id"`
	Day       Weekday   `db:"day" json:"day"`
	StartTime ClockTime `db:"start_time" json:"start_time"`
	EndTime   ClockTime `db:"end_time" json:"end_time"`
	Sequence  int       `db:"sequence" json:"sequence"`
}

// Hours returns the cell's duration in hours.
func (t TimeSlot) Hours() float64 {
	return Hours(t.StartTime, t.EndTime)
}

// Label renders the slot as "Monday 08:00-11:00".
func (t TimeSlot) Label() string {
	return fmt.Sprintf("%s %s-%s", t.Day, t.StartTime, t.EndTime)
}
