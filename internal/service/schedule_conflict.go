package service

import (
	"fmt"
	"strings"
)

// Conflict scope modes accepted by ConflictPolicyFromMode.
const (
	ConflictModeSection     = "section"
	ConflictModeCrossCohort = "cross_cohort"
)

// ConflictDimension labels the resource two bookings collide on.
type ConflictDimension string

const (
	ConflictSection   ConflictDimension = "SECTION"
	ConflictCohort    ConflictDimension = "COHORT"
	ConflictRoom      ConflictDimension = "ROOM"
	ConflictProfessor ConflictDimension = "PROFESSOR"
)

// ConflictPolicy enumerates which dimensions are checked in addition to the
// section's own bookings, which are always checked.
type ConflictPolicy struct {
	CheckCrossCohort bool
	CheckRoom        bool
	CheckProfessor   bool
}

// ConflictPolicyFromMode maps a configured mode name and resource flags to a policy.
func ConflictPolicyFromMode(mode string, checkRoom, checkProfessor bool) (ConflictPolicy, error) {
	policy := ConflictPolicy{CheckRoom: checkRoom, CheckProfessor: checkProfessor}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ConflictModeCrossCohort:
		policy.CheckCrossCohort = true
	case ConflictModeSection:
	default:
		return ConflictPolicy{}, fmt.Errorf("unknown conflict mode %q", mode)
	}
	return policy, nil
}

// Conflict pairs an existing booking with the dimension it clashes on.
type Conflict struct {
	Dimension ConflictDimension `json:"dimension"`
	Booking   Booking           `json:"booking"`
}

// ConflictChecker answers overlap questions against a run's BookingTracker. It never mutates the tracker.
type ConflictChecker struct {
	tracker *BookingTracker
	policy  ConflictPolicy
}

// NewConflictChecker binds a checker to the run's tracker and policy.
func NewConflictChecker(tracker *BookingTracker, policy ConflictPolicy) *ConflictChecker {
	return &ConflictChecker{tracker: tracker, policy: policy}
}

// Policy returns the active policy.
func (c *ConflictChecker) Policy() ConflictPolicy {
	return c.policy
}

// HasConflict reports whether the candidate overlaps any restricted booking.
func (c *ConflictChecker) HasConflict(candidate Booking) bool {
	found := false
	c.scan(candidate, func(ConflictDimension, Booking) bool {
		found = true
		return false
	})
	return found
}

// Conflicts lists every clashing booking with its dimension.
func (c *ConflictChecker) Conflicts(candidate Booking) []Conflict {
	conflicts := make([]Conflict, 0)
	c.scan(candidate, func(dim ConflictDimension, b Booking) bool {
		conflicts = append(conflicts, Conflict{Dimension: dim, Booking: b})
		return true
	})
	return conflicts
}

func (c *ConflictChecker) scan(candidate Booking, emit func(ConflictDimension, Booking) bool) {
	c.tracker.onDay(candidate.Semester, candidate.Day, func(existing Booking) bool {
		if !candidate.sameTerm(existing) || !candidate.Overlaps(existing) {
			return true
		}
		for _, dim := range c.dimensions(candidate, existing) {
			if !emit(dim, existing) {
				return false
			}
		}
		return true
	})
}

func (c *ConflictChecker) dimensions(candidate, existing Booking) []ConflictDimension {
	var dims []ConflictDimension
	switch {
	case existing.SectionID == candidate.SectionID:
		dims = append(dims, ConflictSection)
	case c.policy.CheckCrossCohort && existing.Cohort != candidate.Cohort:
		// other sections of the same cohort may share a cell
		dims = append(dims, ConflictCohort)
	}
	if c.policy.CheckRoom && candidate.RoomID != "" && existing.RoomID == candidate.RoomID {
		dims = append(dims, ConflictRoom)
	}
	if c.policy.CheckProfessor && candidate.ProfessorID != "" && existing.ProfessorID == candidate.ProfessorID {
		dims = append(dims, ConflictProfessor)
	}
	return dims
}

// String renders the conflict for logs and reports.
func (c Conflict) String() string {
	return fmt.Sprintf("%s with section %s on %s %s-%s", c.Dimension, c.Booking.SectionID, c.Booking.Day, c.Booking.Start, c.Booking.End)
}
