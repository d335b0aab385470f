package service

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

// GridPreset names a built-in weekly grid.
type GridPreset string

const (
	GridPresetThreeBlock GridPreset = "three_block"
	GridPresetSixBlock   GridPreset = "six_block"
)

// GridSourceDatabase loads cells from the time_slots table instead of a preset.
const GridSourceDatabase = "database"

const (
	defaultDayWindowStart models.ClockTime = 8 * 60
	defaultDayWindowEnd   models.ClockTime = 17*60 + 30
)

var errEmptyGrid = errors.New("time grid has no cells")

// DayWindow bounds the time of day every grid cell must fall within.
type DayWindow struct {
	Start models.ClockTime
	End   models.ClockTime
}

// DefaultDayWindow covers 08:00-17:30, which contains both presets.
func DefaultDayWindow() DayWindow {
	return DayWindow{Start: defaultDayWindowStart, End: defaultDayWindowEnd}
}

// ParseDayWindow builds a window from "HH:MM" bounds.
func ParseDayWindow(start, end string) (DayWindow, error) {
	s, err := models.ParseClock(start)
	if err != nil {
		return DayWindow{}, err
	}
	e, err := models.ParseClock(end)
	if err != nil {
		return DayWindow{}, err
	}
	if e <= s {
		return DayWindow{}, fmt.Errorf("day window end %s must be after start %s", e, s)
	}
	return DayWindow{Start: s, End: e}, nil
}

// Contains reports whether [start, end) lies inside the window.
func (w DayWindow) Contains(start, end models.ClockTime) bool {
	return start >= w.Start && end <= w.End
}

// PresetSlots expands a preset into Monday-Saturday cells.
func PresetSlots(preset GridPreset) ([]models.TimeSlot, error) {
	var blocks [][2]string
	switch preset {
	case GridPresetThreeBlock:
		blocks = [][2]string{{"08:00", "11:00"}, {"11:00", "14:00"}, {"14:00", "17:00"}}
	case GridPresetSixBlock:
		blocks = [][2]string{
			{"08:00", "09:30"}, {"09:30", "11:00"}, {"11:00", "12:30"},
			{"13:00", "14:30"}, {"14:30", "16:00"}, {"16:00", "17:30"},
		}
	default:
		return nil, fmt.Errorf("unknown grid preset %q", preset)
	}

	slots := make([]models.TimeSlot, 0, len(blocks)*len(models.Weekdays))
	for _, day := range models.Weekdays {
		for seq, block := range blocks {
			slots = append(slots, models.TimeSlot{
				ID:        fmt.Sprintf("%s-%d", day, seq+1),
				Day:       day,
				StartTime: models.MustClock(block[0]),
				EndTime:   models.MustClock(block[1]),
				Sequence:  seq + 1,
			})
		}
	}
	return slots, nil
}

// TimeGrid is the validated, ordered set of weekly cells available for placement.
type TimeGrid struct {
	cells  []models.TimeSlot
	window DayWindow
}

// NewTimeGrid validates every cell against the window and orders them by day, sequence and start.
func NewTimeGrid(cells []models.TimeSlot, window DayWindow) (*TimeGrid, error) {
	if len(cells) == 0 {
		return nil, errEmptyGrid
	}
	seen := make(map[string]struct{}, len(cells))
	ordered := make([]models.TimeSlot, 0, len(cells))
	for _, cell := range cells {
		if !cell.Day.Valid() {
			return nil, fmt.Errorf("time slot %s: unknown day %q", cell.ID, cell.Day)
		}
		if cell.EndTime <= cell.StartTime {
			return nil, fmt.Errorf("time slot %s: end %s must be after start %s", cell.ID, cell.EndTime, cell.StartTime)
		}
		if !window.Contains(cell.StartTime, cell.EndTime) {
			return nil, fmt.Errorf("time slot %s: %s-%s outside day window %s-%s", cell.ID, cell.StartTime, cell.EndTime, window.Start, window.End)
		}
		key := cell.Label()
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("time slot %s: duplicate cell %s", cell.ID, key)
		}
		seen[key] = struct{}{}
		ordered = append(ordered, cell)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Day != b.Day {
			return a.Day.Index() < b.Day.Index()
		}
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		return a.StartTime < b.StartTime
	})

	return &TimeGrid{cells: ordered, window: window}, nil
}

// Size returns the number of cells in one week.
func (g *TimeGrid) Size() int {
	return len(g.cells)
}

// Window returns the day window the grid was validated against.
func (g *TimeGrid) Window() DayWindow {
	return g.window
}

// Slots returns a fresh ordered copy; callers may iterate it any number of times.
func (g *TimeGrid) Slots() []models.TimeSlot {
	out := make([]models.TimeSlot, len(g.cells))
	copy(out, g.cells)
	return out
}

// Shuffled returns a Fisher-Yates shuffled copy of the cells.
func (g *TimeGrid) Shuffled(rng *rand.Rand) []models.TimeSlot {
	out := g.Slots()
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// At returns the cell at i modulo the grid size, emulating repeated weeks.
func (g *TimeGrid) At(i int) models.TimeSlot {
	n := len(g.cells)
	idx := i % n
	if idx < 0 {
		idx += n
	}
	return g.cells[idx]
}

// ShortestCellHours returns the duration of the shortest cell.
func (g *TimeGrid) ShortestCellHours() float64 {
	shortest := 0.0
	for i, cell := range g.cells {
		if h := cell.Hours(); i == 0 || h < shortest {
			shortest = h
		}
	}
	return shortest
}
