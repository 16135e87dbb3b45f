// Package grid computes calendar layouts: the 42-cell month grid, the
// hour-slot grids of the week and day views, column packing for
// overlapping events, and the logical drop-zone geometry the drag
// controller hit-tests against. Everything here is a pure function over
// already-validated events; malformed input renders degenerate rather
// than erroring.
package grid

import (
	"time"

	"skedge/internal/provider"
)

// MonthRows and MonthCols fix the month grid at 6 weeks of 7 days.
const (
	MonthRows  = 6
	MonthCols  = 7
	MonthCells = MonthRows * MonthCols
)

// Cell is one day of the month grid.
type Cell struct {
	Date    time.Time
	InMonth bool // false for leading/trailing days of adjacent months
	Events  []provider.Event
}

// MonthGrid returns the 42 cells covering the month of current, starting
// on the most recent weekStart on or before the 1st.
func MonthGrid(current time.Time, weekStart time.Weekday) []Cell {
	firstDay := time.Date(current.Year(), current.Month(), 1, 0, 0, 0, 0, current.Location())

	// Walk back to the configured week start.
	offset := int(firstDay.Weekday()) - int(weekStart)
	if offset < 0 {
		offset += 7
	}
	day := firstDay.AddDate(0, 0, -offset)

	cells := make([]Cell, 0, MonthCells)
	for i := 0; i < MonthCells; i++ {
		cells = append(cells, Cell{
			Date:    day,
			InMonth: day.Month() == current.Month(),
		})
		day = day.AddDate(0, 0, 1)
	}
	return cells
}

// AssignToCells distributes events onto the month cells they overlap.
// An event ending exactly at midnight belongs to the previous day only.
func AssignToCells(cells []Cell, events []provider.Event) {
	for i := range cells {
		cells[i].Events = cells[i].Events[:0]
		dayStart := cells[i].Date
		dayEnd := dayStart.AddDate(0, 0, 1)
		for _, ev := range events {
			if ev.OverlapsRange(dayStart, dayEnd) {
				cells[i].Events = append(cells[i].Events, ev)
			}
		}
	}
}

// WeekDays returns the 7 days of the week containing current, starting
// on weekStart.
func WeekDays(current time.Time, weekStart time.Weekday) []time.Time {
	day := time.Date(current.Year(), current.Month(), current.Day(), 0, 0, 0, 0, current.Location())
	offset := int(day.Weekday()) - int(weekStart)
	if offset < 0 {
		offset += 7
	}
	day = day.AddDate(0, 0, -offset)

	days := make([]time.Time, MonthCols)
	for i := range days {
		days[i] = day
		day = day.AddDate(0, 0, 1)
	}
	return days
}
