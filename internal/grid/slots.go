package grid

import (
	"time"

	"skedge/internal/provider"
)

// Slot increments supported by the week and day views, in minutes.
const (
	IncrementHour     = 60
	IncrementHalfHour = 30
)

// Slot is one time row of a week or day column.
type Slot struct {
	Start  time.Time
	End    time.Time
	Events []provider.Event
}

// SlotsPerDay returns how many slots one day holds at the given
// increment.
func SlotsPerDay(increment int) int {
	if increment <= 0 {
		increment = IncrementHour
	}
	return 24 * 60 / increment
}

// DaySlots emits the fixed slots of one day and assigns each event to
// every slot it overlaps: start < slotEnd && end > slotStart, with an
// end landing exactly on midnight counted against the previous day.
func DaySlots(day time.Time, increment int, events []provider.Event) []Slot {
	if increment <= 0 {
		increment = IncrementHour
	}
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	n := SlotsPerDay(increment)
	slots := make([]Slot, 0, n)
	for i := 0; i < n; i++ {
		slotStart := dayStart.Add(time.Duration(i*increment) * time.Minute)
		slotEnd := slotStart.Add(time.Duration(increment) * time.Minute)
		slot := Slot{Start: slotStart, End: slotEnd}
		for _, ev := range events {
			if ev.AllDay {
				continue
			}
			if ev.OverlapsRange(slotStart, slotEnd) {
				slot.Events = append(slot.Events, ev)
			}
		}
		slots = append(slots, slot)
	}
	return slots
}

// SlotIndex maps a time of day to its slot index at the given increment.
func SlotIndex(t time.Time, increment int) int {
	if increment <= 0 {
		increment = IncrementHour
	}
	return (t.Hour()*60 + t.Minute()) / increment
}

// SlotTime maps a slot index back to hour and minute.
func SlotTime(index, increment int) (hour, minute int) {
	if increment <= 0 {
		increment = IncrementHour
	}
	mins := index * increment
	return mins / 60, mins % 60
}

// EventsOnDay filters timed events overlapping the given day, midnight
// policy included. All-day events are returned separately.
func EventsOnDay(day time.Time, events []provider.Event) (timed, allDay []provider.Event) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	for _, ev := range events {
		if !ev.OverlapsRange(dayStart, dayEnd) {
			continue
		}
		if ev.AllDay {
			allDay = append(allDay, ev)
		} else {
			timed = append(timed, ev)
		}
	}
	return timed, allDay
}
