package grid

import (
	"testing"
	"time"

	"skedge/internal/provider"
)

func TestSlotsPerDay(t *testing.T) {
	if got := SlotsPerDay(IncrementHour); got != 24 {
		t.Errorf("Hourly: got %d, want 24", got)
	}
	if got := SlotsPerDay(IncrementHalfHour); got != 48 {
		t.Errorf("Half-hourly: got %d, want 48", got)
	}
	if got := SlotsPerDay(0); got != 24 {
		t.Errorf("Zero increment should fall back to hourly, got %d", got)
	}
}

func TestDaySlotsMembership(t *testing.T) {
	day := date(2024, time.March, 15)

	events := []provider.Event{
		// 09:00-10:30 spans three half-hour slots
		timedEvent("a", time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local),
			time.Date(2024, 3, 15, 10, 30, 0, 0, time.Local)),
		// Ends exactly at 10:00, so it does not occupy the 10:00 slot
		timedEvent("b", time.Date(2024, 3, 15, 9, 30, 0, 0, time.Local),
			time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local)),
	}

	slots := DaySlots(day, IncrementHalfHour, events)
	if len(slots) != 48 {
		t.Fatalf("Expected 48 slots, got %d", len(slots))
	}

	ids := func(i int) []string {
		var out []string
		for _, ev := range slots[i].Events {
			out = append(out, ev.ID)
		}
		return out
	}

	// 09:00 slot is index 18 at 30-minute increments
	tests := []struct {
		slot int
		want []string
	}{
		{17, nil},            // 08:30
		{18, []string{"a"}},  // 09:00
		{19, []string{"a", "b"}}, // 09:30
		{20, []string{"a"}},  // 10:00, b ended on the boundary
		{21, nil},            // 10:30, a ended on the boundary
	}

	for _, tt := range tests {
		got := ids(tt.slot)
		if len(got) != len(tt.want) {
			t.Errorf("Slot %d: got %v, want %v", tt.slot, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Slot %d: got %v, want %v", tt.slot, got, tt.want)
			}
		}
	}
}

func TestDaySlotsSkipsAllDay(t *testing.T) {
	day := date(2024, time.March, 15)
	allDay := provider.Event{
		ID:     "holiday",
		Start:  day,
		End:    day.AddDate(0, 0, 1),
		AllDay: true,
	}

	slots := DaySlots(day, IncrementHour, []provider.Event{allDay})
	for i, s := range slots {
		if len(s.Events) != 0 {
			t.Fatalf("Slot %d picked up an all-day event", i)
		}
	}
}

func TestSlotIndexAndTime(t *testing.T) {
	tests := []struct {
		hour, minute int
		increment    int
		index        int
	}{
		{0, 0, 60, 0},
		{9, 0, 60, 9},
		{9, 59, 60, 9},
		{23, 0, 60, 23},
		{0, 30, 30, 1},
		{9, 0, 30, 18},
		{14, 30, 30, 29},
	}

	for _, tt := range tests {
		at := time.Date(2024, 3, 15, tt.hour, tt.minute, 0, 0, time.Local)
		if got := SlotIndex(at, tt.increment); got != tt.index {
			t.Errorf("SlotIndex(%02d:%02d, %d): got %d, want %d",
				tt.hour, tt.minute, tt.increment, got, tt.index)
		}
	}

	hour, minute := SlotTime(29, 30)
	if hour != 14 || minute != 30 {
		t.Errorf("SlotTime(29, 30): got %02d:%02d, want 14:30", hour, minute)
	}
	hour, minute = SlotTime(9, 60)
	if hour != 9 || minute != 0 {
		t.Errorf("SlotTime(9, 60): got %02d:%02d, want 09:00", hour, minute)
	}
}

func TestEventsOnDay(t *testing.T) {
	day := date(2024, time.March, 15)

	events := []provider.Event{
		timedEvent("same-day", time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local),
			time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local)),
		timedEvent("ends-midnight", time.Date(2024, 3, 14, 22, 0, 0, 0, time.Local),
			time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)),
		timedEvent("next-day", time.Date(2024, 3, 16, 9, 0, 0, 0, time.Local),
			time.Date(2024, 3, 16, 10, 0, 0, 0, time.Local)),
		{
			ID:     "vacation",
			Start:  date(2024, time.March, 15),
			End:    date(2024, time.March, 16),
			AllDay: true,
		},
	}

	timed, allDay := EventsOnDay(day, events)

	if len(timed) != 1 || timed[0].ID != "same-day" {
		t.Errorf("Timed: got %v", timed)
	}
	if len(allDay) != 1 || allDay[0].ID != "vacation" {
		t.Errorf("All-day: got %v", allDay)
	}
}
