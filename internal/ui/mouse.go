package ui

import (
	"errors"
	"time"

	"skedge/internal/drag"
	"skedge/internal/grid"
	"skedge/internal/provider"

	tea "github.com/charmbracelet/bubbletea"
)

// handleMouse routes pointer events into the drag controller. Press on
// an event block starts a gesture, motion advances it, release either
// drops or, below the movement threshold, acts as a plain click.
func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != ViewMonth && m.mode != ViewWeek && m.mode != ViewDay {
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		ev, origin, mode, ok := m.eventBlockAt(msg.X, msg.Y)
		if !ok {
			m.selectAt(msg.X, msg.Y)
			return m, m.fetchVisible()
		}
		m.drag.SetZones(m.currentZones())
		m.drag.Begin(ev, mode, drag.Point{X: msg.X, Y: msg.Y}, origin)
		return m, nil

	case tea.MouseActionMotion:
		if m.drag.State() == drag.StateIdle {
			return m, nil
		}
		m.drag.Move(drag.Point{X: msg.X, Y: msg.Y})
		return m, nil

	case tea.MouseActionRelease:
		update, err := m.drag.Drop()
		switch {
		case errors.Is(err, drag.ErrNotDragging):
			// Plain click: move the selection
			m.selectAt(msg.X, msg.Y)
			return m, m.fetchVisible()
		case errors.Is(err, drag.ErrNoTarget):
			m.showMessage("Cannot drop there")
			return m, nil
		case err != nil:
			return m, nil
		}

		edited := update.Event
		edited.Start = update.NewStart
		edited.End = update.NewEnd
		note := "Event moved"
		if update.Event.Duration() != edited.Duration() {
			note = "Event resized"
		}
		return m, m.updateCmd(edited, note)
	}

	return m, nil
}

// selectAt moves the keyboard selection to the clicked cell or slot.
func (m *Model) selectAt(x, y int) {
	zone := grid.HitTest(m.currentZones(), x, y)
	if zone == nil {
		return
	}
	m.selectedDate = zone.Date
	if zone.Timed {
		m.selectedSlot = zone.Hour*60/m.increment + zone.Minute/m.increment
	} else {
		m.currentDate = zone.Date
	}
}

// currentZones derives the drop zones from the rendered layout's
// numbers. Nothing is queried back from the drawn screen.
func (m *Model) currentZones() []grid.DropZone {
	switch m.mode {
	case ViewMonth:
		cellW, cellH := m.monthCellSize()
		g := grid.Geometry{OriginX: 0, OriginY: monthHeaderRows, CellW: cellW, CellH: cellH}
		return g.MonthZones(grid.MonthGrid(m.currentDate, m.config.WeekStartDay))
	case ViewWeek, ViewDay:
		days := m.scheduleDays()
		g := grid.Geometry{
			OriginX: timeGutterWidth,
			OriginY: scheduleHeaderRows,
			CellW:   m.dayColumnWidth(len(days)),
			CellH:   1,
		}
		return g.SlotZones(days, m.increment, m.topSlot, m.visibleSlotCount())
	}
	return nil
}

// eventBlockAt finds the event block under the pointer, its on-screen
// origin, and the drag mode the grab position implies: the top edge of
// a multi-slot block resizes the start, the bottom edge resizes the
// end, anywhere else moves.
func (m *Model) eventBlockAt(x, y int) (provider.Event, drag.Point, drag.Mode, bool) {
	zone := grid.HitTest(m.currentZones(), x, y)
	if zone == nil {
		return provider.Event{}, drag.Point{}, drag.ModeMove, false
	}

	if !zone.Timed {
		return m.monthEventAt(*zone, x, y)
	}
	return m.scheduleEventAt(*zone, x, y)
}

func (m *Model) monthEventAt(zone grid.DropZone, x, y int) (provider.Event, drag.Point, drag.Mode, bool) {
	// Row 0 of a cell is the day number; event i sits on row i+1.
	row := y - zone.Bounds.Y - 1
	if row < 0 {
		return provider.Event{}, drag.Point{}, drag.ModeMove, false
	}

	dayStart := zone.Date
	dayEnd := dayStart.AddDate(0, 0, 1)
	var cellEvents []provider.Event
	for _, ev := range m.visibleEvents() {
		if ev.OverlapsRange(dayStart, dayEnd) {
			cellEvents = append(cellEvents, ev)
		}
	}
	if row >= len(cellEvents) {
		return provider.Event{}, drag.Point{}, drag.ModeMove, false
	}

	ev := cellEvents[row]
	if ev.AllDay {
		// All-day blocks move by date only, which month zones give us.
		origin := drag.Point{X: zone.Bounds.X, Y: zone.Bounds.Y + 1 + row}
		return ev, origin, drag.ModeMove, true
	}
	origin := drag.Point{X: zone.Bounds.X, Y: zone.Bounds.Y + 1 + row}
	return ev, origin, drag.ModeMove, true
}

func (m *Model) scheduleEventAt(zone grid.DropZone, x, y int) (provider.Event, drag.Point, drag.Mode, bool) {
	day := zone.Date
	timed, _ := grid.EventsOnDay(day, m.visibleEvents())
	placements := grid.PackColumns(timed)

	slotStart := zone.ZoneTime()
	slotEnd := slotStart.Add(time.Duration(m.increment) * time.Minute)
	colW := zone.Bounds.W

	for _, p := range placements {
		ev := p.Event
		if !ev.OverlapsRange(slotStart, slotEnd) {
			continue
		}
		left := zone.Bounds.X + int(p.LeftPct*float64(colW)/100)
		w := int(p.WidthPct * float64(colW) / 100)
		if w < 1 {
			w = 1
		}
		if x < left || x >= left+w {
			continue
		}

		firstSlot := firstSlotOf(ev, day, m.increment)
		lastSlot := m.lastSlotOf(ev, day)
		span := lastSlot - firstSlot + 1

		mode := drag.ModeMove
		slot := zone.Hour*60/m.increment + zone.Minute/m.increment
		if span >= 2 {
			switch slot {
			case firstSlot:
				mode = drag.ModeResizeStart
			case lastSlot:
				mode = drag.ModeResizeEnd
			}
		}

		originY := zone.Bounds.Y - (slot - firstSlot)
		return ev, drag.Point{X: left, Y: originY}, mode, true
	}

	return provider.Event{}, drag.Point{}, drag.ModeMove, false
}

// lastSlotOf returns the final slot the event occupies on the day,
// midnight policy included.
func (m *Model) lastSlotOf(ev provider.Event, day time.Time) int {
	dayEnd := day.AddDate(0, 0, 1)
	end := ev.EffectiveEnd()
	if !end.Before(dayEnd) {
		return grid.SlotsPerDay(m.increment) - 1
	}
	// A block [start, end) does not occupy the slot starting at end.
	mins := end.Hour()*60 + end.Minute()
	last := (mins - 1) / m.increment
	if first := firstSlotOf(ev, day, m.increment); last < first {
		last = first
	}
	return last
}

// dragging reports whether the given event is the one being dragged, so
// views can ghost it.
func (m *Model) dragging(id string) bool {
	return m.drag.State() == drag.StateDragging && m.drag.Event().ID == id
}
