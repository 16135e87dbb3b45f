package ui

import (
	"fmt"
	"strings"
	"time"

	"skedge/internal/drag"
	"skedge/internal/grid"
	"skedge/internal/provider"

	"github.com/charmbracelet/lipgloss"
)

// Schedule layout: title row, day header row, all-day row, then one
// line per time slot, then the status bar. The time gutter is fixed.
const (
	scheduleHeaderRows = 3
	timeGutterWidth    = 6 // "HH:MM "
)

func (m *Model) visibleSlotCount() int {
	visible := m.height - scheduleHeaderRows - monthFooterRows - 1
	if visible < 10 {
		visible = 10
	}
	if max := grid.SlotsPerDay(m.increment); visible > max {
		visible = max
	}
	return visible
}

func (m *Model) scheduleWidth() int {
	w := m.width * 2 / 3
	if w < 40 {
		w = 40
	}
	return w
}

func (m *Model) dayColumnWidth(days int) int {
	if days <= 0 {
		return 0
	}
	w := (m.scheduleWidth() - timeGutterWidth) / days
	if w < 8 {
		w = 8
	}
	return w
}

func (m *Model) viewSchedule(days []time.Time) string {
	scheduleView := m.renderSchedule(days)

	rightSide := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderMiniCalendar(),
		"",
		m.renderSelectedSlotEvents(),
	)

	mainContent := lipgloss.JoinHorizontal(
		lipgloss.Top,
		lipgloss.NewStyle().Width(m.scheduleWidth()).Render(scheduleView),
		" ",
		rightSide,
	)

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, m.renderStatusBar())
}

func (m *Model) renderSchedule(days []time.Time) string {
	dayW := m.dayColumnWidth(len(days))
	visible := m.visibleSlotCount()
	now := time.Now()

	var lines []string

	// Title
	if len(days) == 1 {
		lines = append(lines, m.styles.Header.Render(days[0].Format("Monday, January 2, 2006")))
	} else {
		title := fmt.Sprintf("%s - %s",
			days[0].Format("Jan 2"), days[len(days)-1].Format("Jan 2, 2006"))
		lines = append(lines, m.styles.Header.Render(title))
	}

	// Day headers
	header := strings.Repeat(" ", timeGutterWidth)
	for _, day := range days {
		label := day.Format("Mon 2")
		style := m.styles.Header
		if sameDay(day, now) {
			style = m.styles.Today
		}
		if sameDay(day, m.selectedDate) {
			style = m.styles.Selected
		}
		header += style.Render(padTo(label, dayW))
	}
	lines = append(lines, header)

	// All-day row
	lines = append(lines, m.renderAllDayRow(days, dayW))

	// Per-day packed placements, computed once
	placed := make([][]grid.Placement, len(days))
	for i, day := range days {
		timed, _ := grid.EventsOnDay(day, m.visibleEvents())
		placed[i] = grid.PackColumns(timed)
	}

	for row := 0; row < visible; row++ {
		slot := m.topSlot + row
		if slot >= grid.SlotsPerDay(m.increment) {
			break
		}
		hour, minute := grid.SlotTime(slot, m.increment)

		label := fmt.Sprintf("%02d:%02d", hour, minute)
		labelStyle := m.styles.Normal
		if slot == grid.SlotIndex(now, m.increment) {
			labelStyle = m.styles.Today
		}
		if slot == m.selectedSlot {
			labelStyle = m.styles.Selected
		}
		line := labelStyle.Render(label) + " "

		for i, day := range days {
			slotStart := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
			slotEnd := slotStart.Add(time.Duration(m.increment) * time.Minute)
			line += m.renderSlotCell(placed[i], slotStart, slotEnd, dayW)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func (m *Model) renderAllDayRow(days []time.Time, dayW int) string {
	row := m.styles.Help.Render(padTo("all", timeGutterWidth))
	for _, day := range days {
		_, allDay := grid.EventsOnDay(day, m.visibleEvents())
		label := ""
		if len(allDay) == 1 {
			label = allDay[0].Title
		} else if len(allDay) > 1 {
			label = fmt.Sprintf("%s +%d", allDay[0].Title, len(allDay)-1)
		}
		row += m.styles.AllDay.Render(padTo(label, dayW))
	}
	return row
}

// renderSlotCell draws one (day, slot) cell: each overlapping placement
// occupies its packed fraction of the column, title on the event's
// first slot and a continuation bar below.
func (m *Model) renderSlotCell(placements []grid.Placement, slotStart, slotEnd time.Time, width int) string {
	type segment struct {
		left  int
		width int
		text  string
		style lipgloss.Style
	}
	var segs []segment

	for _, p := range placements {
		ev := p.Event
		if !ev.OverlapsRange(slotStart, slotEnd) {
			continue
		}
		left := int(p.LeftPct * float64(width) / 100)
		w := int(p.WidthPct * float64(width) / 100)
		if w < 1 {
			w = 1
		}
		if left+w > width {
			w = width - left
		}
		if w <= 0 {
			continue
		}

		text := "│"
		if !ev.Start.Before(slotStart) {
			// First slot of the event
			text = ev.Title
			if m.showEventIDs {
				text = shortID(ev.ID) + " " + text
			}
		}

		style := m.styles.Event
		if ev.HasOnlineMeeting {
			style = m.styles.Meeting
		}
		if m.dragging(ev.ID) {
			style = m.styles.Ghost
		}
		segs = append(segs, segment{left: left, width: w, text: text, style: style})
	}

	var b strings.Builder
	cur := 0
	for _, s := range segs {
		if s.left < cur {
			continue
		}
		b.WriteString(strings.Repeat(" ", s.left-cur))
		b.WriteString(s.style.Render(padTo(s.text, s.width)))
		cur = s.left + s.width
	}
	if cur < width {
		b.WriteString(strings.Repeat(" ", width-cur))
	}
	return b.String()
}

// dragStatus summarizes the active gesture for the status bar.
func (m *Model) dragStatus() string {
	switch m.drag.State() {
	case drag.StateDragging:
		target, valid := m.drag.Target()
		if target == nil {
			return fmt.Sprintf("%s: no target", m.drag.Mode())
		}
		tag := "drop"
		if !valid {
			tag = "invalid"
		}
		if target.Timed {
			return fmt.Sprintf("%s: %s %s %02d:%02d", m.drag.Mode(), tag,
				target.Date.Format("Jan 2"), target.Hour, target.Minute)
		}
		return fmt.Sprintf("%s: %s %s", m.drag.Mode(), tag, target.Date.Format("Jan 2"))
	default:
		return ""
	}
}

// firstSlotOf returns the slot index the event's block starts on for
// the given day, clamped to 0 for events carried over midnight.
func firstSlotOf(ev provider.Event, day time.Time, increment int) int {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	if ev.Start.Before(dayStart) {
		return 0
	}
	return grid.SlotIndex(ev.Start, increment)
}
