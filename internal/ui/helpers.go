package ui

import (
	"fmt"
	"strings"
	"time"

	"skedge/internal/grid"
	"skedge/internal/provider"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// renderMiniCalendar renders a small calendar for navigation
func (m *Model) renderMiniCalendar() string {
	var lines []string

	// Month/Year header
	monthYear := m.selectedDate.Format("January 2006")
	lines = append(lines, m.styles.Header.Render(monthYear))

	// Day headers follow the configured week start
	days := grid.WeekDays(m.selectedDate, m.config.WeekStartDay)
	header := ""
	for i, d := range days {
		header += d.Format("Mo")[:2]
		if i < len(days)-1 {
			header += " "
		}
	}
	lines = append(lines, header)

	cells := grid.MonthGrid(m.selectedDate, m.config.WeekStartDay)
	today := time.Now()

	var weekLines []string
	weekDays := ""
	for week := 0; week < grid.MonthRows; week++ {
		for weekday := 0; weekday < grid.MonthCols; weekday++ {
			cell := cells[week*grid.MonthCols+weekday]
			dayStr := fmt.Sprintf("%2d", cell.Date.Day())

			// Apply styling
			if !cell.InMonth {
				dayStr = m.styles.Help.Render(dayStr) // Dimmed
			} else if sameDay(cell.Date, today) {
				dayStr = m.styles.Today.Render(dayStr)
			} else if sameDay(cell.Date, m.selectedDate) {
				dayStr = m.styles.Selected.Render(dayStr)
			} else if cell.Date.Weekday() == time.Saturday || cell.Date.Weekday() == time.Sunday {
				dayStr = m.styles.Weekend.Render(dayStr)
			} else {
				dayStr = m.styles.Normal.Render(dayStr)
			}

			weekDays += dayStr
			if weekday < grid.MonthCols-1 {
				weekDays += " "
			}
		}
		weekLines = append(weekLines, weekDays)
		weekDays = ""
	}

	lines = append(lines, weekLines...)

	// Add border
	return m.styles.Border.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderSelectedSlotEvents renders all events active at the selected
// time slot, with the day's all-day events below.
func (m *Model) renderSelectedSlotEvents() string {
	d := m.selectedDate
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	hour, minute := grid.SlotTime(m.selectedSlot, m.increment)

	slots := grid.DaySlots(day, m.increment, m.visibleEvents())
	var slotEvents []provider.Event
	if m.selectedSlot >= 0 && m.selectedSlot < len(slots) {
		slotEvents = slots[m.selectedSlot].Events
	}
	_, allDay := grid.EventsOnDay(day, m.visibleEvents())

	var lines []string

	// Right side width minus padding and borders
	boxWidth := m.width - m.scheduleWidth() - 4
	if boxWidth < 30 {
		boxWidth = 30
	}

	timeHeader := fmt.Sprintf("%s at %02d:%02d", day.Format("Mon Jan 2, 2006"), hour, minute)
	lines = append(lines, m.styles.Header.Render(wordwrap.String(timeHeader, boxWidth-2)))

	empty := true
	for _, ev := range slotEvents {
		empty = false
		lines = append(lines, "")

		// Event time and duration
		eventTime := ev.Start.Format(m.config.TimeFormat)
		hours := int(ev.Duration().Hours())
		minutes := int(ev.Duration().Minutes()) % 60
		if hours > 0 && minutes > 0 {
			eventTime += fmt.Sprintf(" (%dh %dm)", hours, minutes)
		} else if hours > 0 {
			eventTime += fmt.Sprintf(" (%dh)", hours)
		} else {
			eventTime += fmt.Sprintf(" (%dm)", minutes)
		}
		lines = append(lines, m.styles.Event.Render(eventTime))

		if m.showEventIDs {
			lines = append(lines, m.styles.Help.Render(fmt.Sprintf("ID: %s", ev.ID)))
		}

		lines = append(lines, m.wrapLines(ev.Title, boxWidth)...)

		if ev.Location != "" {
			lines = append(lines, m.styles.Help.Render("At: "+ev.Location))
		}
		if ev.HasOnlineMeeting {
			lines = append(lines, m.wrapStyled(m.styles.Meeting, "Join: "+ev.MeetingURL, boxWidth)...)
		}
		if ev.Description != "" {
			lines = append(lines, m.wrapLines(ev.Description, boxWidth)...)
		}
		lines = append(lines, m.styles.Help.Render("Account: "+m.accountName(ev.AccountID)))
	}

	if len(allDay) > 0 {
		lines = append(lines, "")
		lines = append(lines, m.styles.AllDay.Render("All day:"))
		for _, ev := range allDay {
			empty = false
			lines = append(lines, m.wrapLines("  "+ev.Title, boxWidth)...)
		}
	}

	if empty {
		lines = append(lines, "")
		lines = append(lines, m.styles.Help.Render("(nothing at this time)"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return m.styles.Border.Width(boxWidth).Render(content)
}

// wrapLines wraps text to the box width using wordwrap, which avoids
// breaking words and URLs.
func (m *Model) wrapLines(text string, boxWidth int) []string {
	maxWidth := boxWidth - 4
	if maxWidth < 20 {
		maxWidth = 20
	}
	var out []string
	for _, line := range strings.Split(wordwrap.String(text, maxWidth), "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func (m *Model) wrapStyled(style lipgloss.Style, text string, boxWidth int) []string {
	lines := m.wrapLines(text, boxWidth)
	for i := range lines {
		lines[i] = style.Render(lines[i])
	}
	return lines
}
