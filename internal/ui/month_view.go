package ui

import (
	"fmt"
	"strings"
	"time"

	"skedge/internal/grid"

	"github.com/charmbracelet/lipgloss"
)

// Month view layout: title row, weekday header row, then the 6x7 cell
// grid, then the status bar. The drop-zone geometry in mouse.go is
// derived from the same numbers.
const (
	monthHeaderRows = 2
	monthFooterRows = 2
)

func (m *Model) monthCellSize() (w, h int) {
	w = m.width / grid.MonthCols
	if w < 8 {
		w = 8
	}
	h = (m.height - monthHeaderRows - monthFooterRows) / grid.MonthRows
	if h < 2 {
		h = 2
	}
	return w, h
}

func (m *Model) viewMonth() string {
	cellW, cellH := m.monthCellSize()

	cells := grid.MonthGrid(m.currentDate, m.config.WeekStartDay)
	grid.AssignToCells(cells, m.visibleEvents())

	var sections []string
	sections = append(sections, m.styles.Header.Render(m.currentDate.Format("January 2006")))
	sections = append(sections, m.renderWeekdayHeader(cellW))

	today := time.Now()
	for row := 0; row < grid.MonthRows; row++ {
		var cols []string
		for col := 0; col < grid.MonthCols; col++ {
			cell := cells[row*grid.MonthCols+col]
			cols = append(cols, m.renderMonthCell(cell, today, cellW, cellH))
		}
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	}

	sections = append(sections, m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderWeekdayHeader(cellW int) string {
	var cols []string
	day := grid.WeekDays(m.currentDate, m.config.WeekStartDay)
	for _, d := range day {
		name := d.Format("Mon")
		cols = append(cols, m.styles.Header.Render(padTo(name, cellW)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m *Model) renderMonthCell(cell grid.Cell, today time.Time, cellW, cellH int) string {
	lines := make([]string, 0, cellH)

	dayStr := fmt.Sprintf("%2d", cell.Date.Day())
	switch {
	case sameDay(cell.Date, m.selectedDate):
		dayStr = m.styles.Selected.Render(dayStr)
	case sameDay(cell.Date, today):
		dayStr = m.styles.Today.Render(dayStr)
	case !cell.InMonth:
		dayStr = m.styles.Help.Render(dayStr)
	case cell.Date.Weekday() == time.Saturday || cell.Date.Weekday() == time.Sunday:
		dayStr = m.styles.Weekend.Render(dayStr)
	default:
		dayStr = m.styles.Normal.Render(dayStr)
	}
	count := ""
	if n := len(cell.Events); n > cellH-1 {
		count = fmt.Sprintf(" +%d", n-(cellH-1))
	}
	lines = append(lines, dayStr+m.styles.Help.Render(padTo(count, cellW-2)))

	for i := 0; i < cellH-1; i++ {
		if i >= len(cell.Events) {
			lines = append(lines, strings.Repeat(" ", cellW))
			continue
		}
		ev := cell.Events[i]
		label := ev.Title
		if !ev.AllDay {
			label = ev.Start.Format("15:04") + " " + label
		}
		if m.showEventIDs {
			label = shortID(ev.ID) + " " + label
		}
		style := m.styles.Event
		if ev.AllDay {
			style = m.styles.AllDay
		}
		if ev.HasOnlineMeeting {
			style = m.styles.Meeting
		}
		if m.dragging(ev.ID) {
			style = m.styles.Ghost
		}
		lines = append(lines, style.Render(padTo(label, cellW)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderStatusBar() string {
	parts := []string{
		m.selectedDate.Format(m.config.DateFormat),
		m.viewName(),
	}
	if m.accountFilter != "" {
		parts = append(parts, "account:"+m.accountName(m.accountFilter))
	}
	if m.searchQuery != "" {
		parts = append(parts, "filter:"+m.searchQuery)
	}
	if d := m.dragStatus(); d != "" {
		parts = append(parts, d)
	}
	parts = append(parts, fmt.Sprintf("%d cached", m.loader.Len()))

	status := m.styles.Help.Render(strings.Join(parts, "  |  "))
	if m.message != "" {
		return lipgloss.JoinVertical(lipgloss.Left, status, m.styles.Message.Render(m.message))
	}
	return lipgloss.JoinVertical(lipgloss.Left, status, "")
}

func (m *Model) viewName() string {
	switch m.mode {
	case ViewWeek:
		return "week"
	case ViewDay:
		return "day"
	default:
		return "month"
	}
}

func (m *Model) accountName(id string) string {
	for _, acct := range m.accounts {
		if acct.ID == id {
			return acct.Name
		}
	}
	return id
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func padTo(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
