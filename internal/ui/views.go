package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) viewHelp() string {
	help := []string{
		m.styles.Header.Render("Skedge Help"),
		"",
		m.styles.Normal.Render("Navigation:"),
		m.styles.Help.Render("  h/l     - Previous/next day"),
		m.styles.Help.Render("  j/k     - Next/previous week (month) or slot (week/day)"),
		m.styles.Help.Render("  J/K     - Next/previous week"),
		m.styles.Help.Render("  </>     - Previous/next month"),
		m.styles.Help.Render("  t       - Go to today"),
		m.styles.Help.Render("  g       - Go to date"),
		"",
		m.styles.Normal.Render("Views:"),
		m.styles.Help.Render("  m/w/d   - Month, week, day view"),
		m.styles.Help.Render("  z       - Toggle slot size (week/day)"),
		"",
		m.styles.Normal.Render("Events:"),
		m.styles.Help.Render("  n       - New event"),
		m.styles.Help.Render("  e       - Edit event at cursor"),
		m.styles.Help.Render("  x       - Delete event at cursor"),
		m.styles.Help.Render("  M       - Add or show online meeting link"),
		m.styles.Help.Render("  drag    - Move an event with the mouse; grab an edge to resize"),
		"",
		m.styles.Normal.Render("Other:"),
		m.styles.Help.Render("  /       - Filter events"),
		m.styles.Help.Render("  a       - Cycle account filter"),
		m.styles.Help.Render("  r       - Refresh"),
		m.styles.Help.Render("  i       - Toggle event IDs"),
		m.styles.Help.Render("  ?       - Toggle help"),
		m.styles.Help.Render("  q       - Quit"),
		"",
		m.styles.Help.Render("Press ? or Esc to return..."),
	}

	return lipgloss.JoinVertical(lipgloss.Left, help...)
}

func (m *Model) viewEditor() string {
	var sections []string

	title := "New Event"
	if m.editingEvent != nil {
		title = "Edit Event"
	}
	sections = append(sections, m.styles.Header.Render(title))
	sections = append(sections, "")

	prompt := "Enter event (e.g., 'tomorrow 2pm for 1h Meeting with team'):"
	if m.editingEvent != nil {
		prompt = "Edit title:"
	}
	sections = append(sections, m.styles.Normal.Render(prompt))
	sections = append(sections, m.styles.Selected.Render(m.inputWithCursor()))
	sections = append(sections, "")
	sections = append(sections, m.styles.Help.Render("Enter to save, Esc to cancel"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) viewPrompt(label string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Normal.Render(label)+m.styles.Selected.Render(m.inputWithCursor()),
		"",
		m.styles.Help.Render("Enter to confirm, Esc to cancel"),
	)
}

func (m *Model) viewConfirmDelete() string {
	title := ""
	if m.deleteTarget != nil {
		title = m.deleteTarget.Title
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Render("Delete Event"),
		"",
		m.styles.Normal.Render(fmt.Sprintf("Delete %q?", title)),
		"",
		m.styles.Help.Render("y to delete, any other key to cancel"),
	)
}

func (m *Model) inputWithCursor() string {
	input := m.inputBuffer
	if m.cursorPos < len(input) {
		return input[:m.cursorPos] + "█" + input[m.cursorPos:]
	}
	return input + "█"
}
