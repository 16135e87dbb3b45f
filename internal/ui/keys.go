package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skedge/internal/drag"
	"skedge/internal/grid"
	"skedge/internal/provider"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Text-entry modes swallow everything
	switch m.mode {
	case ViewEditor:
		return m.handleEditorKeys(msg)
	case ViewGoto, ViewSearch:
		return m.handlePromptKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmKeys(msg)
	}

	// Global keys
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "?":
		if m.mode == ViewHelp {
			m.mode = m.prevMode
		} else {
			m.prevMode = m.mode
			m.mode = ViewHelp
		}
		return m, nil

	case "esc":
		if m.mode == ViewHelp {
			m.mode = m.prevMode
			return m, nil
		}
		if m.drag.State() != drag.StateIdle {
			m.drag.Cancel()
			m.showMessage("Drag cancelled")
			return m, nil
		}
		if m.searchQuery != "" {
			m.searchQuery = ""
			m.showMessage("Search cleared")
		}
		return m, nil

	case "r":
		m.loader.Invalidate(m.accountFilter)
		m.showMessage("Refreshing")
		return m, m.fetchVisible()

	case "i", "I":
		m.showEventIDs = !m.showEventIDs
		if m.showEventIDs {
			m.showMessage("Showing event IDs")
		} else {
			m.showMessage("Hiding event IDs")
		}
		return m, nil

	case "t":
		now := time.Now()
		m.selectedDate = now
		m.currentDate = now
		m.selectedSlot = grid.SlotIndex(now, m.increment)
		return m, m.fetchVisible()

	case "g":
		m.prevMode = m.mode
		m.mode = ViewGoto
		m.inputBuffer = ""
		m.cursorPos = 0
		return m, nil

	case "/":
		m.prevMode = m.mode
		m.mode = ViewSearch
		m.inputBuffer = m.searchQuery
		m.cursorPos = len(m.inputBuffer)
		return m, nil

	case "a":
		m.cycleAccountFilter()
		return m, m.fetchVisible()

	case "m":
		m.mode = ViewMonth
		m.currentDate = m.selectedDate
		return m, m.fetchVisible()

	case "w":
		m.mode = ViewWeek
		return m, m.fetchVisible()

	case "d":
		m.mode = ViewDay
		return m, m.fetchVisible()

	case "n":
		m.prevMode = m.mode
		m.mode = ViewEditor
		m.editingEvent = nil
		m.inputBuffer = m.newEventSeed()
		m.cursorPos = len(m.inputBuffer)
		return m, nil

	case "e":
		if ev := m.selectedEvent(); ev != nil {
			m.prevMode = m.mode
			m.mode = ViewEditor
			m.editingEvent = ev
			m.inputBuffer = ev.Title
			m.cursorPos = len(m.inputBuffer)
		}
		return m, nil

	case "x":
		if ev := m.selectedEvent(); ev != nil {
			if m.config.ConfirmDelete {
				m.deleteTarget = ev
				m.prevMode = m.mode
				m.mode = ViewConfirmDelete
				return m, nil
			}
			return m, m.deleteCmd(*ev)
		}
		return m, nil

	case "M":
		if ev := m.selectedEvent(); ev != nil {
			return m, m.meetingLinkCmd(*ev)
		}
		return m, nil
	}

	// Mode-specific handling
	switch m.mode {
	case ViewMonth:
		return m.handleMonthKeys(msg)
	case ViewWeek, ViewDay:
		return m.handleScheduleKeys(msg)
	}

	return m, nil
}

func (m *Model) handleMonthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "l", "right":
		m.selectedDate = m.selectedDate.AddDate(0, 0, 1)

	case "h", "left":
		m.selectedDate = m.selectedDate.AddDate(0, 0, -1)

	case "j", "down":
		m.selectedDate = m.selectedDate.AddDate(0, 0, 7)

	case "k", "up":
		m.selectedDate = m.selectedDate.AddDate(0, 0, -7)

	case ">":
		m.selectedDate = m.selectedDate.AddDate(0, 1, 0)
		m.currentDate = m.currentDate.AddDate(0, 1, 0)

	case "<":
		m.selectedDate = m.selectedDate.AddDate(0, -1, 0)
		m.currentDate = m.currentDate.AddDate(0, -1, 0)
	}

	// Keep the grid on the selected date's month
	if m.selectedDate.Month() != m.currentDate.Month() ||
		m.selectedDate.Year() != m.currentDate.Year() {
		m.currentDate = m.selectedDate
	}

	return m, m.fetchVisible()
}

func (m *Model) handleScheduleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	slotsPerDay := grid.SlotsPerDay(m.increment)
	visibleSlots := m.visibleSlotCount()

	switch msg.String() {
	case "j", "down":
		if m.selectedSlot < slotsPerDay-1 {
			m.selectedSlot++
			if m.selectedSlot >= m.topSlot+visibleSlots-1 {
				m.topSlot++
			}
		}

	case "k", "up":
		if m.selectedSlot > 0 {
			m.selectedSlot--
			if m.selectedSlot < m.topSlot+1 && m.topSlot > 0 {
				m.topSlot--
			}
		}

	case "l", "right", "L":
		m.selectedDate = m.selectedDate.AddDate(0, 0, 1)

	case "h", "left", "H":
		m.selectedDate = m.selectedDate.AddDate(0, 0, -1)

	case "J":
		m.selectedDate = m.selectedDate.AddDate(0, 0, 7)

	case "K":
		m.selectedDate = m.selectedDate.AddDate(0, 0, -7)

	case ">":
		m.selectedDate = m.selectedDate.AddDate(0, 1, 0)

	case "<":
		m.selectedDate = m.selectedDate.AddDate(0, -1, 0)

	case "z":
		// Toggle slot granularity, keeping the selected wall-clock time
		hour, minute := grid.SlotTime(m.selectedSlot, m.increment)
		if m.increment == 60 {
			m.increment = 30
		} else {
			m.increment = 60
		}
		m.selectedSlot = grid.SlotIndex(
			time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC), m.increment)
		m.topSlot = m.topSlot * grid.SlotsPerDay(m.increment) / slotsPerDay
	}

	return m, m.fetchVisible()
}

func (m *Model) handleEditorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = m.prevMode
		return m, nil

	case tea.KeyEnter:
		input := strings.TrimSpace(m.inputBuffer)
		m.mode = m.prevMode
		if input == "" {
			return m, nil
		}
		if m.editingEvent != nil {
			edited := *m.editingEvent
			edited.Title = input
			m.editingEvent = nil
			return m, m.updateCmd(edited, "Event updated")
		}
		return m, m.createCmd(input)

	case tea.KeyBackspace:
		if m.cursorPos > 0 {
			m.inputBuffer = m.inputBuffer[:m.cursorPos-1] + m.inputBuffer[m.cursorPos:]
			m.cursorPos--
		}

	case tea.KeyLeft:
		if m.cursorPos > 0 {
			m.cursorPos--
		}

	case tea.KeyRight:
		if m.cursorPos < len(m.inputBuffer) {
			m.cursorPos++
		}

	case tea.KeyRunes, tea.KeySpace:
		// KeySpace arrives with Runes set to a single space.
		for _, r := range msg.Runes {
			m.inputBuffer = m.inputBuffer[:m.cursorPos] + string(r) + m.inputBuffer[m.cursorPos:]
			m.cursorPos++
		}
	}

	return m, nil
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = m.prevMode
		return m, nil

	case tea.KeyEnter:
		input := strings.TrimSpace(m.inputBuffer)
		wasGoto := m.mode == ViewGoto
		m.mode = m.prevMode

		if wasGoto {
			if input == "" {
				return m, nil
			}
			parsed, err := m.parser.Parse(input)
			if err != nil || parsed.Date.IsZero() {
				m.showMessage(fmt.Sprintf("Cannot parse date: %s", input))
				return m, nil
			}
			m.selectedDate = parsed.Date
			m.currentDate = parsed.Date
			return m, m.fetchVisible()
		}

		m.searchQuery = input
		if input == "" {
			m.showMessage("Search cleared")
		} else {
			m.showMessage(fmt.Sprintf("Filtering: %s", input))
		}
		return m, nil

	case tea.KeyBackspace:
		if m.cursorPos > 0 {
			m.inputBuffer = m.inputBuffer[:m.cursorPos-1] + m.inputBuffer[m.cursorPos:]
			m.cursorPos--
		}

	case tea.KeyRunes, tea.KeySpace:
		s := string(msg.Runes)
		if msg.Type == tea.KeySpace {
			s = " "
		}
		m.inputBuffer = m.inputBuffer[:m.cursorPos] + s + m.inputBuffer[m.cursorPos:]
		m.cursorPos += len(s)
	}

	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	target := m.deleteTarget
	m.deleteTarget = nil
	m.mode = m.prevMode

	if target != nil && (msg.String() == "y" || msg.String() == "Y") {
		return m, m.deleteCmd(*target)
	}
	m.showMessage("Delete cancelled")
	return m, nil
}

// newEventSeed pre-fills the editor with the selected date and, in the
// schedule views, the selected slot's time.
func (m *Model) newEventSeed() string {
	date := m.selectedDate.Format("2006-01-02")
	if m.mode == ViewWeek || m.mode == ViewDay {
		hour, minute := grid.SlotTime(m.selectedSlot, m.increment)
		return fmt.Sprintf("%s %02d:%02d ", date, hour, minute)
	}
	return date + " "
}

// selectedEvent returns the first event under the current selection.
func (m *Model) selectedEvent() *provider.Event {
	d := m.selectedDate
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())

	if m.mode == ViewWeek || m.mode == ViewDay {
		slots := grid.DaySlots(day, m.increment, m.visibleEvents())
		if m.selectedSlot >= 0 && m.selectedSlot < len(slots) {
			if evs := slots[m.selectedSlot].Events; len(evs) > 0 {
				ev := evs[0]
				return &ev
			}
		}
		// Fall back to all-day events on the selected day
		_, allDay := grid.EventsOnDay(day, m.visibleEvents())
		if len(allDay) > 0 {
			ev := allDay[0]
			return &ev
		}
		return nil
	}

	timed, allDay := grid.EventsOnDay(day, m.visibleEvents())
	if len(allDay) > 0 {
		ev := allDay[0]
		return &ev
	}
	if len(timed) > 0 {
		ev := timed[0]
		return &ev
	}
	return nil
}

// visibleEvents applies the search filter to the cached events.
func (m *Model) visibleEvents() []provider.Event {
	if m.searchQuery == "" {
		return m.events
	}
	q := strings.ToLower(m.searchQuery)
	var out []provider.Event
	for _, ev := range m.events {
		if strings.Contains(strings.ToLower(ev.Title), q) ||
			strings.Contains(strings.ToLower(ev.Location), q) ||
			strings.Contains(strings.ToLower(ev.Description), q) {
			out = append(out, ev)
		}
	}
	return out
}

func (m *Model) cycleAccountFilter() {
	if len(m.accounts) == 0 {
		return
	}
	if m.accountFilter == "" {
		m.accountFilter = m.accounts[0].ID
		m.showMessage(fmt.Sprintf("Account: %s", m.accounts[0].Name))
		return
	}
	for i, acct := range m.accounts {
		if acct.ID == m.accountFilter {
			if i+1 < len(m.accounts) {
				m.accountFilter = m.accounts[i+1].ID
				m.showMessage(fmt.Sprintf("Account: %s", m.accounts[i+1].Name))
			} else {
				m.accountFilter = ""
				m.showMessage("Account: all")
			}
			return
		}
	}
	m.accountFilter = ""
}

// defaultAccountID picks the account new events land on: the filtered
// account when one is active, otherwise the first configured account.
func (m *Model) defaultAccountID() string {
	if m.accountFilter != "" {
		return m.accountFilter
	}
	if len(m.accounts) > 0 {
		return m.accounts[0].ID
	}
	return ""
}

func (m *Model) createCmd(input string) tea.Cmd {
	parsed, err := m.parser.Parse(input)
	if err != nil || parsed.Text == "" {
		m.showMessage("Need a date and a title")
		return nil
	}
	start, end, allDay := parsed.Window(time.Hour)

	accountID := m.defaultAccountID()
	if accountID == "" {
		m.showMessage("No accounts configured")
		return nil
	}
	kind := m.providerKindOf(accountID)

	ev, err := provider.NewEvent(accountID, kind, parsed.Text, start, end)
	if err != nil {
		m.showMessage(fmt.Sprintf("Error: %v", err))
		return nil
	}
	ev.AllDay = allDay

	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		_, err := source.Create(ctx, ev)
		return mutationDoneMsg{accountID: accountID, note: "Event added", err: err}
	}
}

func (m *Model) updateCmd(ev provider.Event, note string) tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		_, err := source.Update(ctx, ev)
		return mutationDoneMsg{accountID: ev.AccountID, note: note, err: err}
	}
}

func (m *Model) deleteCmd(ev provider.Event) tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		err := source.Delete(ctx, ev.AccountID, ev.ID)
		return mutationDoneMsg{accountID: ev.AccountID, note: "Event deleted", err: err}
	}
}

func (m *Model) meetingLinkCmd(ev provider.Event) tea.Cmd {
	if ev.HasOnlineMeeting {
		m.showMessage(fmt.Sprintf("Meeting: %s", ev.MeetingURL))
		return nil
	}
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		updated, err := source.AddMeetingLink(ctx, ev.AccountID, ev.ID)
		note := ""
		if err == nil {
			note = fmt.Sprintf("Meeting: %s", updated.MeetingURL)
		}
		return mutationDoneMsg{accountID: ev.AccountID, note: note, err: err}
	}
}

func (m *Model) providerKindOf(accountID string) provider.ProviderKind {
	for _, acct := range m.accounts {
		if acct.ID == accountID {
			return acct.Provider
		}
	}
	return provider.ProviderLocal
}
