package ui

import (
	"context"
	"fmt"
	"time"

	"skedge/internal/config"
	"skedge/internal/drag"
	"skedge/internal/grid"
	"skedge/internal/loader"
	"skedge/internal/parser"
	"skedge/internal/provider"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type ViewMode int

const (
	ViewMonth ViewMode = iota
	ViewWeek
	ViewDay
	ViewHelp
	ViewEditor
	ViewGoto
	ViewSearch
	ViewConfirmDelete
)

const fetchTimeout = 30 * time.Second

type Model struct {
	// Core components
	config   *config.Config
	source   provider.Source
	accounts []provider.Account
	loader   *loader.Loader
	drag     *drag.Controller
	parser   *parser.TimeParser

	// View state
	mode         ViewMode
	prevMode     ViewMode // where help and prompts return to
	currentDate  time.Time
	selectedDate time.Time
	events       []provider.Event
	searchQuery  string

	// Schedule view state
	selectedSlot int // slot index within the selected day
	topSlot      int // first visible slot
	increment    int // minutes per slot (30 or 60)

	// UI state
	width         int
	height        int
	message       string
	messageSeq    int
	messageTimer  *time.Timer
	send          func(tea.Msg) // program Send, for timer-driven clears
	showEventIDs  bool
	accountFilter string // account ID, empty for all

	// Editor state
	editingEvent *provider.Event
	inputBuffer  string
	cursorPos    int

	// Delete confirmation
	deleteTarget *provider.Event

	// Styles
	styles Styles
}

type Styles struct {
	Normal   lipgloss.Style
	Selected lipgloss.Style
	Today    lipgloss.Style
	Weekend  lipgloss.Style
	Header   lipgloss.Style
	Event    lipgloss.Style
	AllDay   lipgloss.Style
	Meeting  lipgloss.Style
	Ghost    lipgloss.Style
	Help     lipgloss.Style
	Message  lipgloss.Style
	Border   lipgloss.Style
}

func NewModel(cfg *config.Config, source provider.Source, accounts []provider.Account) *Model {
	now := time.Now()

	m := &Model{
		config:       cfg,
		source:       source,
		accounts:     accounts,
		loader:       loader.New(),
		drag:         drag.NewController(),
		parser:       parser.NewTimeParser(),
		mode:         startupMode(cfg.StartupView),
		currentDate:  now,
		selectedDate: now,
		events:       []provider.Event{},
		increment:    cfg.SlotIncrement,
		selectedSlot: grid.SlotIndex(now, cfg.SlotIncrement),
		topSlot:      0,
		styles:       DefaultStyles(),
	}
	m.loader.TTL = cfg.CacheTTL
	m.loader.PreloadDays = cfg.PreloadDays

	return m
}

func startupMode(view string) ViewMode {
	switch view {
	case "week":
		return ViewWeek
	case "day":
		return ViewDay
	default:
		return ViewMonth
	}
}

func DefaultStyles() Styles {
	return Styles{
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")).
			Background(lipgloss.Color("220")).
			Bold(true),
		Today: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true),
		Weekend: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")),
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true).
			Underline(true),
		Event: lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")),
		AllDay: lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")),
		Meeting: lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")),
		Ghost: lipgloss.NewStyle().
			Foreground(lipgloss.Color("213")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Message: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchVisible(),
		m.tickCmd(),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case fetchDoneMsg:
		if msg.err != nil {
			m.showMessage(fmt.Sprintf("Load error: %v", msg.err))
			return m, nil
		}
		if m.loader.Apply(msg.gen, msg.accountID, msg.rng, msg.events) {
			m.refreshVisible()
		}
		return m, nil

	case prefetchMsg:
		if _, ok := m.loader.Get(m.accountFilter, msg.rng); ok {
			return m, nil
		}
		return m, m.fetchRange(msg.rng)

	case mutationDoneMsg:
		if msg.err != nil {
			m.showMessage(fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}
		if msg.note != "" {
			m.showMessage(msg.note)
		}
		m.loader.Invalidate(msg.accountID)
		return m, m.fetchVisible()

	case changeMsg:
		// External edit detected; drop the account's cache and reload.
		m.loader.Invalidate(msg.accountID)
		return m, m.fetchVisible()

	case tickMsg:
		if m.config.AutoRefresh {
			return m, tea.Batch(m.fetchVisible(), m.tickCmd())
		}
		return m, m.tickCmd()

	case messageTimeoutMsg:
		if msg.seq == m.messageSeq {
			m.message = ""
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	switch m.mode {
	case ViewMonth:
		return m.viewMonth()
	case ViewWeek:
		return m.viewSchedule(m.scheduleDays())
	case ViewDay:
		return m.viewSchedule(m.scheduleDays())
	case ViewHelp:
		return m.viewHelp()
	case ViewEditor:
		return m.viewEditor()
	case ViewGoto:
		return m.viewPrompt("Go to date: ")
	case ViewSearch:
		return m.viewPrompt("Search: ")
	case ViewConfirmDelete:
		return m.viewConfirmDelete()
	default:
		return m.viewMonth()
	}
}

// scheduleDays returns the day columns the week or day view shows.
func (m *Model) scheduleDays() []time.Time {
	if m.mode == ViewDay {
		d := m.selectedDate
		return []time.Time{time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())}
	}
	return grid.WeekDays(m.selectedDate, m.config.WeekStartDay)
}

// visibleRange is the range the current view needs events for.
func (m *Model) visibleRange() loader.Range {
	switch m.mode {
	case ViewWeek, ViewDay:
		days := m.scheduleDays()
		start := days[0]
		return loader.Range{Start: start, End: days[len(days)-1].AddDate(0, 0, 1)}
	default:
		cells := grid.MonthGrid(m.currentDate, m.config.WeekStartDay)
		return loader.Range{Start: cells[0].Date, End: cells[len(cells)-1].Date.AddDate(0, 0, 1)}
	}
}

// refreshVisible repopulates m.events from cache for the visible range.
func (m *Model) refreshVisible() {
	if events, ok := m.loader.Get(m.accountFilter, m.visibleRange()); ok {
		m.events = events
	}
}

// fetchVisible issues a fetch for the visible range if the cache cannot
// serve it, plus delayed prefetches for the adjacent windows.
func (m *Model) fetchVisible() tea.Cmd {
	r := m.visibleRange()
	m.refreshVisible()
	if !m.loader.NeedsFetch(m.accountFilter, r) {
		return nil
	}

	window := m.loader.FetchWindow(r)
	prev, next := loader.AdjacentWindows(window)
	return tea.Batch(
		m.fetchRange(window),
		tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg {
			return prefetchMsg{rng: prev}
		}),
		tea.Tick(time.Second, func(time.Time) tea.Msg {
			return prefetchMsg{rng: next}
		}),
	)
}

// fetchRange runs one fetch off the update loop, tagged with the
// loader's current generation so stale results are dropped on arrival.
func (m *Model) fetchRange(r loader.Range) tea.Cmd {
	gen := m.loader.Generation()
	accountID := m.accountFilter
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		events, err := source.Events(ctx, accountID, r.Start, r.End)
		return fetchDoneMsg{gen: gen, accountID: accountID, rng: r, events: events, err: err}
	}
}

// showMessage puts a transient message in the status bar. The clear
// comes back through the program as a messageTimeoutMsg so the model is
// only ever touched on the UI goroutine; the sequence number keeps an
// old timer from wiping a newer message.
func (m *Model) showMessage(msg string) {
	m.message = msg
	m.messageSeq++
	if m.messageTimer != nil {
		m.messageTimer.Stop()
	}
	if m.send == nil {
		return
	}
	seq := m.messageSeq
	send := m.send
	m.messageTimer = time.AfterFunc(3*time.Second, func() {
		send(messageTimeoutMsg{seq: seq})
	})
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.config.RefreshRate, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Message types
type tickMsg struct{}
type messageTimeoutMsg struct {
	seq int
}
type prefetchMsg struct {
	rng loader.Range
}
type fetchDoneMsg struct {
	gen       uint64
	accountID string
	rng       loader.Range
	events    []provider.Event
	err       error
}
type mutationDoneMsg struct {
	accountID string
	note      string
	err       error
}
type changeMsg struct {
	accountID string
}

// SetSender wires the program's Send so message timers can report back.
// Run once after tea.NewProgram, before Run.
func (m *Model) SetSender(send func(tea.Msg)) {
	m.send = send
}

// WatchChanges forwards provider change notifications into the program.
// Run once after tea.NewProgram, before Run.
func WatchChanges(p *tea.Program, source provider.Source) {
	w, ok := source.(provider.Watcher)
	if !ok {
		return
	}
	ch, err := w.Watch()
	if err != nil || ch == nil {
		return
	}
	go func() {
		for ev := range ch {
			p.Send(changeMsg{accountID: ev.AccountID})
		}
	}()
}
