package provider

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
)

// recurrenceCap bounds expansion of a single RRULE so a malformed rule
// cannot stall the UI.
const recurrenceCap = 5000

// ICSFileSource serves one local account backed by a .ics file. Events
// are parsed on demand and recurrences expanded within the requested
// range only. Writes rewrite the whole file; calendar files are small
// enough that this is fine.
type ICSFileSource struct {
	Account Account

	watcher    *FileWatcher
	changeChan chan ChangeEvent
}

// NewICSFileSource creates a source for a ProviderLocal account.
func NewICSFileSource(account Account) *ICSFileSource {
	account.Provider = ProviderLocal
	return &ICSFileSource{Account: account}
}

func (s *ICSFileSource) Accounts(ctx context.Context) ([]Account, error) {
	return []Account{s.Account}, nil
}

func (s *ICSFileSource) Events(ctx context.Context, accountID string, start, end time.Time) ([]Event, error) {
	if accountID != "" && accountID != s.Account.ID {
		return nil, nil
	}

	cal, err := s.load()
	if err != nil {
		return nil, err
	}

	var events []Event
	for _, ve := range cal.Events() {
		expanded, err := s.expand(ve, start, end)
		if err != nil {
			// A single malformed VEVENT should not hide the rest of the
			// calendar.
			continue
		}
		events = append(events, expanded...)
	}
	return events, nil
}

func (s *ICSFileSource) Event(ctx context.Context, accountID, id string) (Event, error) {
	cal, err := s.load()
	if err != nil {
		return Event{}, err
	}
	for _, ve := range cal.Events() {
		if uid := propValue(ve, ical.ComponentPropertyUniqueId); uid == id {
			ev, err := s.single(ve)
			if err != nil {
				return Event{}, err
			}
			return ev, nil
		}
	}
	return Event{}, fmt.Errorf("event %s not found in %s", id, s.Account.Path)
}

func (s *ICSFileSource) Create(ctx context.Context, ev Event) (Event, error) {
	cal, err := s.load()
	if err != nil {
		return Event{}, err
	}

	fillEvent(cal.AddEvent(ev.ID), ev)
	if err := s.save(cal); err != nil {
		return Event{}, err
	}
	ev.AccountID = s.Account.ID
	ev.Provider = ProviderLocal
	return ev, nil
}

// Update replaces the VEVENT in a single load-mutate-save pass, so a
// failed write cannot leave the event half-deleted on disk.
func (s *ICSFileSource) Update(ctx context.Context, ev Event) (Event, error) {
	cal, err := s.load()
	if err != nil {
		return Event{}, err
	}

	kept := cal.Components[:0]
	found := false
	for _, comp := range cal.Components {
		if ve, ok := comp.(*ical.VEvent); ok {
			if propValue(ve, ical.ComponentPropertyUniqueId) == ev.ID {
				found = true
				continue
			}
		}
		kept = append(kept, comp)
	}
	if !found {
		return Event{}, fmt.Errorf("event %s not found in %s", ev.ID, s.Account.Path)
	}
	cal.Components = kept

	fillEvent(cal.AddEvent(ev.ID), ev)
	if err := s.save(cal); err != nil {
		return Event{}, err
	}
	ev.AccountID = s.Account.ID
	ev.Provider = ProviderLocal
	return ev, nil
}

func fillEvent(ve *ical.VEvent, ev Event) {
	ve.SetDtStampTime(time.Now())
	if ev.AllDay {
		ve.SetAllDayStartAt(ev.Start)
		ve.SetAllDayEndAt(ev.End)
	} else {
		ve.SetStartAt(ev.Start)
		ve.SetEndAt(ev.End)
	}
	ve.SetSummary(ev.Title)
	if ev.Location != "" {
		ve.SetLocation(ev.Location)
	}
	if ev.Description != "" {
		ve.SetDescription(ev.Description)
	}
}

func (s *ICSFileSource) Delete(ctx context.Context, accountID, id string) error {
	return s.remove(id)
}

func (s *ICSFileSource) AddMeetingLink(ctx context.Context, accountID, id string) (Event, error) {
	return Event{}, fmt.Errorf("local calendars cannot host online meetings")
}

// Watch implements Watcher over the backing file.
func (s *ICSFileSource) Watch() (<-chan ChangeEvent, error) {
	if s.watcher != nil {
		return s.changeChan, nil
	}

	s.changeChan = make(chan ChangeEvent, 10)
	watcher, err := NewFileWatcher(func(path string) {
		select {
		case s.changeChan <- ChangeEvent{AccountID: s.Account.ID, Timestamp: time.Now()}:
		default:
			// Channel full, drop the notification; a refresh is already due.
		}
	})
	if err != nil {
		return nil, err
	}
	s.watcher = watcher

	if err := s.watcher.AddFile(ExpandHome(s.Account.Path)); err != nil {
		return nil, err
	}
	return s.changeChan, nil
}

func (s *ICSFileSource) StopWatching() error {
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	if s.changeChan != nil {
		close(s.changeChan)
		s.changeChan = nil
	}
	return err
}

func (s *ICSFileSource) load() (*ical.Calendar, error) {
	path := ExpandHome(s.Account.Path)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calendar %s: %w", path, err)
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse calendar %s: %w", path, err)
	}
	return cal, nil
}

func (s *ICSFileSource) save(cal *ical.Calendar) error {
	path := ExpandHome(s.Account.Path)
	if err := os.WriteFile(path, []byte(cal.Serialize()), 0o644); err != nil {
		return fmt.Errorf("write calendar %s: %w", path, err)
	}
	return nil
}

func (s *ICSFileSource) remove(id string) error {
	cal, err := s.load()
	if err != nil {
		return err
	}

	kept := cal.Components[:0]
	found := false
	for _, comp := range cal.Components {
		if ve, ok := comp.(*ical.VEvent); ok {
			if propValue(ve, ical.ComponentPropertyUniqueId) == id {
				found = true
				continue
			}
		}
		kept = append(kept, comp)
	}
	if !found {
		return fmt.Errorf("event %s not found in %s", id, s.Account.Path)
	}
	cal.Components = kept
	return s.save(cal)
}

// single converts a non-recurring VEVENT.
func (s *ICSFileSource) single(ve *ical.VEvent) (Event, error) {
	start, err := ve.GetStartAt()
	if err != nil {
		return Event{}, fmt.Errorf("vevent missing DTSTART: %w", err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		end = start
	}

	ev := Event{
		ID:          propValue(ve, ical.ComponentPropertyUniqueId),
		AccountID:   s.Account.ID,
		Provider:    ProviderLocal,
		Start:       start,
		End:         end,
		AllDay:      isAllDay(ve),
		Title:       propValue(ve, ical.ComponentPropertySummary),
		Location:    propValue(ve, ical.ComponentPropertyLocation),
		Description: propValue(ve, ical.ComponentPropertyDescription),
	}
	if url := propValue(ve, ical.ComponentPropertyUrl); url != "" {
		ev.HasOnlineMeeting = true
		ev.MeetingURL = url
	}
	return ev, nil
}

// expand yields the occurrences of a VEVENT within [start, end),
// applying RRULE and EXDATE. Non-recurring events produce at most one.
func (s *ICSFileSource) expand(ve *ical.VEvent, start, end time.Time) ([]Event, error) {
	base, err := s.single(ve)
	if err != nil {
		return nil, err
	}

	rawRule := propValue(ve, ical.ComponentPropertyRrule)
	if rawRule == "" {
		if base.OverlapsRange(start, end) {
			return []Event{base}, nil
		}
		return nil, nil
	}

	r, err := rrule.StrToRRule(rawRule)
	if err != nil {
		return nil, fmt.Errorf("bad RRULE %q: %w", rawRule, err)
	}
	r.DTStart(base.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range exDates(ve) {
		set.ExDate(ex.In(base.Start.Location()))
	}

	dur := base.End.Sub(base.Start)
	occTimes := set.Between(start.In(base.Start.Location()), end.In(base.Start.Location()), true)
	if len(occTimes) > recurrenceCap {
		occTimes = occTimes[:recurrenceCap]
	}

	var out []Event
	for _, occStart := range occTimes {
		occ := base
		occ.Start = occStart
		occ.End = occStart.Add(dur)
		// Recurring instances need distinct IDs for dedup and display.
		occ.ID = fmt.Sprintf("%s@%s", base.ID, occStart.Format(time.RFC3339))
		if occ.OverlapsRange(start, end) {
			out = append(out, occ)
		}
	}
	return out, nil
}

func propValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}

func isAllDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if params := p.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(p.Value, "T")
}

func exDates(ve *ical.VEvent) []time.Time {
	var out []time.Time
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part); err == nil {
				out = append(out, t)
			}
		}
	}
	return out
}

// parseICSTime handles the basic EXDATE forms: UTC date-time, floating
// date-time, and date-only.
func parseICSTime(v string) (time.Time, error) {
	switch {
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, time.Local)
	default:
		return time.ParseInLocation("20060102", v, time.Local)
	}
}
