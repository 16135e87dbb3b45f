package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func icsSource(t *testing.T, content string) *ICSFileSource {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cal.ics")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write calendar: %v", err)
	}
	return NewICSFileSource(Account{ID: "holidays", Name: "Holidays", Path: path})
}

const simpleCalendar = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:uid-1
DTSTAMP:20240301T000000Z
DTSTART:20240315T090000Z
DTEND:20240315T100000Z
SUMMARY:Planning
LOCATION:Room 4
END:VEVENT
BEGIN:VEVENT
UID:uid-2
DTSTAMP:20240301T000000Z
DTSTART;VALUE=DATE:20240316
DTEND;VALUE=DATE:20240317
SUMMARY:Offsite
END:VEVENT
END:VCALENDAR
`

func TestICSFileEvents(t *testing.T) {
	s := icsSource(t, simpleCalendar)

	start := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	events, err := s.Events(context.Background(), "", start, end)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}

	byID := map[string]Event{}
	for _, ev := range events {
		byID[ev.ID] = ev
	}
	planning := byID["uid-1"]
	if planning.Title != "Planning" || planning.Location != "Room 4" {
		t.Errorf("Timed event: %+v", planning)
	}
	if planning.AllDay {
		t.Error("Timed event flagged all-day")
	}
	if planning.AccountID != "holidays" || planning.Provider != ProviderLocal {
		t.Errorf("Ownership fields: %q %q", planning.AccountID, planning.Provider)
	}
	if !byID["uid-2"].AllDay {
		t.Error("DATE-valued event should be all-day")
	}
}

func TestICSFileEventsOutOfRange(t *testing.T) {
	s := icsSource(t, simpleCalendar)

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	events, err := s.Events(context.Background(), "", start, start.AddDate(0, 0, 7))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("Expected no events outside the range, got %d", len(events))
	}
}

func TestICSFileRecurrence(t *testing.T) {
	s := icsSource(t, `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:weekly-1
DTSTAMP:20240301T000000Z
DTSTART:20240304T090000Z
DTEND:20240304T093000Z
SUMMARY:Standup
RRULE:FREQ=WEEKLY;BYDAY=MO
EXDATE:20240318T090000Z
END:VEVENT
END:VCALENDAR
`)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	events, err := s.Events(context.Background(), "", start, end)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}

	// Mondays in March from the 4th: 4, 11, 18, 25, with the 18th excluded
	if len(events) != 3 {
		t.Fatalf("Expected 3 occurrences, got %d", len(events))
	}
	seen := map[string]bool{}
	for _, ev := range events {
		if ev.Title != "Standup" {
			t.Errorf("Occurrence title: %q", ev.Title)
		}
		if ev.Duration() != 30*time.Minute {
			t.Errorf("Occurrence duration: %v", ev.Duration())
		}
		if seen[ev.ID] {
			t.Errorf("Duplicate occurrence ID %q", ev.ID)
		}
		seen[ev.ID] = true
		if ev.Start.Day() == 18 {
			t.Error("EXDATE occurrence should be excluded")
		}
	}
}

func TestICSFileCreateUpdateDelete(t *testing.T) {
	s := icsSource(t, "BEGIN:VCALENDAR\nVERSION:2.0\nPRODID:-//test//EN\nEND:VCALENDAR\n")
	ctx := context.Background()

	ev, err := NewEvent("holidays", ProviderLocal, "Trip", date(20, 8, 0), date(20, 18, 0))
	if err != nil {
		t.Fatal(err)
	}
	created, err := s.Create(ctx, ev)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Event(ctx, "holidays", created.ID)
	if err != nil {
		t.Fatalf("Event after create: %v", err)
	}
	if got.Title != "Trip" {
		t.Errorf("Round-trip title: %q", got.Title)
	}

	got.Title = "Longer Trip"
	if _, err := s.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got2, err := s.Event(ctx, "holidays", created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got2.Title != "Longer Trip" {
		t.Errorf("Updated title: %q", got2.Title)
	}

	if err := s.Delete(ctx, "holidays", created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Event(ctx, "holidays", created.ID); err == nil {
		t.Error("Deleted event still found")
	}

	if err := s.Delete(ctx, "holidays", "never-existed"); err == nil {
		t.Error("Deleting a missing event should fail")
	}
}

func TestICSFileFailedUpdateKeepsEvent(t *testing.T) {
	s := icsSource(t, simpleCalendar)
	ctx := context.Background()

	missing := Event{
		ID: "never-existed", AccountID: "holidays", Title: "Ghost",
		Start: date(20, 8, 0), End: date(20, 9, 0),
	}
	if _, err := s.Update(ctx, missing); err == nil {
		t.Fatal("Updating a missing event should fail")
	}

	// A failed update must leave the calendar exactly as it was
	if _, err := s.Event(ctx, "holidays", "uid-1"); err != nil {
		t.Errorf("uid-1 lost after failed update: %v", err)
	}
	if _, err := s.Event(ctx, "holidays", "uid-2"); err != nil {
		t.Errorf("uid-2 lost after failed update: %v", err)
	}

	// A successful update rewrites in place, no duplicate VEVENTs
	ev, err := s.Event(ctx, "holidays", "uid-1")
	if err != nil {
		t.Fatal(err)
	}
	ev.Title = "Replanning"
	if _, err := s.Update(ctx, ev); err != nil {
		t.Fatalf("Update: %v", err)
	}
	events, err := s.Events(ctx, "", date(14, 0, 0), date(18, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, got := range events {
		if got.ID == "uid-1" {
			count++
			if got.Title != "Replanning" {
				t.Errorf("Updated title: %q", got.Title)
			}
		}
	}
	if count != 1 {
		t.Errorf("uid-1 appears %d times after update, want 1", count)
	}
}

func TestICSFileOtherAccount(t *testing.T) {
	s := icsSource(t, simpleCalendar)
	events, err := s.Events(context.Background(), "someone-else",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if events != nil {
		t.Errorf("Foreign account should get nothing, got %v", events)
	}
}

func TestICSFileMeetingLinkUnsupported(t *testing.T) {
	s := icsSource(t, simpleCalendar)
	if _, err := s.AddMeetingLink(context.Background(), "holidays", "uid-1"); err == nil {
		t.Error("Local calendars should refuse meeting links")
	}
}
