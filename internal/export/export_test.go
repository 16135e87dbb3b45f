package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"skedge/internal/provider"
)

func sampleEvents() []provider.Event {
	start := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	return []provider.Event{
		{
			ID:        "later",
			AccountID: "work",
			Provider:  provider.ProviderMicrosoft,
			Start:     start.Add(4 * time.Hour),
			End:       start.Add(5 * time.Hour),
			Title:     "Review",

			HasOnlineMeeting: true,
			MeetingURL:       "https://example.com/j/1",
		},
		{
			ID:        "first",
			AccountID: "work",
			Provider:  provider.ProviderMicrosoft,
			Start:     start,
			End:       start.Add(30 * time.Minute),
			Title:     "Standup",
			Location:  "Room 4",
		},
		{
			ID:        "allday",
			AccountID: "personal",
			Provider:  provider.ProviderGoogle,
			Start:     time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
			End:       time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC),
			AllDay:    true,
			Title:     "Offsite",
		},
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("ics"); err != nil || f != FormatICS {
		t.Errorf("ics: %v %v", f, err)
	}
	if f, err := ParseFormat("csv"); err != nil || f != FormatCSV {
		t.Errorf("csv: %v %v", f, err)
	}
	if _, err := ParseFormat("xlsx"); err == nil {
		t.Error("Unknown format should be rejected")
	}
}

func TestWriteICS(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatICS, sampleEvents()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"PRODID:-//skedge//EN",
		"UID:first",
		"SUMMARY:Standup",
		"LOCATION:Room 4",
		"DTSTART:20240315T090000Z",
		"URL:https://example.com/j/1",
		"DTSTART;VALUE=DATE:20240316",
		"END:VCALENDAR",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ICS output missing %q", want)
		}
	}

	// The non-meeting events carry no URL of their own
	if strings.Count(out, "URL:") != 1 {
		t.Errorf("Expected exactly one URL property:\n%s", out)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, sampleEvents()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("Expected header plus 3 rows, got %d", len(records))
	}
	if records[0][0] != "id" || records[0][6] != "title" {
		t.Errorf("Header: %v", records[0])
	}

	// Rows come out sorted by start time
	if records[1][0] != "first" || records[2][0] != "later" || records[3][0] != "allday" {
		t.Errorf("Row order: %v %v %v", records[1][0], records[2][0], records[3][0])
	}
	if records[1][3] != "2024-03-15T09:00:00Z" {
		t.Errorf("Start column: %q", records[1][3])
	}
	if records[2][9] != "https://example.com/j/1" {
		t.Errorf("Meeting URL column: %q", records[2][9])
	}
	if records[3][5] != "true" {
		t.Errorf("All-day column: %q", records[3][5])
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, Format("pdf"), nil); err == nil {
		t.Error("Unknown format should error")
	}
}
