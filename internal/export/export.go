// Package export renders events to interchange formats for use outside
// skedge.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	ical "github.com/arran4/golang-ical"

	"skedge/internal/provider"
)

// Format names a supported export format.
type Format string

const (
	FormatICS Format = "ics"
	FormatCSV Format = "csv"
)

// ParseFormat validates a format name from the command line.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatICS, FormatCSV:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q (want ics or csv)", s)
}

// Write renders events to w in the given format, sorted by start time.
func Write(w io.Writer, format Format, events []provider.Event) error {
	sorted := make([]provider.Event, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].ID < sorted[j].ID
	})

	switch format {
	case FormatICS:
		return writeICS(w, sorted)
	case FormatCSV:
		return writeCSV(w, sorted)
	}
	return fmt.Errorf("unknown export format %q", format)
}

func writeICS(w io.Writer, events []provider.Event) error {
	cal := ical.NewCalendar()
	cal.SetProductId("-//skedge//EN")

	now := time.Now().UTC()
	for _, ev := range events {
		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(now)
		ve.SetSummary(ev.Title)
		if ev.AllDay {
			ve.SetAllDayStartAt(ev.Start)
			ve.SetAllDayEndAt(ev.End)
		} else {
			ve.SetStartAt(ev.Start.UTC())
			ve.SetEndAt(ev.End.UTC())
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.HasOnlineMeeting && ev.MeetingURL != "" {
			ve.SetProperty(ical.ComponentPropertyUrl, ev.MeetingURL)
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

var csvHeader = []string{
	"id", "account", "provider", "start", "end", "all_day",
	"title", "location", "description", "meeting_url",
}

func writeCSV(w io.Writer, events []provider.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, ev := range events {
		allDay := "false"
		if ev.AllDay {
			allDay = "true"
		}
		rec := []string{
			ev.ID,
			ev.AccountID,
			string(ev.Provider),
			ev.Start.Format(time.RFC3339),
			ev.End.Format(time.RFC3339),
			allDay,
			ev.Title,
			ev.Location,
			ev.Description,
			ev.MeetingURL,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
