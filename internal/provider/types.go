package provider

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProviderKind identifies which connector an account belongs to.
type ProviderKind string

const (
	ProviderGoogle    ProviderKind = "google"
	ProviderMicrosoft ProviderKind = "microsoft"
	ProviderLocal     ProviderKind = "local"
)

// Account is a connected calendar account. The record of truth for its
// events lives behind the external bridge; skedge only holds the handle.
type Account struct {
	ID       string       `json:"id" yaml:"id"`
	Provider ProviderKind `json:"provider" yaml:"provider"`
	Name     string       `json:"name" yaml:"name"`

	// Bridge overrides the global bridge command for this account.
	Bridge string `yaml:"bridge,omitempty" json:"-"`
	// Path points at a local .ics file for ProviderLocal accounts.
	Path string `yaml:"path,omitempty" json:"-"`
}

// Event is a calendar event owned by one account.
type Event struct {
	ID        string       `json:"id"`
	AccountID string       `json:"account_id"`
	Provider  ProviderKind `json:"provider"`

	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	AllDay bool      `json:"all_day"`

	Title       string `json:"title"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`

	HasOnlineMeeting bool   `json:"has_online_meeting,omitempty"`
	MeetingURL       string `json:"meeting_url,omitempty"`
}

// NewEvent builds a validated event for a new local creation. The end
// must not precede the start; events received over the wire are trusted
// as-is since the bridge already enforced this on write.
func NewEvent(accountID string, kind ProviderKind, title string, start, end time.Time) (Event, error) {
	if end.Before(start) {
		return Event{}, fmt.Errorf("event %q: end %s before start %s", title, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return Event{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Provider:  kind,
		Title:     title,
		Start:     start,
		End:       end,
	}, nil
}

// Duration returns the event's length.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// EffectiveEnd treats an end landing exactly on midnight as the close of
// the previous day, so the event never shows up on the following day's
// cell. Zero-length events keep their end as-is.
func (e Event) EffectiveEnd() time.Time {
	if e.End.After(e.Start) && isMidnight(e.End) {
		return e.End.Add(-time.Nanosecond)
	}
	return e.End
}

// OverlapsRange reports whether the event intersects [start, end), using
// the midnight-end policy above.
func (e Event) OverlapsRange(start, end time.Time) bool {
	return e.Start.Before(end) && e.EffectiveEnd().After(start)
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
