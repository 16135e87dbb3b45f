package provider

import (
	"context"
	"time"
)

// Source is anything that can serve accounts and their events: the
// out-of-process bridge, a local .ics file, or a composite of several.
type Source interface {
	// Accounts lists the connected accounts this source serves.
	Accounts(ctx context.Context) ([]Account, error)
	// Events returns events for one account between start and end.
	// An empty accountID means all accounts the source knows about.
	Events(ctx context.Context, accountID string, start, end time.Time) ([]Event, error)
	// Event fetches a single event by id.
	Event(ctx context.Context, accountID, id string) (Event, error)
	// Create adds a new event and returns it with any server-assigned fields.
	Create(ctx context.Context, ev Event) (Event, error)
	// Update replaces an existing event.
	Update(ctx context.Context, ev Event) (Event, error)
	// Delete removes an event.
	Delete(ctx context.Context, accountID, id string) error
	// AddMeetingLink attaches an online meeting to an existing event.
	AddMeetingLink(ctx context.Context, accountID, id string) (Event, error)
}

// Watcher is implemented by sources whose backing data can change
// underneath skedge (local files). Returns nil if watching is not
// supported.
type Watcher interface {
	Watch() (<-chan ChangeEvent, error)
	StopWatching() error
}

// ChangeEvent announces that a source's data changed out-of-band.
type ChangeEvent struct {
	AccountID string
	Timestamp time.Time
}
