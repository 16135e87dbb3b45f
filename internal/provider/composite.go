package provider

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Composite fans calls out to several sources: typically one bridge
// client plus any local .ics accounts. Reads merge; writes are routed to
// whichever source owns the account.
type Composite struct {
	mu        sync.RWMutex
	sources   []Source
	eventChan chan ChangeEvent
	stopChans []chan struct{}
}

// NewComposite creates a composite over the given sources.
func NewComposite(sources ...Source) *Composite {
	return &Composite{
		sources:   sources,
		eventChan: make(chan ChangeEvent, 10),
	}
}

// AddSource adds another source.
func (c *Composite) AddSource(source Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = append(c.sources, source)
}

func (c *Composite) Accounts(ctx context.Context) ([]Account, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var all []Account
	seen := make(map[string]bool)
	for _, source := range c.sources {
		accounts, err := source.Accounts(ctx)
		if err != nil {
			// One broken source should not hide the others' accounts.
			continue
		}
		for _, a := range accounts {
			if !seen[a.ID] {
				seen[a.ID] = true
				all = append(all, a)
			}
		}
	}
	return all, nil
}

func (c *Composite) Events(ctx context.Context, accountID string, start, end time.Time) ([]Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var all []Event
	seen := make(map[string]bool)
	var firstErr error
	for _, source := range c.sources {
		events, err := source.Events(ctx, accountID, start, end)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, ev := range events {
			if !seen[ev.ID] {
				seen[ev.ID] = true
				all = append(all, ev)
			}
		}
	}
	if all == nil && firstErr != nil {
		return nil, firstErr
	}
	return all, nil
}

func (c *Composite) Event(ctx context.Context, accountID, id string) (Event, error) {
	source, err := c.ownerOf(ctx, accountID)
	if err != nil {
		return Event{}, err
	}
	return source.Event(ctx, accountID, id)
}

func (c *Composite) Create(ctx context.Context, ev Event) (Event, error) {
	source, err := c.ownerOf(ctx, ev.AccountID)
	if err != nil {
		return Event{}, err
	}
	return source.Create(ctx, ev)
}

func (c *Composite) Update(ctx context.Context, ev Event) (Event, error) {
	source, err := c.ownerOf(ctx, ev.AccountID)
	if err != nil {
		return Event{}, err
	}
	return source.Update(ctx, ev)
}

func (c *Composite) Delete(ctx context.Context, accountID, id string) error {
	source, err := c.ownerOf(ctx, accountID)
	if err != nil {
		return err
	}
	return source.Delete(ctx, accountID, id)
}

func (c *Composite) AddMeetingLink(ctx context.Context, accountID, id string) (Event, error) {
	source, err := c.ownerOf(ctx, accountID)
	if err != nil {
		return Event{}, err
	}
	return source.AddMeetingLink(ctx, accountID, id)
}

// ownerOf finds the source serving the given account.
func (c *Composite) ownerOf(ctx context.Context, accountID string) (Source, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, source := range c.sources {
		accounts, err := source.Accounts(ctx)
		if err != nil {
			continue
		}
		for _, a := range accounts {
			if a.ID == accountID {
				return source, nil
			}
		}
	}
	return nil, fmt.Errorf("no source serves account %q", accountID)
}

// Watch forwards change notifications from every watchable source.
func (c *Composite) Watch() (<-chan ChangeEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, source := range c.sources {
		w, ok := source.(Watcher)
		if !ok {
			continue
		}
		sourceChan, err := w.Watch()
		if err != nil || sourceChan == nil {
			continue
		}

		stopChan := make(chan struct{})
		c.stopChans = append(c.stopChans, stopChan)

		go func(src <-chan ChangeEvent, stop chan struct{}) {
			for {
				select {
				case event, ok := <-src:
					if !ok {
						return
					}
					select {
					case c.eventChan <- event:
					default:
					}
				case <-stop:
					return
				}
			}
		}(sourceChan, stopChan)
	}

	return c.eventChan, nil
}

func (c *Composite) StopWatching() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, stopChan := range c.stopChans {
		close(stopChan)
	}
	c.stopChans = nil

	for _, source := range c.sources {
		if w, ok := source.(Watcher); ok {
			w.StopWatching()
		}
	}

	if c.eventChan != nil {
		close(c.eventChan)
		c.eventChan = nil
	}
	return nil
}
