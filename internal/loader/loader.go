// Package loader manages the event cache behind the views: canonical
// range keys, TTL-based reuse, loaded-range bookkeeping, and the
// generation counter that discards stale in-flight fetches.
package loader

import (
	"fmt"
	"sort"
	"time"

	"skedge/internal/provider"
)

const (
	// DefaultTTL is how long a cached range stays fresh.
	DefaultTTL = 5 * time.Minute
	// MaxEntries caps the cache; the oldest fetch is evicted first.
	MaxEntries = 10
	// DefaultPreloadDays widens every requested range on both sides so
	// nearby navigation hits cache.
	DefaultPreloadDays = 30
)

// Range is a half-open [Start, End) time window.
type Range struct {
	Start, End time.Time
}

// Contains reports whether r fully covers other.
func (r Range) Contains(other Range) bool {
	return !r.Start.After(other.Start) && !r.End.Before(other.End)
}

// mergeable reports whether two ranges overlap or sit within one day of
// each other, close enough to treat as one continuous loaded region.
func mergeable(a, b Range) bool {
	gap := 24 * time.Hour
	return !a.Start.After(b.End.Add(gap)) && !b.Start.After(a.End.Add(gap))
}

func merge(a, b Range) Range {
	out := a
	if b.Start.Before(out.Start) {
		out.Start = b.Start
	}
	if b.End.After(out.End) {
		out.End = b.End
	}
	return out
}

// Key builds the canonical cache key for an account filter and range.
// An empty accountID means all accounts.
func Key(accountID string, r Range) string {
	acct := accountID
	if acct == "" {
		acct = "all"
	}
	return fmt.Sprintf("%s|%s|%s", acct,
		r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}

type entry struct {
	key       string
	accountID string
	rng       Range
	events    []provider.Event
	fetchedAt time.Time
}

// Loader owns the cache and the loaded-range set. It lives on the UI
// goroutine; fetches run elsewhere and report back through Apply.
type Loader struct {
	TTL         time.Duration
	PreloadDays int

	entries []entry // insertion order, oldest first
	gen     uint64
	now     func() time.Time
}

// New returns an empty loader with the default TTL and preload window.
func New() *Loader {
	return &Loader{TTL: DefaultTTL, PreloadDays: DefaultPreloadDays, now: time.Now}
}

// Generation returns the current fetch generation. Results produced
// under an older generation are discarded by Apply.
func (l *Loader) Generation() uint64 { return l.gen }

// Get returns cached events covering the range for the account filter,
// or ok=false when a fetch is needed. Freshness is per entry; a range
// no single entry covers is still served when the merged ranges of the
// fresh entries cover it.
func (l *Loader) Get(accountID string, r Range) ([]provider.Event, bool) {
	var fresh []*entry
	for i := range l.entries {
		e := &l.entries[i]
		if e.accountID != accountID {
			continue
		}
		if l.now().Sub(e.fetchedAt) > l.TTL {
			continue
		}
		if e.rng.Contains(r) {
			return filterRange(e.events, r), true
		}
		fresh = append(fresh, e)
	}
	if !covers(fresh, r) {
		return nil, false
	}

	// Entries overlap where ranges were re-fetched, so dedup by ID.
	seen := make(map[string]bool)
	var out []provider.Event
	for _, e := range fresh {
		for _, ev := range filterRange(e.events, r) {
			if seen[ev.ID] {
				continue
			}
			seen[ev.ID] = true
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out, true
}

// covers reports whether the entries' merged ranges fully contain r,
// using the same merge rule as the loaded-range set.
func covers(entries []*entry, r Range) bool {
	var regions []Range
	for _, e := range entries {
		regions = fold(regions, e.rng)
	}
	for _, have := range regions {
		if have.Contains(r) {
			return true
		}
	}
	return false
}

// NeedsFetch reports whether the expanded range is absent from the
// cache. Views call this before issuing a fetch command.
func (l *Loader) NeedsFetch(accountID string, r Range) bool {
	_, ok := l.Get(accountID, l.FetchWindow(r))
	return !ok
}

// FetchWindow returns the range a fetch for r should request, widened by
// the preload window on both sides.
func (l *Loader) FetchWindow(r Range) Range {
	return Range{
		Start: r.Start.AddDate(0, 0, -l.PreloadDays),
		End:   r.End.AddDate(0, 0, l.PreloadDays),
	}
}

// AdjacentWindows returns the previous and next windows of the same
// width, the targets of the delayed prefetch ticks.
func AdjacentWindows(r Range) (prev, next Range) {
	width := r.End.Sub(r.Start)
	prev = Range{Start: r.Start.Add(-width), End: r.Start}
	next = Range{Start: r.End, End: r.End.Add(width)}
	return prev, next
}

// Apply stores a completed fetch. Results from a generation older than
// the loader's current one are stale, the cache was invalidated while
// they were in flight, and are dropped.
func (l *Loader) Apply(gen uint64, accountID string, r Range, events []provider.Event) bool {
	if gen != l.gen {
		return false
	}

	key := Key(accountID, r)
	for i := range l.entries {
		if l.entries[i].key == key {
			l.entries[i].events = events
			l.entries[i].fetchedAt = l.now()
			return true
		}
	}

	if len(l.entries) >= MaxEntries {
		l.evictOldest()
	}
	l.entries = append(l.entries, entry{
		key:       key,
		accountID: accountID,
		rng:       r,
		events:    events,
		fetchedAt: l.now(),
	})
	return true
}

// Invalidate drops every entry touching the account and bumps the
// generation so in-flight fetches started before the mutation are
// discarded when they land. An empty accountID clears everything.
func (l *Loader) Invalidate(accountID string) {
	l.gen++
	if accountID == "" {
		l.entries = nil
		return
	}
	kept := l.entries[:0]
	for _, e := range l.entries {
		// The all-accounts view includes this account's events too.
		if e.accountID == accountID || e.accountID == "" {
			continue
		}
		kept = append(kept, e)
	}
	l.entries = kept
}

// Len reports the number of cache entries, for the status line.
func (l *Loader) Len() int { return len(l.entries) }

func (l *Loader) evictOldest() {
	oldest := 0
	for i := range l.entries {
		if l.entries[i].fetchedAt.Before(l.entries[oldest].fetchedAt) {
			oldest = i
		}
	}
	l.entries = append(l.entries[:oldest], l.entries[oldest+1:]...)
}

// fold merges r into regions, collapsing everything mergeable with it.
func fold(regions []Range, r Range) []Range {
	for {
		merged := false
		for i, have := range regions {
			if mergeable(have, r) {
				r = merge(have, r)
				regions = append(regions[:i], regions[i+1:]...)
				merged = true
				break
			}
		}
		if !merged {
			break
		}
	}
	return append(regions, r)
}

// LoadedRanges returns the merged loaded regions, earliest first. It is
// derived from the cache entries, so eviction and invalidation are
// reflected immediately.
func (l *Loader) LoadedRanges() []Range {
	var regions []Range
	for _, e := range l.entries {
		regions = fold(regions, e.rng)
	}
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].Start.Before(regions[j].Start)
	})
	return regions
}

func filterRange(events []provider.Event, r Range) []provider.Event {
	var out []provider.Event
	for _, ev := range events {
		if ev.OverlapsRange(r.Start, r.End) {
			out = append(out, ev)
		}
	}
	return out
}
