// Package drag implements the pointer-gesture state machine for moving
// and resizing calendar events. The controller owns no rendering and no
// I/O: it consumes pointer coordinates and precomputed drop zones and
// produces, at most, one pending event update per completed gesture.
package drag

import (
	"errors"
	"time"

	"skedge/internal/grid"
	"skedge/internal/provider"
)

// Mode says which part of the event the gesture manipulates.
type Mode int

const (
	ModeMove Mode = iota
	ModeResizeStart
	ModeResizeEnd
)

func (m Mode) String() string {
	switch m {
	case ModeMove:
		return "move"
	case ModeResizeStart:
		return "resize-start"
	case ModeResizeEnd:
		return "resize-end"
	default:
		return "unknown"
	}
}

// State of the gesture machine.
type State int

const (
	StateIdle State = iota
	StatePending  // pointer down, movement still below threshold
	StateDragging
)

// MinDuration is the floor either resize direction clamps to.
const MinDuration = 15 * time.Minute

// DefaultThreshold is how many cells the pointer must travel before a
// press becomes a drag, so plain clicks never move events.
const DefaultThreshold = 2

var (
	// ErrNoTarget means the pointer was released outside every valid zone.
	ErrNoTarget = errors.New("no drop target")
	// ErrNotDragging means Drop was called outside a drag gesture.
	ErrNotDragging = errors.New("no drag in progress")
)

// Point is a pointer position in terminal cell coordinates.
type Point struct {
	X, Y int
}

// Update is the single pending change produced by a completed drop. It
// is not applied to local state by the controller; the caller issues the
// external update call and applies on confirmation only.
type Update struct {
	Event    provider.Event
	NewStart time.Time
	NewEnd   time.Time
}

// Controller tracks one pointer gesture at a time. It lives on the UI
// goroutine; no locking.
type Controller struct {
	Threshold int

	state  State
	mode   Mode
	event  provider.Event
	origin Point // where the pointer went down
	offset Point // grab offset within the event block

	zones  []grid.DropZone
	ghost  Point
	target *grid.DropZone
	valid  bool
}

// NewController returns an idle controller with the default threshold.
func NewController() *Controller {
	return &Controller{Threshold: DefaultThreshold}
}

// SetZones replaces the drop-zone set. Called whenever the view mode or
// visible range changes, since zones are derived from screen layout.
func (c *Controller) SetZones(zones []grid.DropZone) {
	c.zones = zones
	// A zone pointer from the old layout is meaningless now.
	c.target = nil
	c.valid = false
}

// State reports the current gesture state.
func (c *Controller) State() State { return c.state }

// Event returns the event being dragged; meaningful only outside idle.
func (c *Controller) Event() provider.Event { return c.event }

// Mode returns the active drag mode.
func (c *Controller) Mode() Mode { return c.mode }

// Ghost returns the current ghost-block position while dragging.
func (c *Controller) Ghost() Point { return c.ghost }

// Target returns the current candidate zone and whether dropping there
// is valid for the active mode.
func (c *Controller) Target() (*grid.DropZone, bool) {
	return c.target, c.valid
}

// Begin starts a gesture: pointer down on an event block. blockOrigin is
// the block's top-left so the ghost keeps the grab offset.
func (c *Controller) Begin(ev provider.Event, mode Mode, at, blockOrigin Point) {
	c.state = StatePending
	c.mode = mode
	c.event = ev
	c.origin = at
	c.offset = Point{X: at.X - blockOrigin.X, Y: at.Y - blockOrigin.Y}
	c.target = nil
	c.valid = false
}

// Move feeds a pointer-move. Below the threshold the gesture stays
// pending; past it the drag is live and every move updates the ghost and
// re-hit-tests the zones.
func (c *Controller) Move(at Point) {
	switch c.state {
	case StateIdle:
		return
	case StatePending:
		if abs(at.X-c.origin.X) < c.Threshold && abs(at.Y-c.origin.Y) < c.Threshold {
			return
		}
		c.state = StateDragging
		fallthrough
	case StateDragging:
		c.ghost = Point{X: at.X - c.offset.X, Y: at.Y - c.offset.Y}
		c.target = grid.HitTest(c.zones, at.X, at.Y)
		c.valid = c.target != nil && c.validFor(*c.target)
	}
}

// Drop completes the gesture on pointer-up. A pending (sub-threshold)
// gesture is a plain click: it resets with ErrNotDragging and no update.
// An invalid or missing target resets with ErrNoTarget.
func (c *Controller) Drop() (Update, error) {
	defer c.reset()

	if c.state != StateDragging {
		return Update{}, ErrNotDragging
	}
	if c.target == nil || !c.valid {
		return Update{}, ErrNoTarget
	}

	newStart, newEnd := c.apply(*c.target)
	return Update{Event: c.event, NewStart: newStart, NewEnd: newEnd}, nil
}

// Cancel abandons the gesture (Escape or focus loss). No calls are made
// and all transient state is discarded.
func (c *Controller) Cancel() {
	c.reset()
}

// validFor checks the candidate zone against the active mode: a move is
// always valid; resize-start must stay before the current end and
// resize-end after the current start.
func (c *Controller) validFor(zone grid.DropZone) bool {
	switch c.mode {
	case ModeMove:
		return true
	case ModeResizeStart:
		return zone.ZoneTime().Before(c.event.End)
	case ModeResizeEnd:
		return zone.ZoneTime().After(c.event.Start)
	default:
		return false
	}
}

// apply computes the new window for a valid drop. Move shifts both ends
// by the same delta, preserving duration exactly; either resize clamps
// to MinDuration.
func (c *Controller) apply(zone grid.DropZone) (time.Time, time.Time) {
	target := zone.ZoneTime()

	switch c.mode {
	case ModeMove:
		var newStart time.Time
		if zone.Timed {
			newStart = target
		} else {
			// Month cells move the date, keeping the time of day.
			newStart = time.Date(target.Year(), target.Month(), target.Day(),
				c.event.Start.Hour(), c.event.Start.Minute(), c.event.Start.Second(), 0, target.Location())
		}
		return newStart, newStart.Add(c.event.Duration())

	case ModeResizeStart:
		newStart := target
		if c.event.End.Sub(newStart) < MinDuration {
			newStart = c.event.End.Add(-MinDuration)
		}
		return newStart, c.event.End

	case ModeResizeEnd:
		newEnd := target
		if newEnd.Sub(c.event.Start) < MinDuration {
			newEnd = c.event.Start.Add(MinDuration)
		}
		return c.event.Start, newEnd
	}

	return c.event.Start, c.event.End
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.event = provider.Event{}
	c.target = nil
	c.valid = false
	c.ghost = Point{}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
