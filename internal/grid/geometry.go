package grid

import "time"

// Rect is a rectangle in terminal cell coordinates.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// DropZone is a screen rectangle mapped to a candidate target date and,
// for timed views, a slot time. Zones are ephemeral: recomputed from
// layout parameters whenever the view mode or visible range changes,
// never persisted.
type DropZone struct {
	Bounds Rect
	Date   time.Time
	Timed  bool // false for month cells, true for week/day slots
	Hour   int
	Minute int
}

// Geometry holds the layout parameters of the currently rendered view.
// Zones are derived from these numbers, not queried back from rendered
// output.
type Geometry struct {
	OriginX, OriginY int
	CellW, CellH     int
}

// MonthZones builds one drop zone per month cell, row-major over the
// 6x7 grid.
func (g Geometry) MonthZones(cells []Cell) []DropZone {
	zones := make([]DropZone, 0, len(cells))
	for i, cell := range cells {
		row := i / MonthCols
		col := i % MonthCols
		zones = append(zones, DropZone{
			Bounds: Rect{
				X: g.OriginX + col*g.CellW,
				Y: g.OriginY + row*g.CellH,
				W: g.CellW,
				H: g.CellH,
			},
			Date: cell.Date,
		})
	}
	return zones
}

// SlotZones builds one drop zone per (day, slot) pair for the week and
// day views. Days run left to right, slots top to bottom starting at
// topSlot; visibleSlots bounds how many rows exist on screen.
func (g Geometry) SlotZones(days []time.Time, increment, topSlot, visibleSlots int) []DropZone {
	perDay := SlotsPerDay(increment)
	var zones []DropZone
	for col, day := range days {
		for row := 0; row < visibleSlots; row++ {
			slot := topSlot + row
			if slot < 0 || slot >= perDay {
				continue
			}
			hour, minute := SlotTime(slot, increment)
			zones = append(zones, DropZone{
				Bounds: Rect{
					X: g.OriginX + col*g.CellW,
					Y: g.OriginY + row*g.CellH,
					W: g.CellW,
					H: g.CellH,
				},
				Date:   day,
				Timed:  true,
				Hour:   hour,
				Minute: minute,
			})
		}
	}
	return zones
}

// HitTest returns the zone containing the point, or nil when the point
// lies outside every zone (a "cannot drop" state, not an error).
func HitTest(zones []DropZone, x, y int) *DropZone {
	for i := range zones {
		if zones[i].Bounds.Contains(x, y) {
			return &zones[i]
		}
	}
	return nil
}

// ZoneTime resolves a zone to the concrete wall-clock time it targets.
// Month zones target midnight of their date.
func (z DropZone) ZoneTime() time.Time {
	return time.Date(z.Date.Year(), z.Date.Month(), z.Date.Day(), z.Hour, z.Minute, 0, 0, z.Date.Location())
}
