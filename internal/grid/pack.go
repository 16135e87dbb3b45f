package grid

import (
	"sort"

	"skedge/internal/provider"
)

// Placement is the packed display position of one event within a day
// column: side-by-side columns for concurrent events, widths summing to
// 100% across any horizontal line through the cluster.
type Placement struct {
	Event    provider.Event
	Column   int
	Columns  int // max concurrency of this event's overlap cluster
	LeftPct  float64
	WidthPct float64
}

// PackColumns assigns display columns to overlapping events. Events are
// sorted by start time and each takes the lowest column not occupied by
// an event it overlaps; widths are computed per connected overlap
// cluster. The column count is greedy, not an optimal interval-graph
// coloring, which is fine for interactive display.
func PackColumns(events []provider.Event) []Placement {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]provider.Event, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		if !sorted[i].End.Equal(sorted[j].End) {
			return sorted[i].End.After(sorted[j].End)
		}
		return sorted[i].ID < sorted[j].ID
	})

	placements := make([]Placement, 0, len(sorted))

	// Split into connected overlap clusters with a sweep: a new cluster
	// starts when an event begins at or after everything seen so far has
	// ended.
	clusterStart := 0
	clusterMaxEnd := sorted[0].EffectiveEnd()
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i].Start.Before(clusterMaxEnd) {
			if end := sorted[i].EffectiveEnd(); end.After(clusterMaxEnd) {
				clusterMaxEnd = end
			}
			continue
		}
		placements = append(placements, packCluster(sorted[clusterStart:i])...)
		if i < len(sorted) {
			clusterStart = i
			clusterMaxEnd = sorted[i].EffectiveEnd()
		}
	}

	return placements
}

// packCluster assigns columns within one cluster of mutually connected
// events (already sorted by start).
func packCluster(cluster []provider.Event) []Placement {
	type placed struct {
		event  provider.Event
		column int
	}
	assigned := make([]placed, 0, len(cluster))

	maxColumn := 0
	for _, ev := range cluster {
		column := 0
		for {
			taken := false
			for _, p := range assigned {
				if p.column != column {
					continue
				}
				if ev.Start.Before(p.event.EffectiveEnd()) && ev.EffectiveEnd().After(p.event.Start) {
					taken = true
					break
				}
			}
			if !taken {
				break
			}
			column++
		}
		assigned = append(assigned, placed{event: ev, column: column})
		if column > maxColumn {
			maxColumn = column
		}
	}

	columns := maxColumn + 1
	width := 100.0 / float64(columns)

	out := make([]Placement, 0, len(assigned))
	for _, p := range assigned {
		out = append(out, Placement{
			Event:    p.event,
			Column:   p.column,
			Columns:  columns,
			LeftPct:  float64(p.column) * width,
			WidthPct: width,
		})
	}
	return out
}
