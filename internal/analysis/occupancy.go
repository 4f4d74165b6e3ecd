package analysis

import (
	"fmt"
	"slices"
	"strings"
)

// StateCount is how many particles of a snapshot are in State.
type StateCount[S comparable] struct {
	State    S
	Count    int
	Fraction float64
}

// Occupancy counts the particles in each distinct state, most populated
// first. Ties keep the order in which states first appear.
func Occupancy[S comparable](states []S) []StateCount[S] {
	index := make(map[S]int)
	var out []StateCount[S]
	for _, s := range states {
		i, ok := index[s]
		if !ok {
			i = len(out)
			index[s] = i
			out = append(out, StateCount[S]{State: s})
		}
		out[i].Count++
	}

	for i := range out {
		out[i].Fraction = float64(out[i].Count) / float64(len(states))
	}
	slices.SortStableFunc(out, func(a, b StateCount[S]) int {
		return b.Count - a.Count
	})
	return out
}

// OccupancyToASCII renders one horizontal bar per state.
func OccupancyToASCII[S comparable](counts []StateCount[S], width int) string {
	if len(counts) == 0 || width <= 0 {
		return ""
	}

	labels := make([]string, len(counts))
	pad := 0
	for i, c := range counts {
		labels[i] = fmt.Sprint(c.State)
		pad = max(pad, len(labels[i]))
	}

	var sb strings.Builder
	for i, c := range counts {
		bar := int(c.Fraction * float64(width))
		fmt.Fprintf(&sb, "%-*s %s %6.2f%%\n", pad, labels[i], strings.Repeat("█", bar), 100*c.Fraction)
	}
	return sb.String()
}
