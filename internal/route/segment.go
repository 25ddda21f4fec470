package route

import (
	"iter"

	"ais-route/internal/ais"
)

// Segments yields (t[i], t[i+1]) for every adjacent pair of reports, so a
// trajectory of n reports produces max(0, n-1) segments.
func Segments(t ais.Trajectory) iter.Seq[ais.Segment] {
	return func(yield func(ais.Segment) bool) {
		for i := 1; i < len(t.Reports); i++ {
			if !yield(ais.Segment{Prev: t.Reports[i-1], Curr: t.Reports[i]}) {
				return
			}
		}
	}
}
