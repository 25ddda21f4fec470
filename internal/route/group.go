package route

import (
	"slices"

	"ais-route/internal/ais"
)

// grouper partitions reports by vessel in arrival order.
type grouper struct {
	byVessel map[string][]ais.PositionReport
}

func newGrouper() *grouper {
	return &grouper{byVessel: make(map[string][]ais.PositionReport)}
}

func (g *grouper) add(r ais.PositionReport) {
	g.byVessel[r.VesselID] = append(g.byVessel[r.VesselID], r)
}

// trajectories sorts every partition by timestamp. The sort is stable, so
// reports sharing a timestamp keep their ingestion order.
func (g *grouper) trajectories() map[string]ais.Trajectory {
	out := make(map[string]ais.Trajectory, len(g.byVessel))
	for id, reports := range g.byVessel {
		slices.SortStableFunc(reports, func(a, b ais.PositionReport) int {
			return a.Timestamp.Compare(b.Timestamp)
		})
		out[id] = ais.Trajectory{VesselID: id, Reports: reports}
	}
	g.byVessel = nil
	return out
}

// Group builds one trajectory per vessel id found in reports. The input
// slice is not modified.
func Group(reports []ais.PositionReport) map[string]ais.Trajectory {
	g := newGrouper()
	for _, r := range reports {
		g.add(r)
	}
	return g.trajectories()
}
