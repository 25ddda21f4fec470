package route

import "ais-route/internal/ais"

// Stats counts what happened to the input. Segments is always
// DegenerateSegments + ImplausibleSegments + AcceptedSegments.
type Stats struct {
	RecordsRead         int `json:"recordsRead"`
	ValidationDrops     int `json:"validationDrops"`
	Vessels             int `json:"vessels"`
	Segments            int `json:"segments"`
	DegenerateSegments  int `json:"degenerateSegments"`
	ImplausibleSegments int `json:"implausibleSegments"`
	AcceptedSegments    int `json:"acceptedSegments"`
}

func (s *Stats) add(o Stats) {
	s.RecordsRead += o.RecordsRead
	s.ValidationDrops += o.ValidationDrops
	s.Vessels += o.Vessels
	s.Segments += o.Segments
	s.DegenerateSegments += o.DegenerateSegments
	s.ImplausibleSegments += o.ImplausibleSegments
	s.AcceptedSegments += o.AcceptedSegments
}

func (s *Stats) count(o Outcome) {
	s.Segments++
	switch o {
	case Accepted:
		s.AcceptedSegments++
	case Degenerate:
		s.DegenerateSegments++
	case Implausible:
		s.ImplausibleSegments++
	}
}

// TrajectoryTotal runs one trajectory through segment building, distance and
// the speed filter, and sums the accepted distances. A trajectory with no
// accepted segment totals 0.
func TrajectoryTotal(t ais.Trajectory, maxSpeedKmh, radiusKm float64) (ais.VesselTotal, Stats) {
	var st Stats
	st.Vessels = 1
	total := 0.0
	for seg := range Segments(t) {
		var d float64
		if seg.ElapsedSeconds() > 0 {
			d = SegmentDistance(seg, radiusKm)
		}
		o := Classify(seg, d, maxSpeedKmh)
		st.count(o)
		if o == Accepted {
			total += d
		}
	}
	return ais.VesselTotal{VesselID: t.VesselID, TotalDistanceKm: total}, st
}

// Aggregate is the sequential reduction over all trajectories. Every vessel
// in trajs appears in the result.
func Aggregate(trajs map[string]ais.Trajectory, maxSpeedKmh, radiusKm float64) (map[string]float64, Stats) {
	totals := make(map[string]float64, len(trajs))
	var st Stats
	for id, t := range trajs {
		vt, s := TrajectoryTotal(t, maxSpeedKmh, radiusKm)
		totals[id] = vt.TotalDistanceKm
		st.add(s)
	}
	return totals, st
}
