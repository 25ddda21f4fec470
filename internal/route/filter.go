package route

import "ais-route/internal/ais"

// DefaultMaxSpeedKmh is the implied-speed ceiling above which a segment is
// treated as a GPS jump.
const DefaultMaxSpeedKmh = 100.0

type Outcome int

const (
	Accepted Outcome = iota
	Degenerate
	Implausible
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Degenerate:
		return "degenerate"
	case Implausible:
		return "implausible"
	}
	return "unknown"
}

// SpeedKmh is the implied average speed over elapsedSec seconds.
func SpeedKmh(distanceKm float64, elapsedSec int64) float64 {
	return distanceKm / (float64(elapsedSec) / 3600)
}

// Classify decides whether a segment contributes to its vessel's distance.
// Segments with non-positive elapsed time are Degenerate and never reach the
// speed computation. A speed equal to the ceiling is accepted.
func Classify(s ais.Segment, distanceKm, maxSpeedKmh float64) Outcome {
	elapsed := s.ElapsedSeconds()
	if elapsed <= 0 {
		return Degenerate
	}
	if SpeedKmh(distanceKm, elapsed) > maxSpeedKmh {
		return Implausible
	}
	return Accepted
}
