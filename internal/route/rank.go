package route

import (
	"cmp"
	"errors"
	"slices"
	"strconv"

	"ais-route/internal/ais"
)

// ErrEmptyInput is returned when no vessel has a single validated report.
// A run where every vessel totals zero is not empty.
var ErrEmptyInput = errors.New("no vessels observed")

// Ranking orders every vessel by total distance, longest first. Ties go to
// the smaller vessel id, so the order is the same on every run.
func Ranking(totals map[string]float64) []ais.VesselTotal {
	out := make([]ais.VesselTotal, 0, len(totals))
	for id, km := range totals {
		out = append(out, ais.VesselTotal{VesselID: id, TotalDistanceKm: km})
	}
	slices.SortFunc(out, func(a, b ais.VesselTotal) int {
		if c := cmp.Compare(b.TotalDistanceKm, a.TotalDistanceKm); c != 0 {
			return c
		}
		return CompareVesselID(a.VesselID, b.VesselID)
	})
	return out
}

// Longest returns the vessel with the greatest total distance.
func Longest(totals map[string]float64) (ais.VesselTotal, error) {
	if len(totals) == 0 {
		return ais.VesselTotal{}, ErrEmptyInput
	}
	var best ais.VesselTotal
	first := true
	for id, km := range totals {
		if first || km > best.TotalDistanceKm || (km == best.TotalDistanceKm && CompareVesselID(id, best.VesselID) < 0) {
			best = ais.VesselTotal{VesselID: id, TotalDistanceKm: km}
			first = false
		}
	}
	return best, nil
}

// CompareVesselID orders unsigned-integer ids (MMSI) numerically and before
// any other id, and everything else lexicographically. Equal numbers with
// different text ("09", "9") fall back to the text.
func CompareVesselID(a, b string) int {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if c := cmp.Compare(na, nb); c != 0 {
			return c
		}
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return cmp.Compare(a, b)
}
