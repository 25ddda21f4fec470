package report

import (
	"fmt"
	"io"
	"strings"

	"ais-route/internal/ais"
)

var banner = strings.Repeat("#", 50)

// WriteLongest prints the longest route framed by a banner.
func WriteLongest(w io.Writer, vt ais.VesselTotal) error {
	_, err := fmt.Fprintf(w, "\n\n%s\n# Vessel MMSI: %s, Total Distance: %.3f km\n%s\n\n\n",
		banner, vt.VesselID, vt.TotalDistanceKm, banner)
	return err
}

// WriteRanking prints the first n entries of a ranking as a table; n <= 0
// prints all of them.
func WriteRanking(w io.Writer, ranking []ais.VesselTotal, n int) error {
	if n <= 0 || n > len(ranking) {
		n = len(ranking)
	}
	if _, err := fmt.Fprintf(w, "%-6s %-12s %14s\n", "RANK", "MMSI", "DISTANCE_KM"); err != nil {
		return err
	}
	for i, vt := range ranking[:n] {
		if _, err := fmt.Fprintf(w, "%-6d %-12s %14.3f\n", i+1, vt.VesselID, vt.TotalDistanceKm); err != nil {
			return err
		}
	}
	return nil
}
