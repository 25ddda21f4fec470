package db

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrNoRuns = errors.New("no runs recorded")

// LatestRun returns the most recently finished run without its vessel totals.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	q := `
SELECT id, source, started_at, finished_at, max_speed_kmh, earth_radius_km,
       records_read, validation_drops, vessels, segments, degenerate_segments,
       implausible_segments, accepted_segments, longest_mmsi, longest_distance_km
FROM route_runs
ORDER BY finished_at DESC, id DESC
LIMIT 1`
	var r Run
	var started, finished int64
	err := s.db.QueryRowContext(ctx, q).Scan(
		&r.ID, &r.Source, &started, &finished, &r.MaxSpeedKmh, &r.EarthRadiusKm,
		&r.Stats.RecordsRead, &r.Stats.ValidationDrops, &r.Stats.Vessels, &r.Stats.Segments,
		&r.Stats.DegenerateSegments, &r.Stats.ImplausibleSegments, &r.Stats.AcceptedSegments,
		&r.Longest.VesselID, &r.Longest.TotalDistanceKm,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRuns
		}
		return nil, err
	}
	r.StartedAt = time.Unix(started, 0).UTC()
	r.FinishedAt = time.Unix(finished, 0).UTC()
	return &r, nil
}
