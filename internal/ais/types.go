package ais

import (
	"database/sql"
	"time"
)

// RawRecord is one CSV row after casting. A field that was empty or failed to
// parse is left invalid, the same way a SQL cast yields NULL.
type RawRecord struct {
	Line      int // 1-based line in the source file, 0 if unknown
	MMSI      sql.NullString
	Latitude  sql.NullFloat64
	Longitude sql.NullFloat64
	Timestamp sql.NullTime
}

// PositionReport is a validated AIS observation.
type PositionReport struct {
	VesselID  string
	Latitude  float64 // degrees
	Longitude float64 // degrees
	Timestamp time.Time
}

// Trajectory holds one vessel's reports in ascending timestamp order.
type Trajectory struct {
	VesselID string
	Reports  []PositionReport
}

func (t Trajectory) Len() int { return len(t.Reports) }

// Segment is a directed pair of consecutive reports within one trajectory.
type Segment struct {
	Prev PositionReport
	Curr PositionReport
}

// Elapsed is Curr.Timestamp - Prev.Timestamp and may be zero or negative
// when a vessel reports duplicate or out-of-order timestamps.
func (s Segment) Elapsed() time.Duration { return s.Curr.Timestamp.Sub(s.Prev.Timestamp) }

// ElapsedSeconds truncates to whole seconds, matching the resolution of the input.
func (s Segment) ElapsedSeconds() int64 {
	return s.Curr.Timestamp.Unix() - s.Prev.Timestamp.Unix()
}

type VesselTotal struct {
	VesselID        string  `json:"mmsi"`
	TotalDistanceKm float64 `json:"totalDistanceKm"`
}
