package api

import (
	"time"

	"ais-route/internal/ais"
	"ais-route/internal/route"
)

// Snapshot is the immutable result of one run as served by the API.
type Snapshot struct {
	Source     string
	FinishedAt time.Time
	Options    route.Options
	Stats      route.Stats
	Ranking    []ais.VesselTotal

	rank map[string]int // vessel id -> index into Ranking
}

func NewSnapshot(source string, finishedAt time.Time, opts route.Options, res *route.Result) *Snapshot {
	ranking := res.Ranking()
	rank := make(map[string]int, len(ranking))
	for i, vt := range ranking {
		rank[vt.VesselID] = i
	}
	return &Snapshot{
		Source:     source,
		FinishedAt: finishedAt,
		Options:    opts,
		Stats:      res.Stats,
		Ranking:    ranking,
		rank:       rank,
	}
}

// Vessel returns a vessel's total and its 1-based rank.
func (s *Snapshot) Vessel(id string) (ais.VesselTotal, int, bool) {
	i, ok := s.rank[id]
	if !ok {
		return ais.VesselTotal{}, 0, false
	}
	return s.Ranking[i], i + 1, true
}
