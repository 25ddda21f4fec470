package route

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"ais-route/internal/ais"
)

type Options struct {
	MaxSpeedKmh   float64
	EarthRadiusKm float64
	Workers       int // concurrent per-vessel workers
}

func DefaultOptions() Options {
	return Options{
		MaxSpeedKmh:   DefaultMaxSpeedKmh,
		EarthRadiusKm: EarthRadiusKm,
		Workers:       runtime.GOMAXPROCS(0),
	}
}

// Result holds one total per vessel seen among the validated reports.
type Result struct {
	Totals map[string]float64
	Stats  Stats
}

func (r *Result) Longest() (ais.VesselTotal, error) { return Longest(r.Totals) }

func (r *Result) Ranking() []ais.VesselTotal { return Ranking(r.Totals) }

// Analyzer runs the distance pipeline. Validation and grouping happen on the
// caller's goroutine; each trajectory is then reduced on its own worker and
// the per-vessel results are merged by a single writer.
type Analyzer struct {
	opts Options
}

// NewAnalyzer fills zero-valued options with the defaults.
func NewAnalyzer(opts Options) *Analyzer {
	def := DefaultOptions()
	if opts.MaxSpeedKmh <= 0 {
		opts.MaxSpeedKmh = def.MaxSpeedKmh
	}
	if opts.EarthRadiusKm <= 0 {
		opts.EarthRadiusKm = def.EarthRadiusKm
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	return &Analyzer{opts: opts}
}

func (a *Analyzer) Options() Options { return a.opts }

// Analyze drains in until it is closed. If ctx is cancelled first, partial
// totals are discarded and ctx.Err() is returned.
func (a *Analyzer) Analyze(ctx context.Context, in <-chan ais.RawRecord) (*Result, error) {
	g := newGrouper()
	var st Stats
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case rec, ok := <-in:
			if !ok {
				return a.reduce(ctx, g.trajectories(), st)
			}
			st.RecordsRead++
			pr, valid := Validate(rec)
			if !valid {
				st.ValidationDrops++
				continue
			}
			g.add(pr)
		}
	}
}

// AnalyzeRecords is Analyze over an in-memory slice.
func (a *Analyzer) AnalyzeRecords(ctx context.Context, recs []ais.RawRecord) (*Result, error) {
	g := newGrouper()
	var st Stats
	for _, rec := range recs {
		st.RecordsRead++
		pr, valid := Validate(rec)
		if !valid {
			st.ValidationDrops++
			continue
		}
		g.add(pr)
	}
	return a.reduce(ctx, g.trajectories(), st)
}

// AnalyzeReports skips validation; reports are assumed valid already.
func (a *Analyzer) AnalyzeReports(ctx context.Context, reports []ais.PositionReport) (*Result, error) {
	st := Stats{RecordsRead: len(reports)}
	return a.reduce(ctx, Group(reports), st)
}

type vesselResult struct {
	total ais.VesselTotal
	stats Stats
}

func (a *Analyzer) reduce(ctx context.Context, trajs map[string]ais.Trajectory, st Stats) (*Result, error) {
	ids := make([]string, 0, len(trajs))
	for id := range trajs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	// Each worker owns exactly one slot, so no locking is needed.
	results := make([]vesselResult, len(ids))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(a.opts.Workers)
	for i, id := range ids {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			vt, s := TrajectoryTotal(trajs[id], a.opts.MaxSpeedKmh, a.opts.EarthRadiusKm)
			results[i] = vesselResult{total: vt, stats: s}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("reduce trajectories: %w", err)
	}

	res := &Result{Totals: make(map[string]float64, len(results)), Stats: st}
	for _, r := range results {
		res.Totals[r.total.VesselID] = r.total.TotalDistanceKm
		res.Stats.add(r.stats)
	}
	return res, nil
}
