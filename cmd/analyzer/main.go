package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"ais-route/internal/ais"
	"ais-route/internal/api"
	"ais-route/internal/config"
	"ais-route/internal/db"
	"ais-route/internal/metrics"
	"ais-route/internal/publisher"
	"ais-route/internal/report"
	"ais-route/internal/route"
)

func main() {
	input := flag.String("input", "", "AIS CSV export to analyse (overrides AIS_INPUT)")
	top := flag.Int("top", 0, "also print the n longest routes")
	flag.Parse()

	// Load configuration from .env and environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if *input != "" {
		cfg.InputPath = *input
	}

	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	analyzer := route.NewAnalyzer(route.Options{
		MaxSpeedKmh:   cfg.MaxSpeedKmh,
		EarthRadiusKm: cfg.EarthRadiusKm,
		Workers:       cfg.Workers,
	})
	opts := analyzer.Options()

	// Metrics setup
	var mcol *metrics.Collector
	if cfg.MetricsAddr != "" || cfg.PushgatewayURL != "" {
		mcol = metrics.NewCollector(opts)
	}
	if cfg.MetricsAddr != "" {
		srv := mcol.Serve(cfg.MetricsAddr)
		defer shutdown(srv)
	}

	var store *db.Store
	if cfg.DatabaseURL != "" {
		store = openStore(ctx, cfg.DatabaseURL)
		defer store.Close()
	}

	var pub *publisher.NATSPublisher
	if cfg.NATSURL != "" {
		pub, err = publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, cfg.LogNATSSubjects, wrapPublisherMetrics(mcol))
		if err != nil {
			log.Fatalf("nats error: %v", err)
		}
		defer pub.Close()
	}

	log.Printf("analysing %s (max_speed=%.1fkm/h radius=%.1fkm workers=%d)", cfg.InputPath, opts.MaxSpeedKmh, opts.EarthRadiusKm, opts.Workers)
	started := time.Now()
	res, err := analyze(ctx, cfg, analyzer)
	if err != nil {
		pushFailure(mcol, cfg.PushgatewayURL)
		log.Fatalf("analyse %s: %v", cfg.InputPath, err)
	}
	finished := time.Now()
	st := res.Stats
	log.Printf("read %d records in %v: dropped=%d vessels=%d segments=%d accepted=%d degenerate=%d implausible=%d",
		st.RecordsRead, finished.Sub(started).Round(time.Millisecond), st.ValidationDrops, st.Vessels,
		st.Segments, st.AcceptedSegments, st.DegenerateSegments, st.ImplausibleSegments)

	longest, err := res.Longest()
	if err != nil {
		pushFailure(mcol, cfg.PushgatewayURL)
		if errors.Is(err, route.ErrEmptyInput) {
			log.Fatalf("no validated position reports in %s", cfg.InputPath)
		}
		log.Fatalf("rank vessels: %v", err)
	}

	if err := report.WriteLongest(os.Stdout, longest); err != nil {
		log.Fatalf("write report: %v", err)
	}
	ranking := res.Ranking()
	if *top > 0 {
		if err := report.WriteRanking(os.Stdout, ranking, *top); err != nil {
			log.Fatalf("write ranking: %v", err)
		}
	}

	if mcol != nil {
		mcol.ObserveRun(st, longest.TotalDistanceKm, finished.Sub(started))
	}

	if store != nil {
		id, err := store.SaveRun(ctx, db.Run{
			Source:        cfg.InputPath,
			StartedAt:     started,
			FinishedAt:    finished,
			MaxSpeedKmh:   opts.MaxSpeedKmh,
			EarthRadiusKm: opts.EarthRadiusKm,
			Stats:         st,
			Longest:       longest,
			Totals:        ranking,
		})
		if err != nil {
			log.Printf("save run error: %v", err)
		} else {
			log.Printf("saved run %d (%d vessels)", id, len(ranking))
		}
	}

	if pub != nil {
		if err := pub.PublishLongest(publisher.NewLongestMessage(longest, opts, st, finished)); err != nil {
			log.Printf("publish longest error: %v", err)
		}
		if cfg.NATSPublishTotals {
			if err := pub.PublishRanking(ranking, finished); err != nil {
				log.Printf("publish ranking error: %v", err)
			}
		}
	}

	if mcol != nil && cfg.PushgatewayURL != "" {
		if err := mcol.Push(cfg.PushgatewayURL); err != nil {
			log.Printf("pushgateway error: %v", err)
		}
	}

	if cfg.APIAddr == "" {
		return
	}
	snap := api.NewSnapshot(cfg.InputPath, finished, opts, res)
	srv := &http.Server{Addr: cfg.APIAddr, Handler: api.SetupRouter(snap)}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("api server error: %v", err)
			cancel()
		}
	}()
	log.Printf("api listening on %s", cfg.APIAddr)

	// Block until context cancelled
	<-ctx.Done()
	shutdown(srv)
	log.Println("shutdown complete")
}

// analyze streams the input file through a bounded channel into the analyzer.
func analyze(ctx context.Context, cfg *config.Config, a *route.Analyzer) (*route.Result, error) {
	f, err := os.Open(cfg.InputPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rd, err := ais.NewReader(bufio.NewReaderSize(f, 1<<20), ais.ReaderOptions{
		Delimiter:       cfg.Delimiter,
		TimestampLayout: cfg.TimestampLayout,
		Location:        cfg.Location,
	})
	if err != nil {
		return nil, err
	}

	records := make(chan ais.RawRecord, cfg.ChannelBuffer)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rd.Stream(gctx, records) })

	var res *route.Result
	g.Go(func() error {
		var err error
		res, err = a.Analyze(gctx, records)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func openStore(ctx context.Context, dsn string) *db.Store {
	store, err := db.Open(dsn)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	if err := store.Ping(ctx); err != nil {
		log.Fatalf("db ping error: %v", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("db schema error: %v", err)
	}
	prev, err := store.LatestRun(ctx)
	switch {
	case errors.Is(err, db.ErrNoRuns):
	case err != nil:
		log.Printf("latest run lookup error: %v", err)
	default:
		log.Printf("previous run %d (%s): longest MMSI %s with %.3f km", prev.ID, prev.Source, prev.Longest.VesselID, prev.Longest.TotalDistanceKm)
	}
	return store
}

func shutdown(srv *http.Server) {
	// Shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

func pushFailure(c *metrics.Collector, url string) {
	if c == nil || url == "" {
		return
	}
	c.RunFailures.Inc()
	if err := c.Push(url); err != nil {
		log.Printf("pushgateway error: %v", err)
	}
}

// wrapPublisherMetrics adapts our Collector to the PublisherMetrics interface.
func wrapPublisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return &pubMetrics{c: c}
}

type pubMetrics struct{ c *metrics.Collector }

func (p *pubMetrics) NATSPublishedInc()              { p.c.NATSPublished.Inc() }
func (p *pubMetrics) NATSPublishErrInc()             { p.c.NATSPublishErrs.Inc() }
func (p *pubMetrics) PublishObserve(d time.Duration) { p.c.PublishDuration.Observe(d.Seconds()) }
func (p *pubMetrics) NATSSetConnected(b bool) {
	if b {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}
