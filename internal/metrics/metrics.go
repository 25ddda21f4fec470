package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"ais-route/internal/route"
)

const pushJob = "ais_route_analyzer"

type Collector struct {
	reg *prometheus.Registry

	RecordsRead     prometheus.Counter
	ValidationDrops prometheus.Counter
	Segments        *prometheus.CounterVec // outcome label: accepted|degenerate|implausible
	Vessels         prometheus.Gauge

	LongestDistanceKm prometheus.Gauge
	RunDuration       prometheus.Histogram
	RunFailures       prometheus.Counter

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
	PublishDuration prometheus.Histogram

	MaxSpeedKmh   prometheus.Gauge
	EarthRadiusKm prometheus.Gauge
	Workers       prometheus.Gauge
}

func NewCollector(opts route.Options) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		RecordsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ais_records_read_total",
			Help: "Position records read from the input.",
		}),
		ValidationDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ais_validation_drops_total",
			Help: "Records dropped for missing or out-of-range fields.",
		}),
		Segments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ais_segments_total",
			Help: "Consecutive-position segments by filter outcome.",
		}, []string{"outcome"}),
		Vessels: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ais_vessels",
			Help: "Distinct vessels in the last run.",
		}),
		LongestDistanceKm: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ais_longest_route_km",
			Help: "Total distance of the longest route in the last run.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ais_run_duration_seconds",
			Help:    "Duration of a full analysis run.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
		}),
		RunFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ais_run_failures_total",
			Help: "Runs that ended with an error.",
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ais_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ais_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ais_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ais_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		MaxSpeedKmh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ais_max_speed_kmh",
			Help: "Configured implied-speed ceiling.",
		}),
		EarthRadiusKm: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ais_earth_radius_km",
			Help: "Configured haversine radius.",
		}),
		Workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ais_workers",
			Help: "Configured per-vessel workers.",
		}),
	}

	reg.MustRegister(
		c.RecordsRead, c.ValidationDrops, c.Segments, c.Vessels,
		c.LongestDistanceKm, c.RunDuration, c.RunFailures,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected, c.PublishDuration,
		c.MaxSpeedKmh, c.EarthRadiusKm, c.Workers,
	)

	c.MaxSpeedKmh.Set(opts.MaxSpeedKmh)
	c.EarthRadiusKm.Set(opts.EarthRadiusKm)
	c.Workers.Set(float64(opts.Workers))

	// Pre-create outcome series so they export as 0.
	for _, o := range []route.Outcome{route.Accepted, route.Degenerate, route.Implausible} {
		c.Segments.WithLabelValues(o.String())
	}

	return c
}

// ObserveRun records the exclusion counts of a finished run.
func (c *Collector) ObserveRun(st route.Stats, longestKm float64, d time.Duration) {
	c.RecordsRead.Add(float64(st.RecordsRead))
	c.ValidationDrops.Add(float64(st.ValidationDrops))
	c.Segments.WithLabelValues(route.Accepted.String()).Add(float64(st.AcceptedSegments))
	c.Segments.WithLabelValues(route.Degenerate.String()).Add(float64(st.DegenerateSegments))
	c.Segments.WithLabelValues(route.Implausible.String()).Add(float64(st.ImplausibleSegments))
	c.Vessels.Set(float64(st.Vessels))
	c.LongestDistanceKm.Set(longestKm)
	c.RunDuration.Observe(d.Seconds())
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}

// Push sends the registry to a Prometheus Pushgateway. A batch run exits
// before a scraper would see it, so this is how its numbers get out.
func (c *Collector) Push(url string) error {
	return push.New(url, pushJob).Gatherer(c.reg).Push()
}
