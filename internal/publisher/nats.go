package publisher

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"ais-route/internal/ais"
	"ais-route/internal/route"
)

type NATSPublisher struct {
	nc          *nats.Conn
	prefix      string
	logSubjects bool
	metrics     PublisherMetrics
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

func NewNATSPublisher(url, prefix string, logSubjects bool, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("ais-route-analyzer"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return &NATSPublisher{nc: nc, prefix: prefix, logSubjects: logSubjects, metrics: m}, nil
}

// Close flushes pending messages before closing the connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		if err := p.nc.Drain(); err != nil {
			log.Printf("nats drain: %v", err)
		}
		p.nc.Close()
	}
}

type LongestMessage struct {
	MMSI            string      `json:"mmsi"`
	TotalDistanceKm float64     `json:"totalDistanceKm"`
	MaxSpeedKmh     float64     `json:"maxSpeedKmh"`
	Stats           route.Stats `json:"stats"`
	FinishedAt      time.Time   `json:"finishedAt"`
}

type VesselMessage struct {
	MMSI            string    `json:"mmsi"`
	TotalDistanceKm float64   `json:"totalDistanceKm"`
	Rank            int       `json:"rank"`
	FinishedAt      time.Time `json:"finishedAt"`
}

func NewLongestMessage(vt ais.VesselTotal, opts route.Options, st route.Stats, at time.Time) LongestMessage {
	return LongestMessage{
		MMSI:            vt.VesselID,
		TotalDistanceKm: vt.TotalDistanceKm,
		MaxSpeedKmh:     opts.MaxSpeedKmh,
		Stats:           st,
		FinishedAt:      at,
	}
}

func (p *NATSPublisher) PublishLongest(msg LongestMessage) error {
	return p.publish(LongestSubject(p.prefix), msg)
}

// PublishRanking sends one message per vessel, rank 1 first. It stops at the
// first failed publish.
func (p *NATSPublisher) PublishRanking(ranking []ais.VesselTotal, at time.Time) error {
	for i, vt := range ranking {
		msg := VesselMessage{MMSI: vt.VesselID, TotalDistanceKm: vt.TotalDistanceKm, Rank: i + 1, FinishedAt: at}
		if err := p.publish(VesselSubject(p.prefix, vt.VesselID), msg); err != nil {
			return fmt.Errorf("publish vessel %s: %w", vt.VesselID, err)
		}
	}
	return nil
}

func (p *NATSPublisher) publish(subject string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if p.logSubjects {
		log.Printf("nats publish subject=%s", subject)
	}
	start := time.Now()
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

func LongestSubject(prefix string) string { return prefix + ".longest" }

func VesselSubject(prefix, mmsi string) string {
	return fmt.Sprintf("%s.vessel.%s", prefix, subjectToken(mmsi))
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
