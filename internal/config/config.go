package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
	"unicode/utf8"

	"github.com/joho/godotenv"
)

type Config struct {
	InputPath       string
	Delimiter       rune
	TimestampLayout string
	Location        *time.Location

	MaxSpeedKmh   float64
	EarthRadiusKm float64
	Workers       int
	ChannelBuffer int

	DatabaseURL string

	NATSURL           string
	NATSSubjectPrefix string
	NATSPublishTotals bool
	LogNATSSubjects   bool

	MetricsAddr    string
	PushgatewayURL string
	APIAddr        string
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.InputPath = getenvDefault("AIS_INPUT", "aisdk.csv")

	delim := getenvDefault("AIS_DELIMITER", ",")
	if delim == `\t` {
		delim = "\t"
	}
	r, size := utf8.DecodeRuneInString(delim)
	if size == 0 || size != len(delim) || r == utf8.RuneError || r == '"' || r == '\n' || r == '\r' {
		return nil, fmt.Errorf("invalid AIS_DELIMITER: %q", delim)
	}
	cfg.Delimiter = r

	cfg.TimestampLayout = getenvDefault("AIS_TIMESTAMP_LAYOUT", "02/01/2006 15:04:05")

	// Time zone the timestamps were recorded in
	if tzName := os.Getenv("TZ"); tzName == "" {
		cfg.Location = time.UTC
	} else {
		loc, err := time.LoadLocation(tzName)
		if err != nil {
			return nil, fmt.Errorf("invalid TZ: %v", err)
		}
		cfg.Location = loc
	}

	var err error
	if cfg.MaxSpeedKmh, err = positiveFloat("MAX_SPEED_KMH", 100); err != nil {
		return nil, err
	}
	if cfg.EarthRadiusKm, err = positiveFloat("EARTH_RADIUS_KM", 6371); err != nil {
		return nil, err
	}
	if cfg.Workers, err = positiveInt("WORKERS", runtime.GOMAXPROCS(0)); err != nil {
		return nil, err
	}
	if cfg.ChannelBuffer, err = positiveInt("CHANNEL_BUFFER", 1024); err != nil {
		return nil, err
	}

	// Empty disables persistence.
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	// Empty disables publishing.
	cfg.NATSURL = os.Getenv("NATS_URL")
	cfg.NATSSubjectPrefix = strings.Trim(getenvDefault("NATS_SUBJECT_PREFIX", "ais.routes"), ".")
	if cfg.NATSSubjectPrefix == "" {
		return nil, fmt.Errorf("invalid NATS_SUBJECT_PREFIX: empty")
	}
	cfg.NATSPublishTotals = parseBool(os.Getenv("NATS_PUBLISH_TOTALS"))
	cfg.LogNATSSubjects = parseBool(os.Getenv("LOG_NATS_SUBJECTS"))

	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")
	cfg.PushgatewayURL = os.Getenv("PUSHGATEWAY_URL")

	// Results API listen address (e.g., ":8080"). Empty exits after the run.
	cfg.APIAddr = os.Getenv("API_ADDR")

	return cfg, nil
}

func positiveFloat(k string, def float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return f, nil
}

func positiveInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return n, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	}
	return false
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
