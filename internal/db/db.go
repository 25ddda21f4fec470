package db

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"ais-route/internal/ais"
	"ais-route/internal/route"
)

// Store persists run summaries and per-vessel totals in PostgreSQL or SQLite.
type Store struct {
	db     *sql.DB
	driver string
}

// Run is one finished analysis.
type Run struct {
	ID            int64
	Source        string
	StartedAt     time.Time
	FinishedAt    time.Time
	MaxSpeedKmh   float64
	EarthRadiusKm float64
	Stats         route.Stats
	Longest       ais.VesselTotal
	Totals        []ais.VesselTotal
}

func Open(dsn string) (*Store, error) {
	driver, source, err := resolveDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("resolve DSN: %w", err)
	}
	if driver == driverSQLite && !strings.Contains(source, "?") {
		source += "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, err
	}
	switch driver {
	case driverSQLite:
		// One writer at a time; SQLite serialises writes anyway.
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}
	return &Store{db: db, driver: driver}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Driver() string { return s.driver }

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	idType := "BIGSERIAL PRIMARY KEY"
	if s.driver == driverSQLite {
		idType = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS route_runs (
  id %s,
  source TEXT NOT NULL,
  started_at BIGINT NOT NULL,
  finished_at BIGINT NOT NULL,
  max_speed_kmh DOUBLE PRECISION NOT NULL,
  earth_radius_km DOUBLE PRECISION NOT NULL,
  records_read BIGINT NOT NULL,
  validation_drops BIGINT NOT NULL,
  vessels BIGINT NOT NULL,
  segments BIGINT NOT NULL,
  degenerate_segments BIGINT NOT NULL,
  implausible_segments BIGINT NOT NULL,
  accepted_segments BIGINT NOT NULL,
  longest_mmsi TEXT NOT NULL,
  longest_distance_km DOUBLE PRECISION NOT NULL
)`, idType),
		`CREATE TABLE IF NOT EXISTS vessel_totals (
  run_id BIGINT NOT NULL REFERENCES route_runs(id) ON DELETE CASCADE,
  mmsi TEXT NOT NULL,
  total_distance_km DOUBLE PRECISION NOT NULL,
  PRIMARY KEY (run_id, mmsi)
)`,
		`CREATE INDEX IF NOT EXISTS idx_route_runs_finished_at ON route_runs (finished_at)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SaveRun writes the summary and every vessel total in one transaction and
// returns the new run id.
func (s *Store) SaveRun(ctx context.Context, run Run) (int64, error) {
	var id int64
	err := s.transaction(ctx, func(tx *sql.Tx) error {
		q := s.rebind(`
INSERT INTO route_runs (source, started_at, finished_at, max_speed_kmh, earth_radius_km,
  records_read, validation_drops, vessels, segments, degenerate_segments,
  implausible_segments, accepted_segments, longest_mmsi, longest_distance_km)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING id`)
		st := run.Stats
		if err := tx.QueryRowContext(ctx, q,
			run.Source, run.StartedAt.Unix(), run.FinishedAt.Unix(), run.MaxSpeedKmh, run.EarthRadiusKm,
			st.RecordsRead, st.ValidationDrops, st.Vessels, st.Segments, st.DegenerateSegments,
			st.ImplausibleSegments, st.AcceptedSegments, run.Longest.VesselID, run.Longest.TotalDistanceKm,
		).Scan(&id); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, s.rebind(
			`INSERT INTO vessel_totals (run_id, mmsi, total_distance_km) VALUES ($1, $2, $3)`))
		if err != nil {
			return fmt.Errorf("prepare vessel totals: %w", err)
		}
		defer stmt.Close()
		for _, vt := range run.Totals {
			if _, err := stmt.ExecContext(ctx, id, vt.VesselID, vt.TotalDistanceKm); err != nil {
				return fmt.Errorf("insert vessel %s: %w", vt.VesselID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// VesselTotals returns a run's totals in ranking order.
func (s *Store) VesselTotals(ctx context.Context, runID int64) ([]ais.VesselTotal, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT mmsi, total_distance_km FROM vessel_totals WHERE run_id = $1`), runID)
	if err != nil {
		return nil, fmt.Errorf("query vessel totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var mmsi string
		var km float64
		if err := rows.Scan(&mmsi, &km); err != nil {
			return nil, err
		}
		totals[mmsi] = km
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return route.Ranking(totals), nil
}

func (s *Store) transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

var placeholder = regexp.MustCompile(`\$\d+`)

// rebind rewrites $n placeholders to ? for SQLite. Queries pass their
// arguments in placeholder order.
func (s *Store) rebind(q string) string {
	if s.driver != driverSQLite {
		return q
	}
	return placeholder.ReplaceAllString(q, "?")
}
