package db

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	driverPostgres = "pgx"
	driverSQLite   = "sqlite"
)

// resolveDSN maps a DATABASE_URL to a database/sql driver name and source.
// postgres:// and postgresql:// go to pgx unchanged; sqlite:<path>,
// sqlite://<path> and a bare file path open a SQLite database.
func resolveDSN(dsn string) (driver, source string, err error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return "", "", fmt.Errorf("empty DSN")
	}
	if rest, ok := strings.CutPrefix(dsn, "sqlite:"); ok {
		rest = strings.TrimPrefix(rest, "//")
		if rest == "" {
			return "", "", fmt.Errorf("sqlite DSN without path")
		}
		return driverSQLite, rest, nil
	}
	if strings.HasPrefix(dsn, "file:") || !strings.Contains(dsn, "://") {
		return driverSQLite, dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", "", err
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return driverPostgres, dsn, nil
	}
	return "", "", fmt.Errorf("unsupported DSN scheme %q", u.Scheme)
}
