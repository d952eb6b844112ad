package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ParseDSN picks the driver for a DATABASE_URL. "sqlite:" and "file:" URLs and
// ":memory:" open a local SQLite database; everything else goes to postgres.
func ParseDSN(dsn string) (driver string, source string) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == ":memory:":
		return DriverSQLite, dsn
	case strings.HasPrefix(dsn, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(dsn, "sqlite://")
	case strings.HasPrefix(dsn, "sqlite:"):
		return DriverSQLite, strings.TrimPrefix(dsn, "sqlite:")
	case strings.HasPrefix(dsn, "file:"):
		return DriverSQLite, dsn
	default:
		return DriverPostgres, dsn
	}
}

// Connect opens and pings the database, returning the handle and the driver name.
func Connect(dsn string, timeout time.Duration) (*sql.DB, string, error) {
	driver, source := ParseDSN(dsn)
	if source == "" {
		return nil, "", fmt.Errorf("empty database source in %q", dsn)
	}

	if driver == DriverSQLite && source != ":memory:" && !strings.HasPrefix(source, "file:") {
		if parent := filepath.Dir(source); parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, "", fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create database handle: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		for _, pragma := range []string{
			`PRAGMA busy_timeout = 5000;`,
			`PRAGMA journal_mode = WAL;`,
			`PRAGMA foreign_keys = ON;`,
		} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, "", fmt.Errorf("failed to apply %q: %w", pragma, err)
			}
		}
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, driver, nil
}
