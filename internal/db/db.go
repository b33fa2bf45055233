// Package db manages the session sample log. The log lives in an
// in-memory SQLite database and is discarded when the process exits.
package db

import (
	"context"
	"database/sql"
	"fmt"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection with application-specific methods.
type DB struct {
	*sql.DB
}

// New opens an in-memory database and creates the schema.
func New() (*DB, error) {
	return open(memoryDSN)
}

func open(dsn string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB}

	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// configure sets up database pragmas.
func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	if err := db.createCostSamplesTable(); err != nil {
		return err
	}
	return db.createRefreshLogTable()
}

func (db *DB) createCostSamplesTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS cost_samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		captured_at TEXT NOT NULL,
		refresh_id TEXT,
		currency TEXT NOT NULL DEFAULT 'USD',
		alert_level TEXT NOT NULL,
		amount REAL DEFAULT 0,
		amount_before_credits REAL DEFAULT 0,
		credits_amount REAL DEFAULT 0,
		last_month_amount REAL DEFAULT 0,
		last_3_months_amount REAL DEFAULT 0,
		yearly_amount REAL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_cost_samples_captured ON cost_samples(captured_at);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createRefreshLogTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS refresh_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		refresh_id TEXT NOT NULL,
		started_at TEXT NOT NULL,
		trigger_kind TEXT NOT NULL,
		outcome TEXT NOT NULL,
		error TEXT,
		duration_ms INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_refresh_log_started ON refresh_log(started_at);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}
