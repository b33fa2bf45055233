package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aculich/gcp-billing-watcher/internal/models"
)

// SessionSpendRate compares the oldest and newest samples that share the
// newest sample's currency. It returns nil when fewer than two exist.
func (db *DB) SessionSpendRate(ctx context.Context) (*models.SpendRate, error) {
	var currency string
	err := db.QueryRowContext(ctx,
		"SELECT currency FROM cost_samples ORDER BY id DESC LIMIT 1").Scan(&currency)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest currency: %w", err)
	}

	query := `
		SELECT
			COUNT(*) AS data_points,
			(SELECT captured_at FROM cost_samples WHERE currency = ?1 ORDER BY id ASC LIMIT 1) AS since,
			(SELECT captured_at FROM cost_samples WHERE currency = ?1 ORDER BY id DESC LIMIT 1) AS until,
			(SELECT amount FROM cost_samples WHERE currency = ?1 ORDER BY id ASC LIMIT 1) AS first_amount,
			(SELECT amount FROM cost_samples WHERE currency = ?1 ORDER BY id DESC LIMIT 1) AS last_amount
		FROM cost_samples
		WHERE currency = ?1
	`

	rate := &models.SpendRate{Currency: currency}
	var since, until string
	if err := db.QueryRowContext(ctx, query, currency).Scan(
		&rate.DataPoints,
		&since,
		&until,
		&rate.FirstAmount,
		&rate.LastAmount,
	); err != nil {
		return nil, fmt.Errorf("failed to query spend rate: %w", err)
	}
	if rate.DataPoints < 2 {
		return nil, nil
	}

	rate.Since = parseTime(since)
	rate.Until = parseTime(until)
	return rate, nil
}
