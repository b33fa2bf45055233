package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aculich/gcp-billing-watcher/internal/models"
)

// InsertSample appends a sample to the session log and trims the log to
// its maximum size.
func (db *DB) InsertSample(ctx context.Context, s *models.CostSample) error {
	query := `
		INSERT INTO cost_samples (
			captured_at, refresh_id, currency, alert_level, amount,
			amount_before_credits, credits_amount, last_month_amount,
			last_3_months_amount, yearly_amount
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	capturedAt := s.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}

	result, err := db.ExecContext(ctx, query,
		formatTime(capturedAt),
		nullString(s.RefreshID),
		s.Currency,
		s.AlertLevel,
		s.Amount,
		s.AmountBeforeCredits,
		s.CreditsAmount,
		s.LastMonthAmount,
		s.Last3MonthsAmount,
		s.YearlyAmount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cost sample: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		s.ID = id
	}

	return db.pruneSamples(ctx, maxSamples)
}

// RecentSamples returns up to limit of the newest samples, oldest first.
func (db *DB) RecentSamples(ctx context.Context, limit int) ([]models.CostSample, error) {
	query := `
		SELECT id, captured_at, refresh_id, currency, alert_level, amount,
			   amount_before_credits, credits_amount, last_month_amount,
			   last_3_months_amount, yearly_amount
		FROM (
			SELECT * FROM cost_samples ORDER BY id DESC LIMIT ?
		)
		ORDER BY id ASC
	`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cost samples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var samples []models.CostSample
	for rows.Next() {
		var s models.CostSample
		var capturedAt string
		var refreshID sql.NullString

		if err := rows.Scan(
			&s.ID,
			&capturedAt,
			&refreshID,
			&s.Currency,
			&s.AlertLevel,
			&s.Amount,
			&s.AmountBeforeCredits,
			&s.CreditsAmount,
			&s.LastMonthAmount,
			&s.Last3MonthsAmount,
			&s.YearlyAmount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cost sample: %w", err)
		}

		s.CapturedAt = parseTime(capturedAt)
		s.RefreshID = refreshID.String
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

// SampleCount returns the number of samples in the log.
func (db *DB) SampleCount(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cost_samples").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cost samples: %w", err)
	}
	return n, nil
}

// pruneSamples deletes all but the newest keep samples.
func (db *DB) pruneSamples(ctx context.Context, keep int) error {
	query := `
		DELETE FROM cost_samples
		WHERE id NOT IN (SELECT id FROM cost_samples ORDER BY id DESC LIMIT ?)
	`
	if _, err := db.ExecContext(ctx, query, keep); err != nil {
		return fmt.Errorf("failed to prune cost samples: %w", err)
	}
	return nil
}

// InsertRefresh records the outcome of one refresh.
func (db *DB) InsertRefresh(ctx context.Context, r *models.RefreshRecord) error {
	query := `
		INSERT INTO refresh_log (refresh_id, started_at, trigger_kind, outcome, error, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := db.ExecContext(ctx, query,
		r.RefreshID,
		formatTime(r.StartedAt),
		string(r.Trigger),
		string(r.Outcome),
		nullString(r.Error),
		r.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert refresh record: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		r.ID = id
	}
	return nil
}

// RecentRefreshes returns up to limit refresh records, newest first.
func (db *DB) RecentRefreshes(ctx context.Context, limit int) ([]models.RefreshRecord, error) {
	query := `
		SELECT id, refresh_id, started_at, trigger_kind, outcome, error, duration_ms
		FROM refresh_log
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query refresh log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.RefreshRecord
	for rows.Next() {
		var r models.RefreshRecord
		var startedAt, trigger, outcome string
		var errStr sql.NullString
		var durationMs int64

		if err := rows.Scan(&r.ID, &r.RefreshID, &startedAt, &trigger, &outcome, &errStr, &durationMs); err != nil {
			return nil, fmt.Errorf("failed to scan refresh record: %w", err)
		}

		r.StartedAt = parseTime(startedAt)
		r.Trigger = models.RefreshTrigger(trigger)
		r.Outcome = models.RefreshOutcome(outcome)
		r.Error = errStr.String
		r.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, r)
	}

	return records, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString returns a sql.NullString from a string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
