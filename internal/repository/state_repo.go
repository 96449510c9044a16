package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ac_watchdog/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	watchdogStateRowID = 1

	upsertStateSQL = `
		INSERT INTO watchdog_state (id, low_raise_count, high_raise_count, last_sweep_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			low_raise_count=excluded.low_raise_count,
			high_raise_count=excluded.high_raise_count,
			last_sweep_at=excluded.last_sweep_at,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT id, low_raise_count, high_raise_count, last_sweep_at, updated_at
		FROM watchdog_state WHERE id=?
	`
)

// nullableUTC maps a zero time to NULL.
func nullableUTC(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// Save upserts the watchdog_state row (id always 1).
func (r *StateSQLite) Save(ctx context.Context, rec models.WatchdogRecord) error {
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err := r.db.ExecContext(ctx, upsertStateSQL,
		watchdogStateRowID,
		int64(rec.LowRaiseCount),
		int64(rec.HighRaiseCount),
		nullableUTC(rec.LastSweepAt),
		updated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save watchdog state: %w", err)
	}
	return nil
}

// Load fetches the watchdog_state row. A missing row yields a zero record.
func (r *StateSQLite) Load(ctx context.Context) (models.WatchdogRecord, error) {
	var (
		rec       models.WatchdogRecord
		low, high int64
		lastSweep sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, selectStateSQL, watchdogStateRowID).Scan(
		&rec.ID,
		&low,
		&high,
		&lastSweep,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.WatchdogRecord{}, nil
		}
		return models.WatchdogRecord{}, fmt.Errorf("load watchdog state: %w", err)
	}
	if low < 0 || high < 0 {
		return models.WatchdogRecord{}, fmt.Errorf("load watchdog state: negative counter (%d, %d)", low, high)
	}

	rec.LowRaiseCount = uint64(low)
	rec.HighRaiseCount = uint64(high)
	if lastSweep.Valid {
		rec.LastSweepAt = lastSweep.Time.UTC()
	}
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}
