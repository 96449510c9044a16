package repository

import (
	"context"
	"database/sql"
	"time"

	"ac_watchdog/internal/models"
)

// StateRepo persists the watchdog's lifetime counters (single row).
type StateRepo interface {
	Save(ctx context.Context, r models.WatchdogRecord) error
	Load(ctx context.Context) (models.WatchdogRecord, error)
}

// EventRepo is the append-only audit log.
type EventRepo interface {
	Append(ctx context.Context, e models.Event) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.Event, error)
}

type Repository struct {
	StateRepo StateRepo
	EventRepo EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo: NewStateSQLite(db),
		EventRepo: NewEventSQLite(db),
	}
}
