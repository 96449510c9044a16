package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ac_watchdog/internal/models"
	"ac_watchdog/internal/repository"
	"ac_watchdog/internal/repository/db"
)

func TestSQLite_RoundTrip(t *testing.T) {
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "acw.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer conn.Close()

	repos := repository.NewRepository(conn)
	ctx := context.Background()

	empty, err := repos.StateRepo.Load(ctx)
	if err != nil || empty != (models.WatchdogRecord{}) {
		t.Fatalf("fresh db should load a zero record: %+v, %v", empty, err)
	}

	sweep := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	if err := repos.StateRepo.Save(ctx, models.WatchdogRecord{LowRaiseCount: 1, HighRaiseCount: 4, LastSweepAt: sweep}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repos.StateRepo.Save(ctx, models.WatchdogRecord{LowRaiseCount: 2, HighRaiseCount: 4, LastSweepAt: sweep}); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	got, err := repos.StateRepo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ID != 1 || got.LowRaiseCount != 2 || got.HighRaiseCount != 4 || !got.LastSweepAt.Equal(sweep) {
		t.Fatalf("unexpected record: %+v", got)
	}

	base := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	for i, typ := range []string{models.EventAlarmRaised, models.EventCommandSent, models.EventAlarmCleared} {
		err := repos.EventRepo.Append(ctx, models.Event{
			OccurredAt:  base.Add(time.Duration(i) * time.Minute),
			Type:        typ,
			Description: typ,
			Metadata:    map[string]any{"i": i},
		})
		if err != nil {
			t.Fatalf("Append %s: %v", typ, err)
		}
	}

	all, err := repos.EventRepo.List(ctx, time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].Type != models.EventAlarmRaised || all[2].Type != models.EventAlarmCleared {
		t.Fatalf("unexpected events: %+v", all)
	}
	if !all[1].OccurredAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected time: %v", all[1].OccurredAt)
	}

	window, err := repos.EventRepo.List(ctx, base.Add(30*time.Second), base.Add(2*time.Minute), "alarm_cleared")
	if err != nil {
		t.Fatalf("List window: %v", err)
	}
	if len(window) != 1 || window[0].Type != models.EventAlarmCleared {
		t.Fatalf("unexpected window: %+v", window)
	}
}
