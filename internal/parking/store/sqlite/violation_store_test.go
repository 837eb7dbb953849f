package sqlite_test

import (
	"context"
	"testing"
	"time"

	sqlitestore "github.com/jmuhire/parkgate/internal/parking/store/sqlite"
	"github.com/jmuhire/parkgate/internal/parking/types"
)

func TestViolationStore_AppendAndList(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	vs := sqlitestore.NewViolationStore(conn, w)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	records := []types.Violation{
		{OccurredAt: base, Plate: "RAB123C", Type: types.EntryDeniedAttempt, Reason: "already in parking"},
		{OccurredAt: base.Add(time.Minute), Plate: "RAC456D", Type: types.ExitDeniedAttempt, Reason: "payment not made", Details: "seq=2 status=UNPAID"},
	}
	for _, rec := range records {
		if err := vs.Append(ctx, rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	all, err := vs.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(all))
	}

	// Most recent first.
	if all[0].Plate != "RAC456D" || all[1].Plate != "RAB123C" {
		t.Errorf("expected newest-first ordering, got %s then %s", all[0].Plate, all[1].Plate)
	}
	if all[0].Type != types.ExitDeniedAttempt || all[0].Details != "seq=2 status=UNPAID" {
		t.Errorf("round trip mismatch: %+v", all[0])
	}
	if !all[1].OccurredAt.Equal(base) {
		t.Errorf("timestamp mismatch: %v", all[1].OccurredAt)
	}
}

func TestViolationStore_AssignsID(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	vs := sqlitestore.NewViolationStore(conn, w)
	ctx := context.Background()

	if err := vs.Append(ctx, types.Violation{Plate: "RAB123C", Type: types.EntryDeniedAttempt, Reason: "cooldown"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	all, err := vs.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(all))
	}
	if all[0].ID == "" {
		t.Error("expected a generated ID")
	}
	if all[0].OccurredAt.IsZero() {
		t.Error("expected a stamped occurrence time")
	}
}

func TestViolationStore_ListEmpty(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	vs := sqlitestore.NewViolationStore(conn, w)

	all, err := vs.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected no violations, got %d", len(all))
	}
}
