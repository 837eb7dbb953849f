package parking_test

import (
	"testing"
	"time"

	"github.com/jmuhire/parkgate/internal/parking"
	"github.com/jmuhire/parkgate/internal/parking/types"
)

const freshness = 5 * time.Minute

func parked(entry time.Time) *types.Session {
	return &types.Session{SequenceID: 1, Plate: "RAB123C", EntryTime: entry, Status: types.Unpaid}
}

func paid(entry, exit time.Time) *types.Session {
	amount := int64(50)
	return &types.Session{
		SequenceID: 1,
		Plate:      "RAB123C",
		EntryTime:  entry,
		ExitTime:   &exit,
		AmountDue:  &amount,
		Status:     types.Paid,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Entry path
// ═══════════════════════════════════════════════════════════════════════════

func TestDecideEntry_EmptyLedger_Granted(t *testing.T) {
	d := parking.DecideEntry(nil, nil, time.Now(), 300*time.Second)
	if d.Outcome != types.EntryGranted {
		t.Errorf("expected ENTRY_GRANTED, got %s (%s)", d.Outcome, d.Reason)
	}
}

func TestDecideEntry_AlreadyParked_Denied(t *testing.T) {
	now := time.Now()
	d := parking.DecideEntry(parked(now.Add(-time.Hour)), nil, now, 300*time.Second)
	if d.Outcome != types.EntryDenied {
		t.Fatalf("expected ENTRY_DENIED, got %s", d.Outcome)
	}
	if d.Reason != types.ReasonAlreadyParked {
		t.Errorf("expected reason %q, got %q", types.ReasonAlreadyParked, d.Reason)
	}
}

func TestDecideEntry_WithinCooldown_Skipped(t *testing.T) {
	now := time.Now()
	grant := now.Add(-time.Minute)
	d := parking.DecideEntry(paid(now.Add(-time.Hour), now.Add(-30*time.Minute)), &grant, now, 300*time.Second)
	if d.Outcome != types.EntrySkipped {
		t.Fatalf("expected ENTRY_SKIPPED, got %s", d.Outcome)
	}
	if d.Reason != types.ReasonCooldown {
		t.Errorf("expected reason %q, got %q", types.ReasonCooldown, d.Reason)
	}
}

func TestDecideEntry_CooldownElapsed_Granted(t *testing.T) {
	now := time.Now()
	grant := now.Add(-10 * time.Minute)
	d := parking.DecideEntry(nil, &grant, now, 300*time.Second)
	if d.Outcome != types.EntryGranted {
		t.Errorf("expected ENTRY_GRANTED after cooldown, got %s", d.Outcome)
	}
}

func TestDecideEntry_ParkedBeatsCooldown(t *testing.T) {
	// A currently parked car is denied, not skipped, even inside the
	// cooldown window: the denial must be audited.
	now := time.Now()
	grant := now.Add(-time.Minute)
	d := parking.DecideEntry(parked(now.Add(-time.Minute)), &grant, now, 300*time.Second)
	if d.Outcome != types.EntryDenied {
		t.Errorf("expected ENTRY_DENIED, got %s", d.Outcome)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Exit path
// ═══════════════════════════════════════════════════════════════════════════

func TestDecideExit_NoRecord_Denied(t *testing.T) {
	d := parking.DecideExit(nil, time.Now(), freshness)
	if d.Outcome != types.ExitDenied || d.Reason != types.ReasonNoEntryRecord {
		t.Errorf("expected EXIT_DENIED(%s), got %s(%s)", types.ReasonNoEntryRecord, d.Outcome, d.Reason)
	}
}

func TestDecideExit_Unpaid_Denied(t *testing.T) {
	now := time.Now()
	d := parking.DecideExit(parked(now.Add(-time.Hour)), now, freshness)
	if d.Outcome != types.ExitDenied || d.Reason != types.ReasonPaymentNotMade {
		t.Errorf("expected EXIT_DENIED(%s), got %s(%s)", types.ReasonPaymentNotMade, d.Outcome, d.Reason)
	}
}

func TestDecideExit_FreshPayment_Granted(t *testing.T) {
	now := time.Now()
	d := parking.DecideExit(paid(now.Add(-time.Hour), now.Add(-time.Minute)), now, freshness)
	if d.Outcome != types.ExitGranted {
		t.Errorf("expected EXIT_GRANTED, got %s (%s)", d.Outcome, d.Reason)
	}
}

func TestDecideExit_FreshnessBoundary(t *testing.T) {
	now := time.Now()

	// 4m59s old: still fresh.
	d := parking.DecideExit(paid(now.Add(-time.Hour), now.Add(-(4*time.Minute+59*time.Second))), now, freshness)
	if d.Outcome != types.ExitGranted {
		t.Errorf("4m59s: expected EXIT_GRANTED, got %s (%s)", d.Outcome, d.Reason)
	}

	// Exactly at the window: still fresh (inclusive bound).
	d = parking.DecideExit(paid(now.Add(-time.Hour), now.Add(-5*time.Minute)), now, freshness)
	if d.Outcome != types.ExitGranted {
		t.Errorf("5m00s: expected EXIT_GRANTED, got %s (%s)", d.Outcome, d.Reason)
	}

	// 5m01s old: stale.
	d = parking.DecideExit(paid(now.Add(-time.Hour), now.Add(-(5*time.Minute+time.Second))), now, freshness)
	if d.Outcome != types.ExitDenied || d.Reason != types.ReasonPaymentStale {
		t.Errorf("5m01s: expected EXIT_DENIED(%s), got %s(%s)", types.ReasonPaymentStale, d.Outcome, d.Reason)
	}
}

func TestDecideExit_PaidWithoutExitTime_Unhandled(t *testing.T) {
	now := time.Now()
	sess := parked(now.Add(-time.Hour))
	sess.Status = types.Paid // PAID but no exit marker: inconsistent

	d := parking.DecideExit(sess, now, freshness)
	if d.Outcome != types.ExitDenied || d.Reason != types.ReasonUnhandledState {
		t.Errorf("expected EXIT_DENIED(%s), got %s(%s)", types.ReasonUnhandledState, d.Outcome, d.Reason)
	}
}

func TestDecideExit_UnpaidWithExitTime_Unhandled(t *testing.T) {
	now := time.Now()
	sess := paid(now.Add(-time.Hour), now.Add(-time.Minute))
	sess.Status = types.Unpaid // UNPAID with an exit marker: inconsistent

	d := parking.DecideExit(sess, now, freshness)
	if d.Outcome != types.ExitDenied || d.Reason != types.ReasonUnhandledState {
		t.Errorf("expected EXIT_DENIED(%s), got %s(%s)", types.ReasonUnhandledState, d.Outcome, d.Reason)
	}
}

func TestDecideExit_PureFunction_Idempotent(t *testing.T) {
	now := time.Now()
	sess := paid(now.Add(-time.Hour), now.Add(-time.Minute))

	first := parking.DecideExit(sess, now, freshness)
	second := parking.DecideExit(sess, now, freshness)
	if first != second {
		t.Errorf("same snapshot must yield the same decision: %+v vs %+v", first, second)
	}
}
