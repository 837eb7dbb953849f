package service_test

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/jmuhire/parkgate/internal/parking/service"
	"github.com/jmuhire/parkgate/internal/parking/store"
	"github.com/jmuhire/parkgate/internal/parking/store/memory"
	"github.com/jmuhire/parkgate/internal/parking/types"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestLedger() *service.Ledger {
	return service.NewLedger(memory.NewSessionStore(), memory.NewViolationStore(), testLogger())
}

// ═══════════════════════════════════════════════════════════════════════════
// Session lifecycle
// ═══════════════════════════════════════════════════════════════════════════

func TestLedger_CreateThenLatest_CurrentlyParked(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	created, err := l.CreateSession(ctx, "RAB123C", time.Now().UTC())
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if created.SequenceID != 1 {
		t.Errorf("expected sequence_id=1, got %d", created.SequenceID)
	}

	latest, err := l.LatestSession(ctx, "RAB123C")
	if err != nil {
		t.Fatalf("LatestSession: %v", err)
	}
	if latest == nil {
		t.Fatal("expected a session")
	}
	if !latest.CurrentlyParked() {
		t.Errorf("expected currently parked, got status=%s exit=%v", latest.Status, latest.ExitTime)
	}
}

func TestLedger_RecordPayment_MarksPaid(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	entry := time.Now().UTC().Add(-10 * time.Minute)
	if _, err := l.CreateSession(ctx, "RAB123C", entry); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	exit := time.Now().UTC()
	sess, err := l.RecordPayment(ctx, "RAB123C", exit, 50)
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	if sess.Status != types.Paid {
		t.Errorf("expected PAID, got %s", sess.Status)
	}
	if sess.ExitTime == nil || !sess.ExitTime.Equal(exit) {
		t.Errorf("expected exit_time=%v, got %v", exit, sess.ExitTime)
	}
	if sess.AmountDue == nil || *sess.AmountDue != 50 {
		t.Errorf("expected amount_due=50, got %v", sess.AmountDue)
	}
}

func TestLedger_RecordPayment_NoOpenSession(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	_, err := l.RecordPayment(ctx, "RAB123C", time.Now(), 50)
	if !errors.Is(err, service.ErrNoOpenSession) {
		t.Errorf("empty ledger: expected ErrNoOpenSession, got %v", err)
	}

	// Also after the latest session is already paid.
	if _, err := l.CreateSession(ctx, "RAB123C", time.Now().UTC()); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if _, err := l.RecordPayment(ctx, "RAB123C", time.Now(), 50); err != nil {
		t.Fatalf("first RecordPayment: %v", err)
	}
	_, err = l.RecordPayment(ctx, "RAB123C", time.Now(), 50)
	if !errors.Is(err, service.ErrNoOpenSession) {
		t.Errorf("paid session: expected ErrNoOpenSession, got %v", err)
	}
}

func TestLedger_PaymentRoundTrip_RestoresSession(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	entry := time.Now().UTC().Add(-20 * time.Minute)
	created, err := l.CreateSession(ctx, "RAB123C", entry)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if _, err := l.RecordPayment(ctx, "RAB123C", time.Now().UTC(), 100); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	reverted, err := l.RevertPayment(ctx, "RAB123C")
	if err != nil {
		t.Fatalf("RevertPayment: %v", err)
	}

	if reverted.SequenceID != created.SequenceID {
		t.Errorf("expected sequence_id=%d, got %d", created.SequenceID, reverted.SequenceID)
	}
	if reverted.Status != types.Unpaid {
		t.Errorf("expected UNPAID after revert, got %s", reverted.Status)
	}
	if reverted.ExitTime != nil {
		t.Errorf("expected cleared exit_time, got %v", reverted.ExitTime)
	}
	if reverted.AmountDue != nil {
		t.Errorf("expected cleared amount_due, got %v", reverted.AmountDue)
	}
	if !reverted.EntryTime.Equal(created.EntryTime) {
		t.Errorf("entry_time must be immutable: %v vs %v", reverted.EntryTime, created.EntryTime)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Concurrency
// ═══════════════════════════════════════════════════════════════════════════

func TestLedger_ConcurrentCreates_DistinctSequenceIDs(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	plates := []string{"RAB111A", "RAB222B", "RAB333C", "RAB444D"}
	var wg sync.WaitGroup
	seqs := make(chan int64, len(plates))

	for _, p := range plates {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			sess, err := l.CreateSession(ctx, p, time.Now().UTC())
			if err != nil {
				t.Errorf("CreateSession(%s): %v", p, err)
				return
			}
			seqs <- sess.SequenceID
		}(p)
	}
	wg.Wait()
	close(seqs)

	seen := make(map[int64]bool)
	for seq := range seqs {
		if seen[seq] {
			t.Errorf("duplicate sequence_id %d", seq)
		}
		seen[seq] = true
	}
	if len(seen) != len(plates) {
		t.Errorf("expected %d sessions, got %d", len(plates), len(seen))
	}
}

// flakySessionStore injects version mismatches into the first n updates to
// exercise the optimistic retry path.
type flakySessionStore struct {
	*memory.SessionStore
	mu       sync.Mutex
	failures int
}

func (s *flakySessionStore) UpdateSession(ctx context.Context, sess types.Session, expectVersion int64) (types.Session, error) {
	s.mu.Lock()
	fail := s.failures > 0
	if fail {
		s.failures--
	}
	s.mu.Unlock()

	if fail {
		return types.Session{}, store.ErrVersionMismatch
	}
	return s.SessionStore.UpdateSession(ctx, sess, expectVersion)
}

func TestLedger_UpdateRetriesThenSucceeds(t *testing.T) {
	flaky := &flakySessionStore{SessionStore: memory.NewSessionStore(), failures: 2}
	l := service.NewLedger(flaky, memory.NewViolationStore(), testLogger())
	ctx := context.Background()

	if _, err := l.CreateSession(ctx, "RAB123C", time.Now().UTC()); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if _, err := l.RecordPayment(ctx, "RAB123C", time.Now().UTC(), 50); err != nil {
		t.Fatalf("expected retry to absorb 2 conflicts, got %v", err)
	}
}

func TestLedger_UpdateConflictExhausted(t *testing.T) {
	flaky := &flakySessionStore{SessionStore: memory.NewSessionStore(), failures: 100}
	l := service.NewLedger(flaky, memory.NewViolationStore(), testLogger())
	ctx := context.Background()

	if _, err := l.CreateSession(ctx, "RAB123C", time.Now().UTC()); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	_, err := l.RecordPayment(ctx, "RAB123C", time.Now().UTC(), 50)
	if !errors.Is(err, service.ErrConflict) {
		t.Errorf("expected ErrConflict after retries exhausted, got %v", err)
	}
}
