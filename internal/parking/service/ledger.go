package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jmuhire/parkgate/internal/parking/store"
	"github.com/jmuhire/parkgate/internal/parking/types"
)

var (
	// ErrConflict is returned when an update kept losing the optimistic
	// concurrency race after the bounded retries were exhausted.
	ErrConflict = errors.New("concurrent write conflict")

	// ErrNoOpenSession is returned when a payment operation finds no
	// unpaid open session for the plate. A business-rule condition, not a
	// system fault.
	ErrNoOpenSession = errors.New("no open session for plate")
)

const (
	occAttempts = 3
	occBackoff  = 10 * time.Millisecond
)

// Ledger is the single mutation point for parking sessions and violation
// records. Read-modify-write sequences on a plate's latest session are
// retried under optimistic concurrency: re-read the snapshot, write
// conditioned on its version, back off on a lost race.
type Ledger struct {
	sessions   store.SessionStore
	violations store.ViolationStore
	logger     *log.Logger
}

func NewLedger(sessions store.SessionStore, violations store.ViolationStore, logger *log.Logger) *Ledger {
	return &Ledger{sessions: sessions, violations: violations, logger: logger}
}

// LatestSession returns the plate's most recent session, or nil if the
// plate has never entered.
func (l *Ledger) LatestSession(ctx context.Context, plate string) (*types.Session, error) {
	return l.sessions.LatestSession(ctx, plate)
}

// CreateSession appends a new UNPAID session for the plate. Sequence IDs
// are store-assigned, so concurrent creations for different plates never
// collide.
func (l *Ledger) CreateSession(ctx context.Context, plate string, entryTime time.Time) (types.Session, error) {
	return l.sessions.CreateSession(ctx, plate, entryTime)
}

// RecordPayment marks the plate's latest open session paid, setting the
// exit-time marker and amount due atomically. Returns ErrNoOpenSession if
// the plate has no unpaid open session.
func (l *Ledger) RecordPayment(ctx context.Context, plate string, exitTime time.Time, amountDue int64) (types.Session, error) {
	return l.mutateLatest(ctx, plate, func(sess *types.Session) error {
		if !sess.CurrentlyParked() {
			return ErrNoOpenSession
		}
		t := exitTime.UTC()
		sess.ExitTime = &t
		sess.AmountDue = &amountDue
		sess.Status = types.Paid
		return nil
	})
}

// RevertPayment rolls the plate's latest session back to UNPAID, clearing
// the exit-time marker and amount due. Used when a hardware handshake
// fails after a tentative commit, and for operator-driven reconciliation.
func (l *Ledger) RevertPayment(ctx context.Context, plate string) (types.Session, error) {
	return l.mutateLatest(ctx, plate, func(sess *types.Session) error {
		sess.ExitTime = nil
		sess.AmountDue = nil
		sess.Status = types.Unpaid
		return nil
	})
}

// mutateLatest runs the read-decide-write cycle for the plate's latest
// session under bounded optimistic retry.
func (l *Ledger) mutateLatest(ctx context.Context, plate string, mutate func(*types.Session) error) (types.Session, error) {
	for attempt := 1; ; attempt++ {
		latest, err := l.sessions.LatestSession(ctx, plate)
		if err != nil {
			return types.Session{}, err
		}
		if latest == nil {
			return types.Session{}, ErrNoOpenSession
		}

		sess := *latest
		if err := mutate(&sess); err != nil {
			return types.Session{}, err
		}

		updated, err := l.sessions.UpdateSession(ctx, sess, latest.Version)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, store.ErrVersionMismatch) {
			return types.Session{}, err
		}
		if attempt >= occAttempts {
			l.logger.Printf("ledger: plate=%s lost update race %d times, giving up", plate, attempt)
			return types.Session{}, ErrConflict
		}

		select {
		case <-time.After(time.Duration(attempt) * occBackoff):
		case <-ctx.Done():
			return types.Session{}, ctx.Err()
		}
	}
}

// AppendViolation records an unauthorized attempt. Store errors are logged
// and swallowed: audit logging must never block access control.
func (l *Ledger) AppendViolation(ctx context.Context, rec types.Violation) {
	if err := l.violations.Append(ctx, rec); err != nil {
		l.logger.Printf("ledger: violation append failed (plate=%s type=%s): %v", rec.Plate, rec.Type, err)
	}
}

// Sessions returns every session ordered by ascending sequence ID.
func (l *Ledger) Sessions(ctx context.Context) ([]types.Session, error) {
	return l.sessions.ListSessions(ctx)
}

// Violations returns all violation records, most recent first.
func (l *Ledger) Violations(ctx context.Context) ([]types.Violation, error) {
	return l.violations.List(ctx)
}
