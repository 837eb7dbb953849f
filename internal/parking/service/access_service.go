package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jmuhire/parkgate/internal/parking"
	"github.com/jmuhire/parkgate/internal/parking/types"
)

// AccessPolicy holds the tunables of the access decision engine.
type AccessPolicy struct {
	// Cooldown suppresses repeated grants for the same plate, e.g. a car
	// idling in front of the camera after its gate pass.
	Cooldown time.Duration

	// Freshness is the maximum age of a payment marker still accepted at
	// the exit gate.
	Freshness time.Duration
}

// AccessService answers entry and exit attempts: it snapshots the plate's
// latest session, runs the pure decision engine, creates the session on a
// granted entry, and audits every denial.
type AccessService struct {
	ledger *Ledger
	policy AccessPolicy
	logger *log.Logger

	// lastGrant tracks the cooldown per plate. A cooldown skip writes
	// nothing to the ledger, so this state stays in-process.
	mu        sync.Mutex
	lastGrant map[string]time.Time
}

func NewAccessService(ledger *Ledger, policy AccessPolicy, logger *log.Logger) *AccessService {
	if policy.Cooldown <= 0 {
		policy.Cooldown = 300 * time.Second
	}
	if policy.Freshness <= 0 {
		policy.Freshness = 5 * time.Minute
	}
	return &AccessService{
		ledger:    ledger,
		policy:    policy,
		logger:    logger,
		lastGrant: make(map[string]time.Time),
	}
}

// Entry decides an entry attempt for the plate. On a grant the session is
// created before returning; on a denial a violation is recorded. An error
// means the decision could not be made safely (ledger unavailable) and the
// caller must not actuate the gate.
func (s *AccessService) Entry(ctx context.Context, plateID string) (types.Decision, error) {
	now := time.Now().UTC()

	latest, err := s.ledger.LatestSession(ctx, plateID)
	if err != nil {
		return types.Decision{}, fmt.Errorf("entry snapshot for %s: %w", plateID, err)
	}

	d := parking.DecideEntry(latest, s.grantTime(plateID), now, s.policy.Cooldown)

	switch d.Outcome {
	case types.EntryGranted:
		sess, err := s.ledger.CreateSession(ctx, plateID, now)
		if err != nil {
			return types.Decision{}, fmt.Errorf("create session for %s: %w", plateID, err)
		}
		s.noteGrant(plateID, now)
		s.logger.Printf("access: plate=%s ENTRY_GRANTED seq=%d", plateID, sess.SequenceID)

	case types.EntrySkipped:
		s.logger.Printf("access: plate=%s ENTRY_SKIPPED (%s)", plateID, d.Reason)

	case types.EntryDenied:
		s.logger.Printf("access: plate=%s ENTRY_DENIED (%s)", plateID, d.Reason)
		s.ledger.AppendViolation(ctx, types.Violation{
			OccurredAt: now,
			Plate:      plateID,
			Type:       types.EntryDeniedAttempt,
			Reason:     d.Reason,
			Details:    sessionDetails(latest),
		})
	}

	return d, nil
}

// Exit decides an exit attempt for the plate. Every denial is recorded as
// a violation; grants leave the ledger untouched (physical exit validates
// the payment marker implicitly).
func (s *AccessService) Exit(ctx context.Context, plateID string) (types.Decision, error) {
	now := time.Now().UTC()

	latest, err := s.ledger.LatestSession(ctx, plateID)
	if err != nil {
		return types.Decision{}, fmt.Errorf("exit snapshot for %s: %w", plateID, err)
	}

	d := parking.DecideExit(latest, now, s.policy.Freshness)

	if d.Outcome == types.ExitGranted {
		s.logger.Printf("access: plate=%s EXIT_GRANTED", plateID)
		return d, nil
	}

	s.logger.Printf("access: plate=%s EXIT_DENIED (%s)", plateID, d.Reason)
	s.ledger.AppendViolation(ctx, types.Violation{
		OccurredAt: now,
		Plate:      plateID,
		Type:       types.ExitDeniedAttempt,
		Reason:     d.Reason,
		Details:    sessionDetails(latest),
	})
	return d, nil
}

func (s *AccessService) grantTime(plateID string) *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.lastGrant[plateID]; ok {
		return &t
	}
	return nil
}

func (s *AccessService) noteGrant(plateID string, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastGrant[plateID] = t
}

// sessionDetails renders the denied-against session state for the audit
// record's free-form details column.
func sessionDetails(sess *types.Session) string {
	if sess == nil {
		return ""
	}
	exit := ""
	if sess.ExitTime != nil {
		exit = sess.ExitTime.Format(time.RFC3339)
	}
	return fmt.Sprintf("seq=%d status=%s exit_time=%q", sess.SequenceID, sess.Status, exit)
}
