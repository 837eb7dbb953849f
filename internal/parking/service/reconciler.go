package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"
)

// PaymentTerminal is the hardware side of a payment: committing a new card
// balance through the confirm handshake, and signalling a declined one.
type PaymentTerminal interface {
	// CommitBalance debits the external balance store by writing the new
	// balance through the READY/confirm handshake. It returns an error if
	// the debit was not confirmed.
	CommitBalance(ctx context.Context, newBalance int64) error

	// SignalInsufficient tells the terminal the card cannot cover the fee.
	SignalInsufficient(ctx context.Context) error
}

// ReconcileOutcome classifies the result of one balance report.
type ReconcileOutcome int

const (
	// ReconcileNoOutstanding: the plate has no unpaid open session. An
	// idempotent no-op, not an error.
	ReconcileNoOutstanding ReconcileOutcome = iota
	ReconcileInsufficient
	ReconcileCommitted
	// ReconcileHandshakeFailed: the debit was not confirmed; the session
	// stays UNPAID.
	ReconcileHandshakeFailed
)

func (o ReconcileOutcome) String() string {
	switch o {
	case ReconcileNoOutstanding:
		return "NO_OUTSTANDING"
	case ReconcileInsufficient:
		return "INSUFFICIENT"
	case ReconcileCommitted:
		return "COMMITTED"
	case ReconcileHandshakeFailed:
		return "HANDSHAKE_FAILED"
	default:
		return "UNKNOWN"
	}
}

// ReconcileResult reports what one balance report did.
type ReconcileResult struct {
	Outcome    ReconcileOutcome
	AmountDue  int64
	NewBalance int64
}

// Fee computes the parking fee for a stay from entry to now: elapsed
// minutes rounded up, never less than one minute, times the per-minute
// rate.
func Fee(entry, now time.Time, ratePerMinute int64) int64 {
	minutes := int64(math.Ceil(now.Sub(entry).Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return minutes * ratePerMinute
}

// Reconciler turns external balance reports into paid sessions. The ledger
// is updated if and only if the physical balance debit is confirmed: the
// handshake runs first and RecordPayment only follows a confirmed commit.
type Reconciler struct {
	ledger   *Ledger
	terminal PaymentTerminal
	rate     int64
	logger   *log.Logger
}

func NewReconciler(ledger *Ledger, terminal PaymentTerminal, ratePerMinute int64, logger *log.Logger) *Reconciler {
	if ratePerMinute <= 0 {
		ratePerMinute = 5
	}
	return &Reconciler{ledger: ledger, terminal: terminal, rate: ratePerMinute, logger: logger}
}

// HandleBalanceReport processes one (plate, available balance) report from
// the payment terminal.
func (r *Reconciler) HandleBalanceReport(ctx context.Context, plateID string, balance int64) (ReconcileResult, error) {
	now := time.Now().UTC()

	latest, err := r.ledger.LatestSession(ctx, plateID)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("payment snapshot for %s: %w", plateID, err)
	}
	if latest == nil || !latest.CurrentlyParked() {
		r.logger.Printf("payment: plate=%s no outstanding payment", plateID)
		return ReconcileResult{Outcome: ReconcileNoOutstanding}, nil
	}

	due := Fee(latest.EntryTime, now, r.rate)
	r.logger.Printf("payment: plate=%s due=%d balance=%d", plateID, due, balance)

	if balance < due {
		if err := r.terminal.SignalInsufficient(ctx); err != nil {
			r.logger.Printf("payment: plate=%s insufficient-signal failed: %v", plateID, err)
		}
		return ReconcileResult{Outcome: ReconcileInsufficient, AmountDue: due}, nil
	}

	newBalance := balance - due
	if err := r.terminal.CommitBalance(ctx, newBalance); err != nil {
		// No partial commit: the session stays UNPAID and the driver can
		// retry at the terminal.
		r.logger.Printf("payment: plate=%s handshake failed, session stays unpaid: %v", plateID, err)
		return ReconcileResult{Outcome: ReconcileHandshakeFailed, AmountDue: due}, nil
	}

	if _, err := r.ledger.RecordPayment(ctx, plateID, now, due); err != nil {
		// The debit is confirmed but the ledger write failed. This is the
		// one place where money and ledger can disagree, so it is loud.
		r.logger.Printf("payment: plate=%s DEBIT CONFIRMED BUT LEDGER WRITE FAILED: %v", plateID, err)
		return ReconcileResult{}, fmt.Errorf("record payment for %s after confirmed debit: %w", plateID, err)
	}

	r.logger.Printf("payment: plate=%s committed amount=%d new_balance=%d", plateID, due, newBalance)
	return ReconcileResult{Outcome: ReconcileCommitted, AmountDue: due, NewBalance: newBalance}, nil
}
