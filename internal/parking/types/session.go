package types

import "time"

// PaymentStatus is the payment state of a parking session.
type PaymentStatus int

const (
	Unpaid PaymentStatus = 0
	Paid   PaymentStatus = 1
)

func (s PaymentStatus) String() string {
	switch s {
	case Unpaid:
		return "UNPAID"
	case Paid:
		return "PAID"
	default:
		return "UNKNOWN"
	}
}

// Session is one entry-to-exit parking occurrence for a plate. A session is
// created by a granted entry and mutated only by the payment reconciler;
// rows are never deleted.
//
// ExitTime is set when payment is recorded (a pre-exit marker) and stays nil
// while the session is open. AmountDue is computed at payment time.
type Session struct {
	SequenceID int64
	Plate      string
	EntryTime  time.Time
	ExitTime   *time.Time
	AmountDue  *int64
	Status     PaymentStatus

	// Version backs the optimistic-concurrency check on updates; it is
	// bumped by every successful mutation.
	Version int64
}

// CurrentlyParked reports whether the session represents a car that entered
// and has not yet paid.
func (s Session) CurrentlyParked() bool {
	return s.Status == Unpaid && s.ExitTime == nil
}

// ExitEligible reports whether the session is paid with a payment marker no
// older than freshness at time now.
func (s Session) ExitEligible(now time.Time, freshness time.Duration) bool {
	return s.Status == Paid && s.ExitTime != nil && now.Sub(*s.ExitTime) <= freshness
}
