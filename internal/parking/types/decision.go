package types

// Outcome is the result of an entry or exit access decision.
type Outcome int

const (
	EntryGranted Outcome = iota
	EntryDenied
	// EntrySkipped means the same plate was granted entry within the
	// cooldown window: no ledger write, no gate action.
	EntrySkipped
	ExitGranted
	ExitDenied
)

func (o Outcome) String() string {
	switch o {
	case EntryGranted:
		return "ENTRY_GRANTED"
	case EntryDenied:
		return "ENTRY_DENIED"
	case EntrySkipped:
		return "ENTRY_SKIPPED"
	case ExitGranted:
		return "EXIT_GRANTED"
	case ExitDenied:
		return "EXIT_DENIED"
	default:
		return "UNKNOWN"
	}
}

// Denied reports whether the outcome is a denial that must be audited.
func (o Outcome) Denied() bool {
	return o == EntryDenied || o == ExitDenied
}

// Decision reason strings. These are stable identifiers: they appear in
// violation records and operator logs.
const (
	ReasonAlreadyParked  = "already in parking"
	ReasonCooldown       = "cooldown"
	ReasonNoEntryRecord  = "no entry record"
	ReasonPaymentNotMade = "payment not made"
	ReasonPaymentStale   = "payment record stale"
	ReasonUnhandledState = "unhandled session state"
)

// Decision is the outcome of the access decision engine for one attempt.
type Decision struct {
	Outcome Outcome
	Reason  string
}
