package httpapi

import (
	"time"

	"github.com/jmuhire/parkgate/internal/parking/types"
)

// sessionView is the wire shape of a session, decoupled from the store
// record.
type sessionView struct {
	SequenceID    int64  `json:"sequence_id"`
	Plate         string `json:"plate"`
	EntryTime     string `json:"entry_time"`
	ExitTime      string `json:"exit_time,omitempty"`
	AmountDue     *int64 `json:"amount_due,omitempty"`
	PaymentStatus string `json:"payment_status"`
}

type violationView struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Plate       string `json:"plate"`
	AttemptType string `json:"attempt_type"`
	Reason      string `json:"reason"`
	Details     string `json:"details,omitempty"`
}

func sessionToView(s types.Session) sessionView {
	v := sessionView{
		SequenceID:    s.SequenceID,
		Plate:         s.Plate,
		EntryTime:     s.EntryTime.Format(time.RFC3339),
		AmountDue:     s.AmountDue,
		PaymentStatus: s.Status.String(),
	}
	if s.ExitTime != nil {
		v.ExitTime = s.ExitTime.Format(time.RFC3339)
	}
	return v
}

func violationToView(r types.Violation) violationView {
	return violationView{
		ID:          r.ID,
		Timestamp:   r.OccurredAt.Format(time.RFC3339),
		Plate:       r.Plate,
		AttemptType: string(r.Type),
		Reason:      r.Reason,
		Details:     r.Details,
	}
}
