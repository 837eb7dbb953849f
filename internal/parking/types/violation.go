package types

import "time"

// AttemptType classifies an unauthorized attempt.
type AttemptType string

const (
	EntryDeniedAttempt AttemptType = "ENTRY_DENIED"
	ExitDeniedAttempt  AttemptType = "EXIT_DENIED"
)

// Violation is an immutable audit record of a denied entry or exit attempt.
// The trail is append-only and independent of the sessions table.
type Violation struct {
	ID         string // uuid, assigned at append time if empty
	OccurredAt time.Time
	Plate      string
	Type       AttemptType
	Reason     string
	Details    string
}
