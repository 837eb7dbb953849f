package store

import (
	"context"
	"errors"
	"time"

	"github.com/jmuhire/parkgate/internal/parking/types"
)

// ErrVersionMismatch is returned by UpdateSession when the stored row's
// version no longer matches the caller's snapshot. Callers re-read and
// retry; the ledger service bounds the retries.
var ErrVersionMismatch = errors.New("session version mismatch")

// SessionStore persists parking sessions. Implementations assign sequence
// IDs on create (strictly increasing) and must apply UpdateSession as a
// single atomic compare-and-swap on the row version.
type SessionStore interface {
	// LatestSession returns the session with the highest sequence ID for
	// the plate, or nil if the plate has never entered.
	LatestSession(ctx context.Context, plate string) (*types.Session, error)

	// CreateSession appends a new UNPAID session with no exit time and
	// returns it with its assigned sequence ID.
	CreateSession(ctx context.Context, plate string, entryTime time.Time) (types.Session, error)

	// UpdateSession writes sess's mutable fields (exit time, amount due,
	// payment status) conditioned on the stored version matching
	// expectVersion, and returns the updated session with a bumped version.
	UpdateSession(ctx context.Context, sess types.Session, expectVersion int64) (types.Session, error)

	// ListSessions returns every session ordered by ascending sequence ID.
	ListSessions(ctx context.Context) ([]types.Session, error)
}

// ViolationStore persists unauthorized-attempt records, append-only.
type ViolationStore interface {
	Append(ctx context.Context, rec types.Violation) error

	// List returns all violations, most recent first.
	List(ctx context.Context) ([]types.Violation, error)
}
