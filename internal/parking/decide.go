// Package parking holds the access decision engine: pure functions from a
// ledger snapshot to a grant/deny decision. The same engine serves the
// entry and exit stations; all ledger mutation happens in the service layer.
package parking

import (
	"time"

	"github.com/jmuhire/parkgate/internal/parking/types"
)

// DecideEntry decides an entry attempt from the plate's latest session (nil
// if the plate has never entered) and the time of the plate's last granted
// entry at this station (nil if none).
func DecideEntry(latest *types.Session, lastGrant *time.Time, now time.Time, cooldown time.Duration) types.Decision {
	if latest != nil && latest.CurrentlyParked() {
		return types.Decision{Outcome: types.EntryDenied, Reason: types.ReasonAlreadyParked}
	}
	if lastGrant != nil && now.Sub(*lastGrant) < cooldown {
		return types.Decision{Outcome: types.EntrySkipped, Reason: types.ReasonCooldown}
	}
	return types.Decision{Outcome: types.EntryGranted}
}

// DecideExit decides an exit attempt from the plate's latest session.
//
// Only two states grant or cleanly deny: an unpaid open session (payment not
// made) and a paid session with a fresh payment marker (granted, or stale
// once the marker ages past the freshness window). Every other combination,
// such as PAID with no exit time or UNPAID with one, is inconsistent and is
// denied with a distinct reason rather than coerced either way.
func DecideExit(latest *types.Session, now time.Time, freshness time.Duration) types.Decision {
	if latest == nil {
		return types.Decision{Outcome: types.ExitDenied, Reason: types.ReasonNoEntryRecord}
	}
	if latest.CurrentlyParked() {
		return types.Decision{Outcome: types.ExitDenied, Reason: types.ReasonPaymentNotMade}
	}
	if latest.Status == types.Paid && latest.ExitTime != nil {
		if latest.ExitEligible(now, freshness) {
			return types.Decision{Outcome: types.ExitGranted}
		}
		return types.Decision{Outcome: types.ExitDenied, Reason: types.ReasonPaymentStale}
	}
	return types.Decision{Outcome: types.ExitDenied, Reason: types.ReasonUnhandledState}
}
