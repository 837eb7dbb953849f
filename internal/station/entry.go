// Package station holds the three polling loops that run against the
// shared ledger: entry, exit, and payment. Each station is a single
// goroutine multiplexing hardware messages and OCR frames; the ledger is
// the only shared resource between them.
package station

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jmuhire/parkgate/internal/gate"
	"github.com/jmuhire/parkgate/internal/parking/service"
	"github.com/jmuhire/parkgate/internal/parking/types"
	"github.com/jmuhire/parkgate/internal/plate"
)

// ErrChannelClosed reports that the hardware channel disconnected and the
// station loop cannot continue.
var ErrChannelClosed = errors.New("hardware channel closed")

// EntryDeps wires an entry station.
type EntryDeps struct {
	Logger   *log.Logger
	Channel  *gate.Channel
	Gate     *gate.Controller
	Access   *service.AccessService
	Filter   *plate.Filter
	Frames   <-chan string // raw OCR text, one per processed frame
	MaxRange float64       // proximity threshold in cm; default 50
}

// EntryStation recognizes an approaching car and decides whether to admit
// it.
type EntryStation struct {
	deps      EntryDeps
	proximate bool
}

func NewEntryStation(deps EntryDeps) *EntryStation {
	if deps.MaxRange <= 0 {
		deps.MaxRange = 50
	}
	return &EntryStation{deps: deps}
}

// Run polls until ctx is cancelled or the hardware channel closes. Ledger
// errors are logged and the loop continues with the next reading; the
// process never crashes on a failed decision.
func (s *EntryStation) Run(ctx context.Context) error {
	d := s.deps
	d.Logger.Printf("entry station ready (range<=%.0fcm)", d.MaxRange)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-d.Channel.Messages():
			if !ok {
				return ErrChannelClosed
			}
			s.handleMessage(msg)

		case raw, ok := <-d.Frames:
			if !ok {
				d.Logger.Printf("entry: frame source ended")
				return nil
			}
			if !s.proximate {
				continue
			}
			if plateID, ok := d.Filter.Observe(raw, time.Now()); ok {
				s.decide(ctx, plateID)
			}
		}
	}
}

func (s *EntryStation) handleMessage(msg gate.Message) {
	switch msg.Kind {
	case gate.KindDistance:
		near := msg.Distance <= s.deps.MaxRange
		if s.proximate && !near {
			// The car moved on; a partial vote must not leak into the
			// next vehicle.
			s.deps.Filter.Clear()
		}
		s.proximate = near
	case gate.KindInfo:
		s.deps.Logger.Printf("entry: hardware says %q", msg.Text)
	}
}

func (s *EntryStation) decide(ctx context.Context, plateID string) {
	d := s.deps

	decision, err := d.Access.Entry(ctx, plateID)
	if err != nil {
		d.Logger.Printf("entry: decision unavailable for %s: %v", plateID, err)
		return
	}

	switch decision.Outcome {
	case types.EntryGranted:
		d.Gate.OpenGate(ctx)
	case types.EntryDenied:
		d.Gate.Alert(ctx, gate.AlertPaymentPending)
	case types.EntrySkipped:
		// Cooldown: no gate action, no ledger write.
	}
}
