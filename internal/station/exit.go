package station

import (
	"context"
	"log"
	"time"

	"github.com/jmuhire/parkgate/internal/gate"
	"github.com/jmuhire/parkgate/internal/parking/service"
	"github.com/jmuhire/parkgate/internal/parking/types"
	"github.com/jmuhire/parkgate/internal/plate"
)

// ExitDeps wires an exit station.
type ExitDeps struct {
	Logger   *log.Logger
	Channel  *gate.Channel
	Gate     *gate.Controller
	Access   *service.AccessService
	Filter   *plate.Filter
	Frames   <-chan string
	MaxRange float64
}

// ExitStation validates a car's exit attempt against its latest session.
type ExitStation struct {
	deps      ExitDeps
	proximate bool
}

func NewExitStation(deps ExitDeps) *ExitStation {
	if deps.MaxRange <= 0 {
		deps.MaxRange = 50
	}
	return &ExitStation{deps: deps}
}

func (s *ExitStation) Run(ctx context.Context) error {
	d := s.deps
	d.Logger.Printf("exit station ready (range<=%.0fcm)", d.MaxRange)

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
				d.Logger.Printf("exit: frame source ended")
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

func (s *ExitStation) handleMessage(msg gate.Message) {
	switch msg.Kind {
	case gate.KindDistance:
		near := msg.Distance <= s.deps.MaxRange
		if s.proximate && !near {
			s.deps.Filter.Clear()
		}
		s.proximate = near
	case gate.KindInfo:
		s.deps.Logger.Printf("exit: hardware says %q", msg.Text)
	}
}

func (s *ExitStation) decide(ctx context.Context, plateID string) {
	d := s.deps

	decision, err := d.Access.Exit(ctx, plateID)
	if err != nil {
		d.Logger.Printf("exit: decision unavailable for %s: %v", plateID, err)
		return
	}

	if decision.Outcome == types.ExitGranted {
		d.Gate.OpenGate(ctx)
		return
	}

	d.Gate.Alert(ctx, alertFor(decision.Reason))
}

// alertFor maps a denial reason to its alert variant: stale and
// inconsistent records get the distinct variant, everything else reads as
// "payment pending".
func alertFor(reason string) gate.AlertKind {
	switch reason {
	case types.ReasonPaymentStale, types.ReasonUnhandledState:
		return gate.AlertStaleRecord
	default:
		return gate.AlertPaymentPending
	}
}
