package station

import (
	"context"
	"log"

	"github.com/jmuhire/parkgate/internal/gate"
	"github.com/jmuhire/parkgate/internal/parking/service"
)

// PaymentDeps wires a payment station.
type PaymentDeps struct {
	Logger     *log.Logger
	Channel    *gate.Channel
	Reconciler *service.Reconciler
}

// PaymentStation consumes balance reports from the payment terminal and
// runs the reconciler for each. While a reconciliation (and its handshake)
// is in flight the loop is blocked, matching the terminal's one-card-at-a-
// time behavior.
type PaymentStation struct {
	deps PaymentDeps
}

func NewPaymentStation(deps PaymentDeps) *PaymentStation {
	return &PaymentStation{deps: deps}
}

func (s *PaymentStation) Run(ctx context.Context) error {
	d := s.deps
	d.Logger.Printf("payment station ready")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-d.Channel.Messages():
			if !ok {
				return ErrChannelClosed
			}

			switch msg.Kind {
			case gate.KindBalanceReport:
				res, err := d.Reconciler.HandleBalanceReport(ctx, msg.Plate, msg.Balance)
				if err != nil {
					d.Logger.Printf("payment: plate=%s failed: %v", msg.Plate, err)
					continue
				}
				d.Logger.Printf("payment: plate=%s %s", msg.Plate, res.Outcome)

			case gate.KindInfo:
				d.Logger.Printf("payment: terminal says %q", msg.Text)
			}
		}
	}
}
