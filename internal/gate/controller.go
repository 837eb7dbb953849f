package gate

import (
	"context"
	"log"
	"time"
)

// AlertKind selects the actuator's alert variant.
type AlertKind int

const (
	// AlertPaymentPending covers unpaid exits and missing entry records.
	AlertPaymentPending AlertKind = iota
	// AlertStaleRecord covers expired payment markers and inconsistent
	// session states.
	AlertStaleRecord
)

// ControllerConfig holds the fire-and-forget actuation timings.
type ControllerConfig struct {
	HoldOpen     time.Duration // gate stays open this long; default 15s
	PaymentBurst time.Duration // alert burst for AlertPaymentPending; default 3s
	StaleBurst   time.Duration // alert burst for AlertStaleRecord; default 5s
}

// Controller drives gate opening and alert signalling. Actuation is
// best-effort: a write failure is logged, never escalated, because the
// audit record has already been written by the time the gate is driven.
type Controller struct {
	ch     *Channel
	cfg    ControllerConfig
	logger *log.Logger
}

func NewController(ch *Channel, cfg ControllerConfig, logger *log.Logger) *Controller {
	if cfg.HoldOpen <= 0 {
		cfg.HoldOpen = 15 * time.Second
	}
	if cfg.PaymentBurst <= 0 {
		cfg.PaymentBurst = 3 * time.Second
	}
	if cfg.StaleBurst <= 0 {
		cfg.StaleBurst = 5 * time.Second
	}
	return &Controller{ch: ch, cfg: cfg, logger: logger}
}

// OpenGate opens the gate, holds it for the configured duration (or until
// ctx is cancelled), then closes it. The close command is sent even on
// cancellation so a shutdown never leaves the barrier up.
func (c *Controller) OpenGate(ctx context.Context) {
	if err := c.ch.Command(CmdOpen); err != nil {
		c.logger.Printf("gate: open command failed: %v", err)
		return
	}
	c.logger.Printf("gate: open, holding %s", c.cfg.HoldOpen)

	c.hold(ctx, c.cfg.HoldOpen)

	if err := c.ch.Command(CmdClose); err != nil {
		c.logger.Printf("gate: close command failed: %v", err)
		return
	}
	c.logger.Printf("gate: closed")
}

// Alert fires the alert variant for the given kind, holds the burst, then
// stops it.
func (c *Controller) Alert(ctx context.Context, kind AlertKind) {
	code, burst := CmdAlertPayment, c.cfg.PaymentBurst
	if kind == AlertStaleRecord {
		code, burst = CmdAlertStale, c.cfg.StaleBurst
	}

	if err := c.ch.Command(code); err != nil {
		c.logger.Printf("gate: alert command %q failed: %v", code, err)
		return
	}

	c.hold(ctx, burst)

	if err := c.ch.Command(CmdStopAlert); err != nil {
		c.logger.Printf("gate: stop-alert command failed: %v", err)
	}
}

// SignalInsufficient tells the payment terminal the card cannot cover the
// fee.
func (c *Controller) SignalInsufficient(context.Context) error {
	return c.ch.SendLine(insufficientLine)
}

func (c *Controller) hold(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
