package gate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ErrHandshakeTimeout reports that a handshake phase's clock expired
// before the expected message arrived.
var ErrHandshakeTimeout = errors.New("handshake timed out")

// HandshakeState tracks the balance-commit exchange.
type HandshakeState int

const (
	StateIdle HandshakeState = iota
	StateAwaitReady
	StateBalanceSent
	StateAwaitConfirm
	StateCommitted
	StateTimedOut
)

func (s HandshakeState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateAwaitReady:
		return "AWAIT_READY"
	case StateBalanceSent:
		return "BALANCE_SENT"
	case StateAwaitConfirm:
		return "AWAIT_CONFIRM"
	case StateCommitted:
		return "COMMITTED"
	case StateTimedOut:
		return "TIMED_OUT"
	default:
		return "UNKNOWN"
	}
}

// HandshakeConfig holds the per-phase deadlines. These are hard deadlines
// measured from phase entry, not inactivity timers.
type HandshakeConfig struct {
	ReadyTimeout   time.Duration // waiting for READY; default 5s
	ConfirmTimeout time.Duration // waiting for DONE after the balance; default 10s
}

// Handshake runs the two-phase balance-commit exchange: wait for READY,
// transmit the new balance, wait for a DONE confirmation. A timeout in
// either phase is terminal and reported as failure; the caller must leave
// the ledger untouched.
type Handshake struct {
	ch     *Channel
	cfg    HandshakeConfig
	logger *log.Logger
}

func NewHandshake(ch *Channel, cfg HandshakeConfig, logger *log.Logger) *Handshake {
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 5 * time.Second
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 10 * time.Second
	}
	return &Handshake{ch: ch, cfg: cfg, logger: logger}
}

// CommitBalance writes newBalance to the terminal through the handshake.
// It returns nil only if the terminal confirmed the write.
func (h *Handshake) CommitBalance(ctx context.Context, newBalance int64) error {
	// Correlation ID ties together the log lines of one attempt.
	id := uuid.NewString()[:8]

	state := StateAwaitReady
	h.logger.Printf("handshake %s: %s", id, state)

	timer := time.NewTimer(h.cfg.ReadyTimeout)
	defer timer.Stop()

	for {
		select {
		case msg, ok := <-h.ch.Messages():
			if !ok {
				return fmt.Errorf("handshake %s: channel closed in %s", id, state)
			}

			switch {
			case msg.Kind == KindReady && state == StateAwaitReady:
				if err := h.ch.SendLine(strconv.FormatInt(newBalance, 10)); err != nil {
					return fmt.Errorf("handshake %s: send balance: %w", id, err)
				}
				state = StateBalanceSent
				h.logger.Printf("handshake %s: %s balance=%d", id, state, newBalance)

				state = StateAwaitConfirm
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(h.cfg.ConfirmTimeout)

			case msg.Kind == KindDone && state == StateAwaitConfirm:
				state = StateCommitted
				h.logger.Printf("handshake %s: %s", id, state)
				return nil

			case msg.Kind == KindInfo:
				h.logger.Printf("handshake %s: terminal says %q", id, msg.Text)

			case msg.Kind == KindBalanceReport:
				// A card tapped while a commit is in flight cannot be
				// served; make the discard visible to operators.
				h.logger.Printf("handshake %s: dropping balance report for %s received in %s", id, msg.Plate, state)

			default:
				// Distance readings and stray lines keep flowing on the
				// shared channel during a handshake; ignore them.
			}

		case <-timer.C:
			phase := state
			state = StateTimedOut
			h.logger.Printf("handshake %s: %s in %s", id, state, phase)
			return fmt.Errorf("%w in %s", ErrHandshakeTimeout, phase)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
