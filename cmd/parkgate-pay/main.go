package main

import (
	"context"
	"errors"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmuhire/parkgate/internal/config"
	"github.com/jmuhire/parkgate/internal/db"
	"github.com/jmuhire/parkgate/internal/gate"
	"github.com/jmuhire/parkgate/internal/parking/service"
	sqlitestore "github.com/jmuhire/parkgate/internal/parking/store/sqlite"
	"github.com/jmuhire/parkgate/internal/station"
)

// terminal joins the handshake and the controller into the reconciler's
// view of the payment hardware.
type terminal struct {
	*gate.Handshake
	*gate.Controller
}

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "parkgate-pay ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath})
	if err != nil {
		logger.Fatalf("open ledger db: %v", err)
	}
	defer conn.Close()

	writer := db.NewWorker(conn)
	defer writer.Close()

	ledger := service.NewLedger(
		sqlitestore.NewSessionStore(conn, writer),
		sqlitestore.NewViolationStore(conn, writer),
		logger,
	)

	hw, err := net.Dial("tcp", cfg.GateAddr)
	if err != nil {
		logger.Fatalf("dial payment terminal %s: %v", cfg.GateAddr, err)
	}
	ch := gate.NewChannel(hw, logger)
	defer ch.Close()

	term := terminal{
		Handshake: gate.NewHandshake(ch, gate.HandshakeConfig{
			ReadyTimeout:   cfg.ReadyTimeout,
			ConfirmTimeout: cfg.ConfirmTimeout,
		}, logger),
		Controller: gate.NewController(ch, gate.ControllerConfig{}, logger),
	}

	st := station.NewPaymentStation(station.PaymentDeps{
		Logger:     logger,
		Channel:    ch,
		Reconciler: service.NewReconciler(ledger, term, cfg.RatePerMinute, logger),
	})

	if err := st.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Printf("payment station stopped: %v", err)
	}
}
