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
	"github.com/jmuhire/parkgate/internal/plate"
	"github.com/jmuhire/parkgate/internal/station"
)

// The entry station reads proximity and diagnostics from the gate hardware
// bridge, OCR candidates from stdin (the detection sidecar pipes one line
// per frame), and admits cars against the shared ledger.
func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "parkgate-entry ", log.LstdFlags|log.LUTC)

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
	access := service.NewAccessService(ledger, service.AccessPolicy{
		Cooldown:  cfg.Cooldown,
		Freshness: cfg.Freshness,
	}, logger)

	hw, err := net.Dial("tcp", cfg.GateAddr)
	if err != nil {
		logger.Fatalf("dial gate hardware %s: %v", cfg.GateAddr, err)
	}
	ch := gate.NewChannel(hw, logger)
	defer ch.Close()

	st := station.NewEntryStation(station.EntryDeps{
		Logger:  logger,
		Channel: ch,
		Gate: gate.NewController(ch, gate.ControllerConfig{
			HoldOpen:     cfg.GateHold,
			PaymentBurst: cfg.PaymentBurst,
			StaleBurst:   cfg.StaleBurst,
		}, logger),
		Access: access,
		Filter: plate.NewFilter(plate.FilterConfig{
			Region:    cfg.PlateRegion,
			Capacity:  cfg.VoteSize,
			IdleClear: cfg.IdleClear,
		}),
		Frames:   station.ScanFrames(os.Stdin),
		MaxRange: cfg.ProximityCm,
	})

	if err := st.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Printf("entry station stopped: %v", err)
	}
}
