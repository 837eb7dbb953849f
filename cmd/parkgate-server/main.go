package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmuhire/parkgate/internal/config"
	"github.com/jmuhire/parkgate/internal/db"
	"github.com/jmuhire/parkgate/internal/httpapi"
	"github.com/jmuhire/parkgate/internal/parking/service"
	sqlitestore "github.com/jmuhire/parkgate/internal/parking/store/sqlite"
)

// The dashboard server exposes read-only session and violation snapshots
// for the UI. It shares the ledger database with the stations but never
// writes to it.
func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "parkgate-server ", log.LstdFlags|log.LUTC)

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

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger: logger,
		Addr:   cfg.HTTPAddr,
		Ledger: ledger,
	})

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
