package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"earnings/internal/config"
	"earnings/internal/db"
	"earnings/internal/handlers"
	"earnings/internal/services"
	"earnings/internal/store"
	"earnings/internal/websocket"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	earnings := store.NewEarningStore(database)
	periods := store.NewPeriodStore(database)
	snapshots := store.NewSnapshotStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()
	periodSvc := services.NewPeriodService(txRunner, periods, earnings, snapshots, audit, hub)
	statsSvc := services.NewStatsService(earnings, hub)

	handler := handlers.New(txRunner, cfg, users, earnings, periods, snapshots, audit, periodSvc, statsSvc, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go runSweep(sweepCtx, periodSvc, cfg.SweepInterval)

	go func() {
		log.Printf("earnings API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

// runSweep closes expired periods on a fixed interval, with one pass at
// startup to catch anything that expired while the server was down.
func runSweep(ctx context.Context, periodSvc *services.PeriodService, interval time.Duration) {
	sweep := func() {
		closed, err := periodSvc.Sweep(ctx, time.Now().UTC())
		if err != nil {
			log.Printf("sweep failed: %v", err)
			return
		}
		if closed > 0 {
			log.Printf("sweep closed %d expired periods", closed)
		}
	}
	sweep()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sweep()
		case <-ctx.Done():
			return
		}
	}
}
