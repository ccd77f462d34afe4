package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tableside/internal/api"
	"tableside/internal/billing"
	"tableside/internal/catalog"
	"tableside/internal/config"
	"tableside/internal/credentials"
	"tableside/internal/database"
	"tableside/internal/live"
	"tableside/internal/monitoring"
	"tableside/internal/ordering"
	"tableside/internal/reservation"
	"tableside/internal/session"
	"tableside/pkg/keylock"
	"tableside/pkg/logger"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	log := logger.New("tableside")

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Server.MetricsPort = *metricsPort
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.SeedTables(db, cfg.Dining.TableCount); err != nil {
		log.Error("failed to seed tables", "error", err)
		os.Exit(1)
	}
	if err := database.SeedMenu(db); err != nil {
		log.Error("failed to seed menu", "error", err)
		os.Exit(1)
	}

	// Service wiring. The table locks are shared by every service that
	// mutates tables so foreground requests and sweeps serialize.
	locks := keylock.New()
	creds := credentials.NewIssuer(cfg.Auth.TokenSecret)
	engine := billing.NewEngine(db, cfg.Dining.VATRate, log)
	cat := catalog.New(db)
	sessions := session.NewManager(db, engine, creds, session.Config{
		SessionDuration: cfg.SessionDuration(),
		ReservationHold: cfg.ReservationHold(),
		MaxGuests:       cfg.Dining.MaxGuestsPerTable,
		TierPrices:      cfg.TierPrices(),
	}, locks, log)
	router := ordering.NewRouter(db, cat, engine, locks, log)
	queue := ordering.NewQueue(db, log)
	reservations := reservation.NewService(db, sessions, cfg.ReservationHold(), cfg.Dining.MaxReservationParty, log)
	waitlist := reservation.NewWaitlist(db, cfg.Dining.MaxReservationParty, log)
	hub := live.NewHub(log)
	monitor := monitoring.NewMonitor()
	metrics := monitoring.NewMetrics()

	server := api.NewServer(api.Deps{
		Sessions:     sessions,
		Billing:      engine,
		Orders:       router,
		Queue:        queue,
		Reservations: reservations,
		Waitlist:     waitlist,
		Catalog:      cat,
		Hub:          hub,
		Monitor:      monitor,
		Metrics:      metrics,
		Log:          log,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go runSweeper(ctx, cfg.SweepInterval(), sessions, reservations, metrics, monitor, log)
	go startMetricsServer(cfg.Server.MetricsPort, metrics, log)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router(),
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
		cancel()
	}()

	log.Info("starting API server", "port", cfg.Server.Port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Error("API server error", "error", err)
		os.Exit(1)
	}
}

// runSweeper triggers the reservation expiry sweeps on a fixed cadence.
// The services expose the sweeps as plain methods so tests can invoke
// them synchronously with an injected clock.
func runSweeper(ctx context.Context, interval time.Duration, sessions *session.Manager, reservations *reservation.Service, metrics *monitoring.Metrics, monitor *monitoring.Monitor, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			expired := reservations.ExpireSweep(now)
			released := sessions.SweepExpiredReservations(now)
			for range expired {
				metrics.ReservationsExpired.Inc()
				monitor.Incr("reservations_expired")
			}
			if len(expired) > 0 || len(released) > 0 {
				log.Info("sweep completed",
					"reservations_expired", len(expired),
					"tables_released", len(released))
			}
		}
	}
}

func startMetricsServer(port int, metrics *monitoring.Metrics, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	log.Info("starting metrics server", "port", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Error("metrics server error", "error", err)
	}
}
