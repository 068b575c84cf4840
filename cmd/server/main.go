package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumen-ops/alertgate-go/internal/api"
	"github.com/lumen-ops/alertgate-go/internal/config"
	"github.com/lumen-ops/alertgate-go/internal/core/suppression"
	"github.com/lumen-ops/alertgate-go/internal/database"
	"github.com/lumen-ops/alertgate-go/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, cfg.Database.MigrationsPath); err != nil {
			log.Fatal("Failed to run migrations: ", err)
		}
	}

	repos := database.NewRepositories(db, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := suppression.NewMetrics(registry)

	engine := suppression.NewEngine(
		cfg.Suppression,
		repos.Alert,
		repos.SuppressionRule,
		repos.MaintenanceWindow,
		repos.Audit,
		metrics,
		log,
	)
	defer engine.Stop()

	housekeeper, err := suppression.NewHousekeeper(engine)
	if err != nil {
		log.Fatal("Failed to schedule housekeeping: ", err)
	}
	housekeeper.Start()
	defer housekeeper.Stop()

	router := api.NewRouter(cfg, engine, repos, registry, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverLog := logger.WithComponent(log, "server")

	go func() {
		serverLog.Infof("Starting AlertGate on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverLog.Fatal("Failed to start server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	serverLog.Info("Shutting down AlertGate")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		serverLog.WithError(err).Error("Server forced to shut down")
	}
}
