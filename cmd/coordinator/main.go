package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apphttp "github.com/propchain-labs/bridge-coordinator/pkg/app/http"
	"github.com/propchain-labs/bridge-coordinator/pkg/assetledger"
	"github.com/propchain-labs/bridge-coordinator/pkg/auth"
	bridgeservice "github.com/propchain-labs/bridge-coordinator/pkg/bridge/service"
	"github.com/propchain-labs/bridge-coordinator/pkg/bridgestore"
	"github.com/propchain-labs/bridge-coordinator/pkg/compliance"
	"github.com/propchain-labs/bridge-coordinator/pkg/config"
	"github.com/propchain-labs/bridge-coordinator/pkg/fees"
	operatorservice "github.com/propchain-labs/bridge-coordinator/pkg/operator/service"
	"github.com/propchain-labs/bridge-coordinator/pkg/operatorstore"
	"github.com/propchain-labs/bridge-coordinator/pkg/pgutil"
	"github.com/propchain-labs/bridge-coordinator/pkg/sweeper"
)

var (
	configPath = flag.String("config", "config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting bridge coordinator",
		zap.String("config", *configPath),
		zap.Strings("supported_chains", cfg.Bridge.SupportedChains))

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database))

	// Wire the services.
	admin := auth.NewAdminVerifier(cfg.Admin.JWTSecret)
	ledger := assetledger.NewLedger(db)
	operatorStore := operatorstore.NewStore(db)
	operators := operatorservice.NewService(operatorStore, logger)

	var checker compliance.Checker = compliance.AllowAll{}
	if cfg.Compliance.Enabled {
		checker = compliance.NewHTTPChecker(cfg.Compliance.URL, cfg.Compliance.RequestTimeout)
		logger.Info("Compliance gating enabled", zap.String("url", cfg.Compliance.URL))
	}

	estimator := fees.NewEstimator(cfg.Bridge.GasLimitPerBridge)
	store := bridgestore.NewStore(db)
	svc := bridgeservice.NewLog(
		bridgeservice.NewService(store, ledger, operators, checker, estimator, &cfg.Bridge, logger),
		logger,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Background expiry sweeper.
	sweep := sweeper.NewEngine(svc, cfg.Sweeper.Interval, logger)
	sweep.Start(ctx)
	defer sweep.Stop()

	// HTTP surface.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("database unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
		logger.Info("Metrics enabled")
	}

	r.Route("/api/v1", func(r chi.Router) {
		bridgeservice.RegisterRoutes(r, admin, svc, logger)
		operatorservice.RegisterRoutes(r, admin, operators, logger)
	})

	if err := apphttp.ServeAndWait(ctx, r, logger, &cfg.Server); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Bridge coordinator stopped")
}
