package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/credtrust/internal/adapter/driven/backend"
	"github.com/ericfisherdev/credtrust/internal/adapter/driven/metrics"
	sqliteadapter "github.com/ericfisherdev/credtrust/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/credtrust/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/credtrust/internal/adapter/driving/web"
	"github.com/ericfisherdev/credtrust/internal/application"
	"github.com/ericfisherdev/credtrust/internal/config"
	"github.com/ericfisherdev/credtrust/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration and install the configured logger.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"backend_url", cfg.BackendURL,
		"sweep_interval", cfg.SweepInterval,
		"metrics_enabled", cfg.MetricsEnabled,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Metrics recorder doubles as a verification counter and request observer.
	var recorder *metrics.Recorder
	var counters []driven.VerificationCounter
	var observer httphandler.RequestObserver
	if cfg.MetricsEnabled {
		recorder = metrics.NewRecorder()
		counters = append(counters, recorder)
		observer = recorder
	}

	// 4. Wire the credential store: local SQLite or the read-only REST backend.
	deps := httphandler.Deps{PublicBaseURL: cfg.PublicBaseURL}

	if cfg.UsesBackend() {
		client, err := backend.NewClient(cfg.BackendURL, cfg.BackendToken)
		if err != nil {
			return err
		}
		deps.Store = client
		deps.StoreKind = "backend"
		slog.Info("using remote credential store, issuance and sweep disabled", "backend_url", cfg.BackendURL)
	} else {
		db, err := sqliteadapter.NewDB(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		slog.Info("database opened", "path", cfg.DBPath)

		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			return err
		}
		slog.Info("migrations complete")

		credentialStore := sqliteadapter.NewCredentialRepo(db)
		countRepo := sqliteadapter.NewVerificationCountRepo(db)
		counters = append(counters, countRepo)

		sweepSvc := application.NewSweepService(credentialStore, cfg.SweepInterval, logger)
		if recorder != nil {
			sweepSvc.OnSweep(recorder.RecordSweep)
		}
		go sweepSvc.Start(ctx)

		deps.Store = credentialStore
		deps.StoreKind = "sqlite"
		deps.Issuer = application.NewIssuanceService(credentialStore, logger)
		deps.Sweeper = sweepSvc
		deps.Stats = countRepo
		deps.Pinger = db
	}

	// 5. Application services shared by the API and the web page.
	verifier := application.NewVerificationService(deps.Store, logger, counters...)
	deps.Verifier = verifier
	deps.Progress = application.NewProgressService(deps.Store, logger)

	// 6. Register API, web, and metrics routes.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(deps, logger))
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(verifier, logger))
	if recorder != nil {
		mux.Handle("GET /metrics", recorder.Handler())
	}

	handler := httphandler.ApplyMiddleware(mux, logger, observer)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("credtrust started",
		"listen_addr", cfg.ListenAddr,
		"store", deps.StoreKind,
	)

	// 7. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 8. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
