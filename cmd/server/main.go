package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tirestock-platform/api/internal/app"
	"github.com/tirestock-platform/api/internal/config"
	"github.com/tirestock-platform/api/internal/realtime"
	"github.com/tirestock-platform/api/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	st := store.New(pool)
	hub := realtime.NewHub(realtime.Fetchers{
		Tires:        st.ListTires,
		Transactions: st.ListTransactions,
		Vehicles:     st.ListVehicles,
	}, logger)

	listener := realtime.NewListener(cfg.DatabaseURL, hub, logger)
	go func() {
		if err := listener.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("change listener stopped", "error", err)
		}
	}()

	router, err := app.NewRouter(cfg, st, hub, logger)
	if err != nil {
		logger.Error("build router", "error", err)
		os.Exit(1)
	}

	// Read and write timeouts stay unset so /api/events connections can
	// outlive them.
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	go func() {
		logger.Info("api_started", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
