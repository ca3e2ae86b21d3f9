package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/rightnow/internal/config"
	"github.com/msomdec/rightnow/internal/domain"
	"github.com/msomdec/rightnow/internal/handler"
	"github.com/msomdec/rightnow/internal/repository/memory"
	"github.com/msomdec/rightnow/internal/repository/sqlite"
	"github.com/msomdec/rightnow/internal/service"
	"github.com/msomdec/rightnow/internal/state"
)

func main() {
	level := new(slog.LevelVar)
	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	lvl, _ := cfg.SlogLevel()
	level.Set(lvl)

	db, err := openDatabase(cfg)
	if err != nil {
		slog.Error("failed to open database", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database ready", "backend", cfg.StoreBackend)

	store := service.NewStore(db.Listings(), db.Users(), service.StoreConfig{
		JWTSecret:  cfg.JWTSecret,
		BcryptCost: cfg.BcryptCost,
		Latency:    cfg.StoreLatency,
	})

	// Seed the developer account and sample listings (idempotent).
	if cfg.Seed {
		if err := store.Seed(context.Background()); err != nil {
			slog.Error("failed to seed store", "error", err)
			os.Exit(1)
		}
	}

	items := state.NewItems(store, nil)
	auth := state.NewAuth(store)
	auth.Init(context.Background())
	if err := items.Load(context.Background()); err != nil {
		// The container keeps the error; clients can refresh.
		slog.Warn("initial listing load failed", "error", err)
	}

	limiter := service.NewAttemptLimiter(cfg.LoginRate, float64(cfg.LoginBurst))
	defer limiter.Stop()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, store, items, auth, limiter, cfg.CookieSecure, nil)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Feed streams end with the server's base context.
	srv.BaseContext = func(net.Listener) context.Context { return ctx }

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func openDatabase(cfg *config.Config) (domain.Database, error) {
	if cfg.StoreBackend == config.BackendSQLite {
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	return memory.New(), nil
}
