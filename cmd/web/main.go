package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/federation-core/internal/config"
	"github.com/AdamBeresnev/federation-core/internal/db"
	"github.com/AdamBeresnev/federation-core/internal/service"
	"github.com/AdamBeresnev/federation-core/internal/store"
	"github.com/jmoiron/sqlx"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := cfg.Logger()
	slog.SetDefault(logger)

	database, err := db.InitDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           newRouter(newApp(database, logger), cfg.RequestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newApp(database *sqlx.DB, logger *slog.Logger) *app {
	categories := store.NewCategoryStore(database)
	brackets := store.NewBracketStore(database)
	ratings := store.NewRatingStore(database)

	return &app{
		brackets: service.NewBracketService(database, categories, brackets, logger),
		matches:  service.NewMatchService(database, brackets, logger),
		ratings:  service.NewRatingService(database, categories, brackets, ratings, logger),
		logger:   logger,
	}
}
