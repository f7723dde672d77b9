package db

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AdamBeresnev/federation-core/internal/config"
	"github.com/AdamBeresnev/federation-core/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func InitDB(cfg *config.Config) (*sqlx.DB, error) {
	dsn := cfg.DatabaseURL
	if cfg.DBDriver == "sqlite3" {
		dsn = withParam(dsn, "_foreign_keys=on")
	}

	db, err := sqlx.Connect(cfg.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DBDriver, err)
	}

	// Every new connection to an in-memory sqlite database is a fresh, empty database
	if cfg.DBDriver == "sqlite3" && strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	slog.Info("database connected", "driver", cfg.DBDriver)
	return db, nil
}

func RunMigrations(db *sqlx.DB) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	var driver database.Driver
	switch db.DriverName() {
	case "sqlite3":
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	case "postgres":
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	default:
		return fmt.Errorf("no migration driver for %q", db.DriverName())
	}
	if err != nil {
		return fmt.Errorf("failed to create migrate driver instance: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, db.DriverName(), driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	slog.Info("migrations applied")
	return nil
}

func withParam(dsn, param string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + param
	}
	return dsn + "?" + param
}
