package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/usira-okay/release-kit/internal/config"
	"github.com/usira-okay/release-kit/internal/repository/postgres"
	"github.com/usira-okay/release-kit/pkg/logger/sl"
	"github.com/usira-okay/release-kit/pkg/logger/slogpretty"
)

const (
	defaultMigrationsPath  = "./migrations"
	defaultMigrationsTable = "schema_migrations"
)

type MigrationCfg struct {
	Env             string
	ConnStr         string
	MigrationsPath  string
	MigrationsTable string
}

func main() {
	migration, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := slogpretty.SetupLogger(migration.Env)

	m, err := migrate.New(
		"file://"+migration.MigrationsPath,
		fmt.Sprintf("%s?sslmode=disable&x-migrations-table=%s", migration.ConnStr, migration.MigrationsTable),
	)
	if err != nil {
		log.Error("can't create new migration", sl.Err(err))
		os.Exit(1)
	}

	var cmd string
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "down":
		if err := down(m); err != nil {
			log.Error("rollback failed", sl.Err(err))
			os.Exit(1)
		}

		log.Info("migrations rolled back successfully")
	case "up", "":
		if err := up(m, log); err != nil {
			log.Error("migration failed", sl.Err(err))
			os.Exit(1)
		}

		log.Info("migrations applied successfully", slog.String("path", migration.MigrationsPath))
	default:
		log.Error("unknown command, expected up or down", slog.String("command", cmd))
		os.Exit(2)
	}
}

// Load reads the service config for the connection settings. The migrations
// location falls back to the repository layout when unset.
func Load() (*MigrationCfg, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = defaultMigrationsPath
	}

	migrationsTable := os.Getenv("MIGRATIONS_TABLE")
	if migrationsTable == "" {
		migrationsTable = defaultMigrationsTable
	}

	return &MigrationCfg{
		Env:             cfg.Env,
		ConnStr:         postgres.ConnString(cfg.Postgres),
		MigrationsPath:  migrationsPath,
		MigrationsTable: migrationsTable,
	}, nil
}

func up(m *migrate.Migrate, log *slog.Logger) error {
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("no new migrations to apply")
			return nil
		}

		return fmt.Errorf("can't do migrations: %w", err)
	}

	return nil
}

func down(m *migrate.Migrate) error {
	if err := m.Down(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("no migrations to roll back")
		}

		return fmt.Errorf("can't down migrations: %w", err)
	}

	return nil
}
