// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration brings the storefront schema up to date at startup,
// before the snapshot persister reads its row.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrDirty means a previous run failed halfway; someone has to force the version by hand.
var ErrDirty = errors.New("migration: database is dirty")

// Apply runs every pending up migration found in dir against dsn and
// returns the schema version it ends on.
func Apply(dsn, dir string, logger *slog.Logger) (uint, error) {
	databaseURL, err := driverURL(dsn)
	if err != nil {
		return 0, err
	}

	migrator, err := migrate.New("file://"+dir, databaseURL)
	if err != nil {
		return 0, fmt.Errorf("migration: open_failed: %w", err)
	}
	defer closeMigrator(migrator, logger)
	migrator.Log = slogBridge{logger: logger}

	from, dirty, err := migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		from = 0
	case err != nil:
		return 0, fmt.Errorf("migration: version_failed: %w", err)
	case dirty:
		return from, fmt.Errorf("%w at version %d", ErrDirty, from)
	}

	err = migrator.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema_up_to_date", slog.Uint64("version", uint64(from)))
		return from, nil
	}
	if err != nil {
		return from, fmt.Errorf("migration: up_failed: %w", err)
	}

	to, _, _ := migrator.Version()
	logger.Info("schema_migrated", slog.Uint64("from", uint64(from)), slog.Uint64("to", uint64(to)))
	return to, nil
}

// driverURL rewrites a postgres URL to the pgx5 scheme golang-migrate registers.
// Keyword/value DSNs are not URLs and are rejected.
func driverURL(dsn string) (string, error) {
	parsed, err := url.Parse(dsn)
	if err != nil || parsed.Scheme == "" {
		return "", fmt.Errorf("migration: DATABASE_URL must be a postgres:// URL")
	}

	switch parsed.Scheme {
	case "postgres", "postgresql":
		parsed.Scheme = "pgx5"
	case "pgx5":
	default:
		return "", fmt.Errorf("migration: unsupported scheme %q", parsed.Scheme)
	}
	return parsed.String(), nil
}

func closeMigrator(migrator *migrate.Migrate, logger *slog.Logger) {
	sourceErr, databaseErr := migrator.Close()
	if err := errors.Join(sourceErr, databaseErr); err != nil {
		logger.Warn("migration_close_failed", slog.Any("error", err))
	}
}

// slogBridge routes golang-migrate's progress lines to debug logs.
type slogBridge struct {
	logger *slog.Logger
}

func (bridge slogBridge) Printf(format string, args ...any) {
	bridge.logger.Debug("migrate", slog.String("detail", fmt.Sprintf(format, args...)))
}

func (bridge slogBridge) Verbose() bool { return false }
