// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres opens the pgx pool behind STATE_BACKEND=postgres.
//
// The workload is one row read at startup and one upsert per admin change,
// so the pool stays small.
package postgres

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/carta/internal/platform/constants"
)

const (
	poolMaxConns     = 4
	poolIdleTime     = 10 * time.Minute
	poolLifetime     = time.Hour
	dialTimeout      = 5 * time.Second
	probeTimeout     = 2 * time.Second
	statementTimeout = constants.GlobalRequestTimeout
)

// Open connects to dsn and fails unless the server answers a ping.
func Open(context stdctx.Context, dsn string, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse_dsn_failed: %w", err)
	}

	poolConfig.MaxConns = poolMaxConns
	poolConfig.MaxConnIdleTime = poolIdleTime
	poolConfig.MaxConnLifetime = poolLifetime
	poolConfig.ConnConfig.ConnectTimeout = dialTimeout
	poolConfig.AfterConnect = func(context stdctx.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(context, fmt.Sprintf("SET statement_timeout = %d", statementTimeout.Milliseconds()))
		return err
	}

	pool, err := pgxpool.NewWithConfig(context, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: open_failed: %w", err)
	}

	if err := Probe(pool)(context); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres_connected",
		slog.String("host", poolConfig.ConnConfig.Host),
		slog.String("database", poolConfig.ConnConfig.Database),
	)
	return pool, nil
}

// Probe returns a readiness check that pings pool with its own short deadline.
func Probe(pool *pgxpool.Pool) func(stdctx.Context) error {
	return func(parent stdctx.Context) error {
		context, cancel := stdctx.WithTimeout(parent, probeTimeout)
		defer cancel()

		if err := pool.Ping(context); err != nil {
			return fmt.Errorf("postgres: ping_failed: %w", err)
		}
		return nil
	}
}
