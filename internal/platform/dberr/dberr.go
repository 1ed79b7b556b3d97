// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr classifies pgx errors into [apperr.AppError] values so
// handlers never see driver types.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/carta/internal/platform/apperr"
)

// SQLSTATE codes that get a dedicated mapping.
const (
	codeUndefinedTable = "42P01"
	codeCannotConnect  = "08006"
	codeAdminShutdown  = "57P01"
)

// ErrNotFound is returned for queries that matched no row.
var ErrNotFound = apperr.NotFound("Resource")

// Wrap classifies err, tagging the cause with action for the logs.
//
//   - no rows: [ErrNotFound]
//   - dropped connection or server shutdown: 503 SERVICE_UNAVAILABLE
//   - anything else, a missing table included: 500 INTERNAL_ERROR
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeCannotConnect, codeAdminShutdown:
			return unavailable(action, err)
		case codeUndefinedTable:
			return apperr.Internal(fmt.Errorf("%s: schema missing, run migrations: %w", action, err))
		}
	}

	if pgconn.SafeToRetry(err) {
		return unavailable(action, err)
	}

	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}

func unavailable(action string, err error) error {
	return apperr.ServiceUnavailable("Storage is temporarily unavailable").WithCause(fmt.Errorf("%s: %w", action, err))
}

// IsNotFound reports whether err is the wrapped no-rows condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
