// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey holds the keys of request-scoped context values.
//
// Values are read through ctxutil; the unexported key type keeps other
// packages from colliding with them.
package ctxkey

type key string

const (
	// KeyRequestID carries the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyAdminClaims carries the verified [sec.AuthClaims] of an admin token.
	KeyAdminClaims key = "admin_claims"

	// KeyLogger carries the request-scoped *slog.Logger.
	KeyLogger key = "logger"
)
