// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"strings"

	"github.com/taibuivan/carta/internal/platform/apperr"
	"github.com/taibuivan/carta/internal/platform/ctxutil"
	"github.com/taibuivan/carta/internal/platform/respond"
	"github.com/taibuivan/carta/internal/platform/sec"
)

// TokenVerifier checks an admin bearer token. [sec.TokenService] implements it.
type TokenVerifier interface {
	VerifyToken(token string) (*sec.AuthClaims, error)
}

// Authenticate resolves an optional bearer token into admin claims.
//
// Shoppers send no Authorization header and pass through untouched. A header
// that is present but malformed or unverifiable is rejected with 401, even on
// public routes, so a stale admin session is noticed right away.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			header := request.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(writer, request)
				return
			}

			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				unauthorized(writer, request, "Invalid authorization format")
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				unauthorized(writer, request, "Invalid or expired token")
				return
			}

			next.ServeHTTP(writer, request.WithContext(ctxutil.WithAdminClaims(request.Context(), claims)))
		})
	}
}

// RequireRole admits only callers whose token carries role or higher.
// It must run after [Authenticate].
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.AdminClaims(request.Context())
			switch {
			case claims == nil:
				unauthorized(writer, request, "Authentication required")
			case !sec.UserRole(claims.Role).AtLeast(role):
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
			default:
				next.ServeHTTP(writer, request)
			}
		})
	}
}

func unauthorized(writer http.ResponseWriter, request *http.Request, message string) {
	writer.Header().Set("WWW-Authenticate", `Bearer realm="carta-admin"`)
	respond.Error(writer, request, apperr.Unauthorized(message))
}
