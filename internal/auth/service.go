// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package auth signs in the single storefront administrator.
//
// # Architecture
//
// There is no account table. The username and bcrypt hash come from the
// environment and a successful login returns a short-lived HS256 token that
// [middleware.Authenticate] verifies on every admin request.
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/carta/internal/platform/apperr"
	"github.com/taibuivan/carta/internal/platform/sec"
)

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
}

// Credentials is the configured administrator account.
type Credentials struct {
	Username     string
	PasswordHash string
}

// Service implements admin authentication.
type Service struct {
	credentials   Credentials
	tokenProvider TokenProvider
	tokenTTL      time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// NewService constructs a new auth [Service].
func NewService(credentials Credentials, tokenProvider TokenProvider, tokenTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		credentials:   credentials,
		tokenProvider: tokenProvider,
		tokenTTL:      tokenTTL,
		logger:        logger,
		now:           time.Now,
	}
}

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Username  string
	Password  string
	IPAddress string
}

// LoginSession is returned after a successful login.
type LoginSession struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
}

/*
Login checks the administrator credentials and issues an access token.

Description: The password hash is always compared, even for an unknown
username, so both failures take the same time.

Returns:
  - *LoginSession: Token and expiry
  - error: UNAUTHORIZED for any credential mismatch
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	username := strings.TrimSpace(input.Username)

	userMatches := subtle.ConstantTimeCompare([]byte(username), []byte(service.credentials.Username)) == 1
	passwordMatches := sec.CheckPasswordHash(input.Password, service.credentials.PasswordHash)

	if !userMatches || !passwordMatches {
		service.logger.WarnContext(context, "admin_login_failed",
			slog.String("username", username),
			slog.String("ip", input.IPAddress),
		)
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	token, err := service.tokenProvider.GenerateAccessToken(username, username, string(sec.RoleAdmin), service.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	service.logger.InfoContext(context, "admin_login_succeeded",
		slog.String("username", username),
		slog.String("ip", input.IPAddress),
	)

	return &LoginSession{
		AccessToken: token,
		ExpiresAt:   service.now().Add(service.tokenTTL).UTC(),
		Username:    username,
		Role:        string(sec.RoleAdmin),
	}, nil
}
