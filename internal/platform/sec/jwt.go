// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec holds the admin panel's credentials primitives: bcrypt password
// hashes and the HS256 access tokens issued after login.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// minSecretLen is the shortest SESSION_SECRET accepted for HS256.
	minSecretLen = 32

	// tokenAudience scopes tokens to the admin API.
	tokenAudience = "carta-admin"
)

// ErrInvalidToken wraps every verification failure.
var ErrInvalidToken = errors.New("sec: invalid token")

// AuthClaims is the payload of an admin access token. The role travels in the
// token, so verifying a request needs no storage lookup.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID   string `json:"uid"`
	Username string `json:"unm"`
	Role     string `json:"rol"`
}

// TokenService signs and verifies admin tokens with a shared secret.
type TokenService struct {
	secret []byte
	issuer string
	parser *jwt.Parser
}

func NewTokenService(secret, issuer string) (*TokenService, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("sec: session secret must be at least %d bytes", minSecretLen)
	}

	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithAudience(tokenAudience),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

// GenerateAccessToken issues a token for userID that expires after ttl.
func (service *TokenService) GenerateAccessToken(userID, username, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:   userID,
		Username: username,
		Role:     role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: sign_token_failed: %w", err)
	}
	return signed, nil
}

// VerifyToken checks signature, algorithm, issuer, audience and expiry.
func (service *TokenService) VerifyToken(raw string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	_, err := service.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return service.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}
