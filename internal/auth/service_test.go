// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/carta/internal/auth"
	"github.com/taibuivan/carta/internal/platform/apperr"
	"github.com/taibuivan/carta/internal/platform/constants"
	"github.com/taibuivan/carta/internal/platform/sec"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newService(t *testing.T) (*auth.Service, *sec.TokenService) {
	t.Helper()
	hash, err := sec.HashPassword("s3cret-pass")
	require.NoError(t, err)

	tokens, err := sec.NewTokenService(testSecret, constants.AuthIssuer)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auth.NewService(auth.Credentials{Username: "admin", PasswordHash: hash}, tokens, time.Hour, logger), tokens
}

func TestLogin_IssuesAdminToken(t *testing.T) {
	service, tokens := newService(t)

	session, err := service.Login(context.Background(), auth.LoginInput{Username: " admin ", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, string(sec.RoleAdmin), session.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)

	claims, err := tokens.VerifyToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.True(t, sec.UserRole(claims.Role).AtLeast(sec.RoleAdmin))
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	service, _ := newService(t)

	cases := []struct {
		name  string
		input auth.LoginInput
	}{
		{"wrong password", auth.LoginInput{Username: "admin", Password: "nope"}},
		{"unknown user", auth.LoginInput{Username: "root", Password: "s3cret-pass"}},
		{"empty", auth.LoginInput{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Login(context.Background(), tc.input)
			require.Error(t, err)
			assert.Equal(t, http.StatusUnauthorized, apperr.As(err).HTTPStatus)
		})
	}
}

func TestHandler_Login(t *testing.T) {
	service, _ := newService(t)
	router := auth.NewHandler(service).Routes()

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"admin","password":"s3cret-pass"}`))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data auth.LoginSession `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data.AccessToken)

	request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"admin"}`))
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
