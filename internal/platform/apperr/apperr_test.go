// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/carta/internal/platform/apperr"
)

func TestAs(t *testing.T) {
	cause := errors.New("redis: connection refused")
	wrapped := fmt.Errorf("save_cart_failed: %w", apperr.Internal(cause))

	appError := apperr.As(wrapped)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusInternalServerError, appError.HTTPStatus)
	assert.Equal(t, "An unexpected error occurred", appError.Error())
	assert.ErrorIs(t, wrapped, cause)

	assert.Nil(t, apperr.As(cause))
	assert.Nil(t, apperr.As(nil))
}

func TestFields_FirstMessageWins(t *testing.T) {
	err := apperr.ValidationError("Validation failed",
		apperr.FieldError{Field: "phone", Message: "Required"},
		apperr.FieldError{Field: "phone", Message: "Too short"},
		apperr.FieldError{Field: "address", Message: "Required"},
	)

	assert.Equal(t, map[string]string{"phone": "Required", "address": "Required"}, err.Fields())
	assert.Equal(t, "VALIDATION_ERROR", err.Code)
}

func TestRateLimited(t *testing.T) {
	err := apperr.RateLimited(3)
	assert.Equal(t, http.StatusTooManyRequests, err.HTTPStatus)
	assert.Contains(t, err.Message, "3s")
}

func TestTimeout(t *testing.T) {
	err := apperr.Timeout(context.Canceled)
	assert.Equal(t, http.StatusGatewayTimeout, err.HTTPStatus)
	assert.Equal(t, "TIMEOUT", err.Code)
	assert.ErrorIs(t, err, context.Canceled)
}
