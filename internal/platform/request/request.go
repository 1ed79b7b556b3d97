// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/taibuivan/carta/internal/platform/apperr"
	"github.com/taibuivan/carta/internal/platform/constants"
	"github.com/taibuivan/carta/internal/platform/validate"
)

// maxSessionIDLen bounds the session header so it cannot bloat storage keys.
const maxSessionIDLen = 128

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Int64Param parses a named URL parameter as a catalog item ID.

Returns:
  - int64: The parsed ID
  - error: VALIDATION_ERROR naming the parameter when it is not an integer
*/
func Int64Param(request *http.Request, name string) (int64, error) {
	value, err := strconv.ParseInt(chi.URLParam(request, name), 10, 64)
	if err != nil {
		return 0, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   name,
			Message: "Must be an integer",
		})
	}
	return value, nil
}

/*
SessionID returns the browser session identifier that owns the cart.

Returns:
  - string: Trimmed session identifier
  - error: VALIDATION_ERROR if the header is missing or oversized
*/
func SessionID(request *http.Request) (string, error) {
	sessionID := strings.TrimSpace(request.Header.Get(constants.HeaderSessionID))
	if sessionID == "" || len(sessionID) > maxSessionIDLen {
		return "", apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   constants.HeaderSessionID,
			Message: "A session identifier header is required",
		})
	}
	return sessionID, nil
}
