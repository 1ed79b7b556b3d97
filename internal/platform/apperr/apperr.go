// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr is the error vocabulary shared by services and handlers.

Services return an [*AppError] for every failure a client should see; respond.Error
turns it into the JSON error envelope. Anything else reaching a handler is
reported as INTERNAL_ERROR.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError pairs an HTTP status and a stable code with a message safe to show.
//
// Cause stays server-side; it is logged and never serialized.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError names one rejected input field, e.g. {"phone", "Must have at least 8 digits"}.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause attaches the underlying error for the logs and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func newError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// # 4xx

// NotFound reports that resource does not exist: "<resource> not found".
func NotFound(resource string) *AppError {
	return newError(http.StatusNotFound, "NOT_FOUND", resource+" not found")
}

func Unauthorized(message string) *AppError {
	return newError(http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Forbidden(message string) *AppError {
	return newError(http.StatusForbidden, "FORBIDDEN", message)
}

// ValidationError reports rejected input. Details lists every offending field.
func ValidationError(message string, details ...FieldError) *AppError {
	err := newError(http.StatusBadRequest, "VALIDATION_ERROR", message)
	err.Details = details
	return err
}

func RateLimited(retryAfterSeconds int) *AppError {
	return newError(http.StatusTooManyRequests, "RATE_LIMITED",
		fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds))
}

// # 5xx

// Internal hides cause behind a generic message.
func Internal(cause error) *AppError {
	return newError(http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred").WithCause(cause)
}

// ServiceUnavailable reports a dependency that is not taking work right now.
func ServiceUnavailable(message string) *AppError {
	return newError(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", message)
}

// Timeout reports a request abandoned before it finished.
func Timeout(cause error) *AppError {
	return newError(http.StatusGatewayTimeout, "TIMEOUT", "The request was interrupted before it completed").WithCause(cause)
}

// # Inspection

// Fields maps each failed field to its first message.
func (e *AppError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Details))
	for _, detail := range e.Details {
		if _, seen := fields[detail.Field]; !seen {
			fields[detail.Field] = detail.Message
		}
	}
	return fields
}

// As returns the first [*AppError] in err's chain, or nil.
func As(err error) *AppError {
	if target := (*AppError)(nil); errors.As(err, &target) {
		return target
	}
	return nil
}
