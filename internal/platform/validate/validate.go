// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate collects every failed input rule of a request into one
// VALIDATION_ERROR, so a form can highlight all bad fields at once.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/carta/internal/platform/apperr"
)

var (
	// phoneRegex matches an optional leading plus followed by at least 8 digits.
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{8,}$`)

	// phoneSeparators are stripped before matching a phone number.
	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator is a chain of rules over named fields. Use a fresh one per call.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// Range fails if the value is outside the [min, max] range (inclusive).
func (v *Validator) Range(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.add(field, fmt.Sprintf("Must be between %d and %d", min, max))
	}
	return v
}

// AtLeast fails if the value is below min.
func (v *Validator) AtLeast(field string, value, min int) *Validator {
	if value < min {
		v.add(field, fmt.Sprintf("Must be at least %d", min))
	}
	return v
}

// NonNegative fails if a monetary amount is below zero.
func (v *Validator) NonNegative(field string, value int64) *Validator {
	if value < 0 {
		v.add(field, "Must not be negative")
	}
	return v
}

// Percent fails if the value is outside [0, 100].
func (v *Validator) Percent(field string, value float64) *Validator {
	if value < 0 || value > 100 {
		v.add(field, "Must be a percentage between 0 and 100")
	}
	return v
}

// Phone fails unless the value holds at least 8 digits with an optional leading '+'.
//
// # Format
//
// Spaces, dashes, dots and parentheses are ignored, so "+53 5 123-4567" passes.
func (v *Validator) Phone(field, value string) *Validator {
	if !phoneRegex.MatchString(phoneSeparators.Replace(strings.TrimSpace(value))) {
		v.add(field, "Must be a valid phone number (at least 8 digits, optional leading +)")
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom records message against field when failed is true, e.g. an unknown zone.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err ends the chain: nil when every rule passed, otherwise a VALIDATION_ERROR
// listing each failure.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// NormalizePhone strips the separators accepted by [Validator.Phone].
func NormalizePhone(value string) string {
	return phoneSeparators.Replace(strings.TrimSpace(value))
}
