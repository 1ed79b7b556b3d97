// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taibuivan/carta/internal/core/notification"
	"github.com/taibuivan/carta/internal/core/pricing"
	"github.com/taibuivan/carta/internal/platform/apperr"
	"github.com/taibuivan/carta/internal/platform/validate"
)

// # Snapshot

// Snapshot is a full, self-contained copy of the store state.
type Snapshot struct {
	Prices        pricing.Config              `json:"prices"`
	DeliveryZones []Zone                      `json:"deliveryZones"`
	Novels        []Novel                     `json:"novels"`
	Notifications []notification.Notification `json:"notifications,omitempty"`
	LastBackup    *time.Time                  `json:"lastBackup,omitempty"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

// Backup is the downloadable form of a snapshot.
type Backup struct {
	Snapshot
	ExportTimestamp time.Time `json:"exportTimestamp"`
}

// clone deep-copies every slice so callers cannot reach store memory.
func (snapshot Snapshot) clone() Snapshot {
	out := snapshot
	out.DeliveryZones = append([]Zone{}, snapshot.DeliveryZones...)
	out.Novels = append([]Novel{}, snapshot.Novels...)
	if snapshot.Notifications != nil {
		out.Notifications = append([]notification.Notification{}, snapshot.Notifications...)
	}
	if snapshot.LastBackup != nil {
		at := *snapshot.LastBackup
		out.LastBackup = &at
	}
	return out
}

// problems lists every field that breaks a store invariant.
func (snapshot Snapshot) problems() []apperr.FieldError {
	var problems []apperr.FieldError

	if ae := apperr.As(snapshot.Prices.Validate()); ae != nil {
		for _, detail := range ae.Details {
			problems = append(problems, apperr.FieldError{Field: "prices." + detail.Field, Message: detail.Message})
		}
	}

	for i, zone := range snapshot.DeliveryZones {
		prefix := fmt.Sprintf("deliveryZones[%d].", i)
		validator := &validate.Validator{}
		validator.
			Required(prefix+"id", string(zone.ID)).
			Required(prefix+FieldZoneName, zone.Name).
			NonNegative(prefix+FieldZoneCost, int64(zone.Cost))
		problems = append(problems, details(validator)...)
	}

	for i, novel := range snapshot.Novels {
		prefix := fmt.Sprintf("novels[%d].", i)
		validator := &validate.Validator{}
		validator.
			Required(prefix+"id", string(novel.ID)).
			Required(prefix+FieldNovelTitle, novel.Title).
			AtLeast(prefix+FieldNovelChapters, novel.Chapters, 0)
		if novel.Status != "" {
			validator.OneOf(prefix+FieldNovelStatus, string(novel.Status), string(StatusAiring), string(StatusFinished))
		}
		problems = append(problems, details(validator)...)
	}

	for i, entry := range snapshot.Notifications {
		if !entry.Type.Valid() {
			problems = append(problems, apperr.FieldError{
				Field:   fmt.Sprintf("notifications[%d].type", i),
				Message: "Must be one of: success, warning, error, info",
			})
		}
	}

	return problems
}

// Validate reports every invariant the snapshot breaks as a VALIDATION_ERROR.
func (snapshot Snapshot) Validate() error {
	if problems := snapshot.problems(); len(problems) > 0 {
		return apperr.ValidationError("Snapshot is invalid", problems...)
	}
	return nil
}

func details(validator *validate.Validator) []apperr.FieldError {
	if ae := apperr.As(validator.Err()); ae != nil {
		return ae.Details
	}
	return nil
}

// # Decoding

// DecodeError lists why a stored or uploaded snapshot was rejected.
type DecodeError struct {
	Problems []apperr.FieldError
}

func (e *DecodeError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, problem := range e.Problems {
		parts = append(parts, problem.Field+": "+problem.Message)
	}
	return "settings: invalid snapshot: " + strings.Join(parts, "; ")
}

// AppError converts the decode failure into a client-facing VALIDATION_ERROR.
func (e *DecodeError) AppError() *apperr.AppError {
	return apperr.ValidationError("Snapshot is invalid", e.Problems...)
}

/*
DecodeSnapshot parses a persisted or uploaded snapshot.

Description: Each top-level section is decoded on its own so one broken
section is reported by name. Missing sections fall back to an empty store
(default prices, no zones or novels); unknown keys are ignored. Wrong JSON
types and values that break store invariants are rejected.

Parameters:
  - data: []byte (JSON document)

Returns:
  - Snapshot: The decoded state
  - error: *DecodeError listing every problem found
*/
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil || sections == nil {
		return Snapshot{}, &DecodeError{Problems: []apperr.FieldError{{Field: "$", Message: "Must be a JSON object"}}}
	}

	snapshot := Snapshot{
		Prices:        pricing.DefaultConfig(),
		DeliveryZones: []Zone{},
		Novels:        []Novel{},
	}

	var problems []apperr.FieldError
	decode := func(key string, target any) {
		raw, ok := sections[key]
		if !ok || string(raw) == "null" {
			return
		}
		if err := json.Unmarshal(raw, target); err != nil {
			problems = append(problems, apperr.FieldError{Field: key, Message: describe(err)})
		}
	}

	decode("prices", &snapshot.Prices)
	decode("deliveryZones", &snapshot.DeliveryZones)
	decode("novels", &snapshot.Novels)
	decode("notifications", &snapshot.Notifications)
	decode("lastBackup", &snapshot.LastBackup)
	decode("updatedAt", &snapshot.UpdatedAt)

	if len(problems) == 0 {
		problems = snapshot.problems()
	}
	if len(problems) > 0 {
		return Snapshot{}, &DecodeError{Problems: problems}
	}

	return snapshot, nil
}

// describe turns a json error into a short message without Go type names.
func describe(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field != "" {
			return fmt.Sprintf("Field %q has the wrong type (got %s)", typeErr.Field, typeErr.Value)
		}
		return fmt.Sprintf("Has the wrong type (got %s)", typeErr.Value)
	}
	return "Is not valid: " + err.Error()
}
