// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package notification keeps the admin-facing audit trail of configuration changes.

The [Log] is newest-first and bounded: recording an entry beyond the cap drops
the oldest one. It is not safe for concurrent use; the configuration store
owns it and guards it with its own lock.
*/
package notification

import (
	"time"

	"github.com/taibuivan/carta/pkg/uuid"
)

// DefaultCap is how many entries a [Log] keeps unless configured otherwise.
const DefaultCap = 100

// Type is the severity of a notification.
type Type string

const (
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
	TypeInfo    Type = "info"
)

// Valid reports whether t is a known severity.
func (t Type) Valid() bool {
	switch t {
	case TypeSuccess, TypeWarning, TypeError, TypeInfo:
		return true
	}
	return false
}

// # Sections

const (
	SectionPrices        = "Prices"
	SectionZones         = "Delivery Zones"
	SectionNovels        = "Novels"
	SectionNotifications = "Notifications"
	SectionSystem        = "System"
)

// Notification is one human-readable audit event.
type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Section   string    `json:"section"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
}

// Entry is the caller-supplied part of a notification.
type Entry struct {
	Type    Type   `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Section string `json:"section"`
	Action  string `json:"action"`
	Details string `json:"details,omitempty"`
}

// Stamp turns the entry into a notification with a fresh id.
func (entry Entry) Stamp(at time.Time) Notification {
	return Notification{
		ID:        uuid.New(),
		Type:      entry.Type,
		Title:     entry.Title,
		Message:   entry.Message,
		Timestamp: at,
		Section:   entry.Section,
		Action:    entry.Action,
		Details:   entry.Details,
	}
}

// # Log

// Log is a capped newest-first list of notifications.
type Log struct {
	cap     int
	entries []Notification
}

// NewLog returns an empty log holding at most capacity entries.
// A non-positive capacity falls back to [DefaultCap].
func NewLog(capacity int) *Log {
	if capacity < 1 {
		capacity = DefaultCap
	}
	return &Log{cap: capacity}
}

// Record prepends n and drops whatever falls past the cap.
func (log *Log) Record(n Notification) {
	entries := make([]Notification, 0, min(len(log.entries)+1, log.cap))
	entries = append(entries, n)
	for _, existing := range log.entries {
		if len(entries) == log.cap {
			break
		}
		entries = append(entries, existing)
	}
	log.entries = entries
}

// All returns a copy of the entries, newest first.
func (log *Log) All() []Notification {
	out := make([]Notification, len(log.entries))
	copy(out, log.entries)
	return out
}

// Replace swaps in entries from a snapshot, keeping the newest cap of them.
func (log *Log) Replace(entries []Notification) {
	if len(entries) > log.cap {
		entries = entries[:log.cap]
	}
	log.entries = make([]Notification, len(entries))
	copy(log.entries, entries)
}

// Clear removes every entry.
func (log *Log) Clear() {
	log.entries = nil
}

// Len reports the number of entries held.
func (log *Log) Len() int {
	return len(log.entries)
}

// Cap reports the maximum number of entries held.
func (log *Log) Cap() int {
	return log.cap
}
