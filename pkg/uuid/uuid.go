// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid issues the ids of zones, novels, notifications and orders.

They are Version 7 UUIDs, so sorting by id also sorts by creation time.
*/
package uuid

import "github.com/google/uuid"

// New returns a fresh UUIDv7 string. It panics only if the system entropy source fails.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}
