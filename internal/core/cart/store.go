// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart

import "context"

// Repository keeps one cart per browser session plus the reload marker.
//
// Get on a session that was never saved returns an empty cart, not an error.
type Repository interface {
	Get(context context.Context, sessionID string) (*Cart, error)
	Save(context context.Context, sessionID string, cart *Cart) error
	Delete(context context.Context, sessionID string) error

	// MarkReload records that the session's page is about to unload.
	MarkReload(context context.Context, sessionID string) error

	// ConsumeReload removes the marker and reports whether it was set.
	ConsumeReload(context context.Context, sessionID string) (bool, error)
}
