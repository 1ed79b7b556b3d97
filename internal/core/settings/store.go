// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package settings

import (
	"context"
	"errors"
)

// ErrNoState is returned by a [Persister] that has never been written.
var ErrNoState = errors.New("settings: no persisted state")

// Persister stores the encoded snapshot as a single blob.
//
// Implementations:
//   - [MemoryPersister]
//   - [RedisPersister]
//   - [PostgresPersister]
type Persister interface {
	Load(context context.Context) ([]byte, error)
	Save(context context.Context, blob []byte) error
}

// Relay forwards committed changes to other replicas.
type Relay interface {
	Publish(context context.Context, change Change) error
}
