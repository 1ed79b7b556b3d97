// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package settings

import (
	"context"
	"sync"
)

// MemoryPersister keeps the blob in process memory.
//
// Used by tests and by STATE_BACKEND=memory, where state ends with the process.
type MemoryPersister struct {
	mu   sync.Mutex
	blob []byte

	// SaveErr, when set, is returned by every Save.
	SaveErr error
}

// NewMemoryPersister returns an empty [MemoryPersister].
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Load returns a copy of the last saved blob or [ErrNoState].
func (persister *MemoryPersister) Load(_ context.Context) ([]byte, error) {
	persister.mu.Lock()
	defer persister.mu.Unlock()

	if persister.blob == nil {
		return nil, ErrNoState
	}
	return append([]byte(nil), persister.blob...), nil
}

// Save replaces the stored blob.
func (persister *MemoryPersister) Save(_ context.Context, blob []byte) error {
	persister.mu.Lock()
	defer persister.mu.Unlock()

	if persister.SaveErr != nil {
		return persister.SaveErr
	}
	persister.blob = append([]byte(nil), blob...)
	return nil
}

// Seed stores blob as if it had been saved earlier.
func (persister *MemoryPersister) Seed(blob []byte) {
	persister.mu.Lock()
	defer persister.mu.Unlock()
	persister.blob = append([]byte(nil), blob...)
}
