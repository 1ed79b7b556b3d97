// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart

import (
	"context"
	"slices"
	"sync"
)

// MemoryRepository implements [Repository] in process memory, without expiry.
type MemoryRepository struct {
	mu      sync.Mutex
	carts   map[string][]Item
	markers map[string]bool
}

// NewMemoryRepository returns an empty [MemoryRepository].
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		carts:   make(map[string][]Item),
		markers: make(map[string]bool),
	}
}

func (repository *MemoryRepository) Get(_ context.Context, sessionID string) (*Cart, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	return &Cart{Items: slices.Clone(repository.carts[sessionID])}, nil
}

func (repository *MemoryRepository) Save(_ context.Context, sessionID string, cart *Cart) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.carts[sessionID] = slices.Clone(cart.Items)
	return nil
}

func (repository *MemoryRepository) Delete(_ context.Context, sessionID string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	delete(repository.carts, sessionID)
	return nil
}

func (repository *MemoryRepository) MarkReload(_ context.Context, sessionID string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.markers[sessionID] = true
	return nil
}

func (repository *MemoryRepository) ConsumeReload(_ context.Context, sessionID string) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	marked := repository.markers[sessionID]
	delete(repository.markers, sessionID)
	return marked, nil
}
