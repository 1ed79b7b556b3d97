// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart

import "sync"

// sessionLocks serializes writes per session inside one process.
type sessionLocks struct {
	mu   sync.Mutex
	held map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{held: make(map[string]*sessionLock)}
}

// lock blocks until sessionID is free and returns its release func.
func (locks *sessionLocks) lock(sessionID string) func() {
	locks.mu.Lock()
	entry, ok := locks.held[sessionID]
	if !ok {
		entry = &sessionLock{}
		locks.held[sessionID] = entry
	}
	entry.refs++
	locks.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		locks.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(locks.held, sessionID)
		}
		locks.mu.Unlock()
	}
}

// size reports how many sessions hold or await a lock.
func (locks *sessionLocks) size() int {
	locks.mu.Lock()
	defer locks.mu.Unlock()
	return len(locks.held)
}
