// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package broadcast fans events out to in-process observers.

# Delivery Contract

  - Synchronous: [Hub.Publish] returns only after every subscriber has run.
  - Ordered: subscribers see events in publish order, in registration order.
  - Prompt cancellation: once an unsubscribe func returns, that subscriber
    receives nothing further, even from a publish already in flight.

A subscriber must not publish to the same hub from inside its callback.
*/
package broadcast

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// subscription is one registered callback.
type subscription[T any] struct {
	fn     func(T)
	active atomic.Bool
}

// Hub is a generic synchronous publish/subscribe list.
type Hub[T any] struct {
	mu       sync.Mutex
	dispatch sync.Mutex
	subs     []*subscription[T]
	logger   *slog.Logger
}

// NewHub constructs an empty [Hub].
func NewHub[T any](logger *slog.Logger) *Hub[T] {
	return &Hub[T]{logger: logger}
}

// Subscribe registers fn and returns the func that removes it.
//
// Calling the returned func more than once is harmless.
func (hub *Hub[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	sub := &subscription[T]{fn: fn}
	sub.active.Store(true)

	hub.mu.Lock()
	hub.subs = append(hub.subs, sub)
	hub.mu.Unlock()

	return func() {
		if !sub.active.Swap(false) {
			return
		}

		hub.mu.Lock()
		defer hub.mu.Unlock()
		for i, candidate := range hub.subs {
			if candidate == sub {
				hub.subs = append(hub.subs[:i:i], hub.subs[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers event to every active subscriber.
func (hub *Hub[T]) Publish(event T) {
	hub.dispatch.Lock()
	defer hub.dispatch.Unlock()

	hub.mu.Lock()
	subs := make([]*subscription[T], len(hub.subs))
	copy(subs, hub.subs)
	hub.mu.Unlock()

	for _, sub := range subs {
		if !sub.active.Load() {
			continue
		}
		hub.deliver(sub, event)
	}
}

// Len reports the number of registered subscribers.
func (hub *Hub[T]) Len() int {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	return len(hub.subs)
}

// deliver runs one callback, containing any panic to that subscriber.
func (hub *Hub[T]) deliver(sub *subscription[T], event T) {
	defer func() {
		if recovered := recover(); recovered != nil && hub.logger != nil {
			hub.logger.Error("broadcast_subscriber_panic",
				slog.String("panic", fmt.Sprint(recovered)),
			)
		}
	}()
	sub.fn(event)
}
