// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package broadcast_test

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/carta/internal/core/broadcast"
)

func newHub() *broadcast.Hub[int] {
	return broadcast.NewHub[int](slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHub_OrderedDelivery(t *testing.T) {
	hub := newHub()

	var got []string
	hub.Subscribe(func(n int) { got = append(got, "a", string(rune('0'+n))) })
	hub.Subscribe(func(n int) { got = append(got, "b", string(rune('0'+n))) })

	hub.Publish(1)
	hub.Publish(2)

	assert.Equal(t, []string{"a", "1", "b", "1", "a", "2", "b", "2"}, got)
	assert.Equal(t, 2, hub.Len())
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := newHub()

	var count int
	unsubscribe := hub.Subscribe(func(int) { count++ })

	hub.Publish(1)
	unsubscribe()
	unsubscribe()
	hub.Publish(2)

	assert.Equal(t, 1, count)
	assert.Zero(t, hub.Len())
}

func TestHub_UnsubscribeDuringDispatch(t *testing.T) {
	hub := newHub()

	var second int
	var unsubscribeSecond func()
	hub.Subscribe(func(int) { unsubscribeSecond() })
	unsubscribeSecond = hub.Subscribe(func(int) { second++ })

	// The second subscriber is removed by the first before its turn.
	hub.Publish(1)

	assert.Zero(t, second)
	assert.Equal(t, 1, hub.Len())
}

func TestHub_PanicIsContained(t *testing.T) {
	hub := newHub()

	var delivered []int
	hub.Subscribe(func(int) { panic("boom") })
	hub.Subscribe(func(n int) { delivered = append(delivered, n) })

	assert.NotPanics(t, func() { hub.Publish(7) })
	assert.Equal(t, []int{7}, delivered)
}

func TestHub_ConcurrentPublishersDoNotInterleave(t *testing.T) {
	hub := newHub()

	var inFlight, maxInFlight int
	var mu sync.Mutex
	hub.Subscribe(func(int) {
		mu.Lock()
		inFlight++
		maxInFlight = max(maxInFlight, inFlight)
		mu.Unlock()

		mu.Lock()
		inFlight--
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			hub.Publish(n)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, maxInFlight)
}
