// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package checkout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/carta/internal/core/checkout"
)

// countingDispatcher fails every call and counts them.
type countingDispatcher struct {
	calls int
}

func (dispatcher *countingDispatcher) Dispatch(context.Context, checkout.Order) error {
	dispatcher.calls++
	return errors.New("unreachable broker")
}

func TestBreakerDispatcher_OpensAfterConsecutiveFailures(t *testing.T) {
	ctx := context.Background()
	next := &countingDispatcher{}
	breaker := checkout.NewBreakerDispatcher(next, discardLogger(), checkout.BreakerSettings{Failures: 3, Cooldown: time.Minute})

	for range 3 {
		err := breaker.Dispatch(ctx, checkout.Order{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, checkout.ErrDispatchUnavailable)
	}
	assert.Equal(t, "open", breaker.State())

	err := breaker.Dispatch(ctx, checkout.Order{})
	assert.ErrorIs(t, err, checkout.ErrDispatchUnavailable)
	assert.Equal(t, 3, next.calls)
}

func TestBreakerDispatcher_PassesSuccess(t *testing.T) {
	breaker := checkout.NewBreakerDispatcher(checkout.NewLogDispatcher(discardLogger()), discardLogger(), checkout.DefaultBreakerSettings())

	require.NoError(t, breaker.Dispatch(context.Background(), checkout.Order{OrderID: "o1"}))
	assert.Equal(t, "closed", breaker.State())
}
