// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrDispatchUnavailable reports that the order channel is refusing work.
var ErrDispatchUnavailable = errors.New("order dispatch unavailable")

// Dispatcher delivers an order to whoever fulfils it.
type Dispatcher interface {
	Dispatch(context context.Context, order Order) error
}

// # Log Dispatcher

// LogDispatcher writes orders to the application log. Used when no broker is
// configured.
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher constructs a [LogDispatcher].
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (dispatcher *LogDispatcher) Dispatch(context context.Context, order Order) error {
	dispatcher.logger.InfoContext(context, "order_dispatched",
		slog.String("order_id", order.OrderID),
		slog.String("customer", order.Customer.FullName),
		slog.String("phone", order.Customer.Phone),
		slog.String("zone", order.DeliveryZoneName),
		slog.Int64("subtotal", int64(order.Subtotal)),
		slog.Int64("delivery_cost", int64(order.DeliveryCost)),
		slog.Int64("total", int64(order.Total)),
	)
	return nil
}

// # Circuit Breaker

// BreakerSettings tunes a [BreakerDispatcher].
type BreakerSettings struct {
	// Failures is the number of consecutive failures that opens the breaker.
	Failures uint32

	// Cooldown is how long the breaker stays open before a trial request.
	Cooldown time.Duration
}

// DefaultBreakerSettings opens after 3 consecutive failures for 30 seconds.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{Failures: 3, Cooldown: 30 * time.Second}
}

// BreakerDispatcher stops calling a failing [Dispatcher] for a cooldown period.
//
// While open it fails fast with [ErrDispatchUnavailable].
type BreakerDispatcher struct {
	next    Dispatcher
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerDispatcher wraps next in a circuit breaker.
func NewBreakerDispatcher(next Dispatcher, logger *slog.Logger, settings BreakerSettings) *BreakerDispatcher {
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "order_dispatch",
		MaxRequests: 1,
		Timeout:     settings.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.Failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit_breaker_state_changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &BreakerDispatcher{next: next, breaker: breaker}
}

func (dispatcher *BreakerDispatcher) Dispatch(context context.Context, order Order) error {
	_, err := dispatcher.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, dispatcher.next.Dispatch(context, order)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrDispatchUnavailable, err)
	}
	return err
}

// State reports the breaker state, for readiness checks.
func (dispatcher *BreakerDispatcher) State() string {
	return dispatcher.breaker.State().String()
}
