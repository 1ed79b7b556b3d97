// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package checkout turns a session's cart into an order.

Prices and the delivery fee are read at submit time, so an admin change made
while the dialog was open applies to the order. The cart is cleared only after
the order was handed off.
*/
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/carta/internal/core/cart"
	"github.com/taibuivan/carta/internal/core/pricing"
	"github.com/taibuivan/carta/internal/core/settings"
	"github.com/taibuivan/carta/internal/platform/apperr"
	"github.com/taibuivan/carta/internal/platform/validate"
	"github.com/taibuivan/carta/pkg/uuid"
)

// Catalog supplies live prices and delivery zones.
type Catalog interface {
	Prices() pricing.Config
	Zone(id settings.ID) (settings.Zone, bool)
}

// Carts reads and clears session carts.
type Carts interface {
	Cart(context context.Context, sessionID string) (*cart.Cart, error)
	Clear(context context.Context, sessionID string) error
}

// Service validates checkout forms and dispatches orders.
type Service struct {
	catalog    Catalog
	carts      Carts
	dispatcher Dispatcher
	logger     *slog.Logger
	delay      time.Duration
	now        func() time.Time
}

// NewService constructs a checkout [Service]. A positive delay pauses every
// submission before dispatch.
func NewService(catalog Catalog, carts Carts, dispatcher Dispatcher, logger *slog.Logger, delay time.Duration) *Service {
	return &Service{
		catalog:    catalog,
		carts:      carts,
		dispatcher: dispatcher,
		logger:     logger,
		delay:      delay,
		now:        time.Now,
	}
}

/*
Submit validates the form, prices the cart and hands the order off.

Description: All field problems are reported together. On success the cart of
the session is emptied.

Returns:
  - Order: The dispatched order, with Total = Subtotal + DeliveryCost
  - error: VALIDATION_ERROR, SERVICE_UNAVAILABLE when the order channel is
    tripped, TIMEOUT when the request ends during the delay, or INTERNAL_ERROR
*/
func (service *Service) Submit(context context.Context, sessionID string, form Form) (Order, error) {
	customer := Customer{
		FullName: strings.TrimSpace(form.FullName),
		Phone:    validate.NormalizePhone(form.Phone),
		Address:  strings.TrimSpace(form.Address),
	}

	current, err := service.carts.Cart(context, sessionID)
	if err != nil {
		return Order{}, err
	}

	zone, found := service.catalog.Zone(form.ZoneID)

	v := &validate.Validator{}
	v.Required(FieldFullName, customer.FullName).
		MaxLen(FieldFullName, customer.FullName, 200).
		Phone(FieldPhone, customer.Phone).
		Required(FieldAddress, customer.Address).
		MaxLen(FieldAddress, customer.Address, 500).
		Custom(FieldZone, !found || !zone.Active, "Select a delivery zone").
		Custom(FieldItems, current.Len() == 0, "The cart is empty")
	if err := v.Err(); err != nil {
		return Order{}, err
	}

	view := cart.Price(service.catalog.Prices(), current)
	order := Order{
		OrderID:          uuid.New(),
		Customer:         customer,
		DeliveryZoneID:   zone.ID,
		DeliveryZoneName: zone.Name,
		DeliveryCost:     zone.Cost,
		Items:            view.Items,
		CashTotal:        view.Cash,
		TransferTotal:    view.Transfer,
		Subtotal:         view.Total,
		TransferFee:      view.TransferSurcharge,
		Total:            view.Total + zone.Cost,
		CreatedAt:        service.now().UTC(),
	}

	if err := service.wait(context); err != nil {
		return Order{}, err
	}

	if err := service.dispatcher.Dispatch(context, order); err != nil {
		service.logger.Error("order_dispatch_failed",
			slog.String("order_id", order.OrderID),
			slog.Any("error", err),
		)
		if errors.Is(err, ErrDispatchUnavailable) {
			return Order{}, apperr.ServiceUnavailable("Orders cannot be sent right now, please try again shortly")
		}
		return Order{}, apperr.Internal(err)
	}

	if err := service.carts.Clear(context, sessionID); err != nil {
		service.logger.Warn("order_cart_clear_failed",
			slog.String("order_id", order.OrderID),
			slog.Any("error", err),
		)
	}

	service.logger.Info("order_submitted",
		slog.String("order_id", order.OrderID),
		slog.String("zone", order.DeliveryZoneName),
		slog.Int("items", len(order.Items)),
		slog.Int64("total", int64(order.Total)),
	)

	return order, nil
}

// wait applies the configured submission delay.
func (service *Service) wait(context context.Context) error {
	if service.delay <= 0 {
		return nil
	}

	timer := time.NewTimer(service.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-context.Done():
		return apperr.Timeout(context.Err())
	}
}
