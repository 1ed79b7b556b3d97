// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cart holds the shopping cart of each browser session.

Prices are never stored in the cart. Every [Service.View] reprices the items
against the current price list, so an admin edit shows up on the next read.

# Reload Policy

A full page reload starts a fresh cart. The page reports its unload with
[Service.MarkUnload]; the next [Service.Resume] consumes the marker and wipes
the cart. Navigating without unloading keeps it.
*/
package cart

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/carta/internal/core/pricing"
	"github.com/taibuivan/carta/internal/platform/apperr"
	"github.com/taibuivan/carta/internal/platform/validate"
)

// maxSeasons bounds a season selection.
const maxSeasons = 100

// PriceSource supplies the live price list.
type PriceSource interface {
	Prices() pricing.Config
}

// # View Models

// Line is a cart item priced against the current price list.
type Line struct {
	Item
	Price pricing.Money `json:"price"`
	Quote pricing.Quote `json:"quote"`
}

// View is the priced cart returned to the shopper.
type View struct {
	Items []Line `json:"items"`
	pricing.Breakdown
	Count int `json:"count"`
}

// Price reprices the cart with cfg.
func Price(cfg pricing.Config, cart *Cart) View {
	lines := make([]Line, len(cart.Items))
	for i, item := range cart.Items {
		priced := item.Priced()
		lines[i] = Line{
			Item:  item,
			Price: pricing.Price(cfg, priced),
			Quote: pricing.QuoteFor(cfg, priced),
		}
	}

	return View{
		Items:     lines,
		Breakdown: pricing.Totals(cfg, cart.Priced()),
		Count:     len(lines),
	}
}

// # Service

// Service applies cart operations for one session at a time.
type Service struct {
	repository Repository
	prices     PriceSource
	logger     *slog.Logger
	locks      *sessionLocks
	now        func() time.Time
}

// NewService constructs a cart [Service].
func NewService(repository Repository, prices PriceSource, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		prices:     prices,
		logger:     logger,
		locks:      newSessionLocks(),
		now:        time.Now,
	}
}

/*
Resume returns the session's cart for a page load.

Description: When the session marked an unload, the cart is wiped first.

Returns:
  - View: The priced cart
  - error: Storage failures
*/
func (service *Service) Resume(context context.Context, sessionID string) (View, error) {
	if err := service.resetOnReload(context, sessionID); err != nil {
		return View{}, err
	}
	return service.View(context, sessionID)
}

func (service *Service) resetOnReload(context context.Context, sessionID string) error {
	release := service.locks.lock(sessionID)
	defer release()

	reloaded, err := service.repository.ConsumeReload(context, sessionID)
	if err != nil {
		return apperr.Internal(err)
	}

	if reloaded {
		if err := service.repository.Delete(context, sessionID); err != nil {
			return apperr.Internal(err)
		}
		service.logger.Info("cart_reset_on_reload", slog.String("session_id", sessionID))
	}
	return nil
}

// MarkUnload records that the session's page is unloading.
func (service *Service) MarkUnload(context context.Context, sessionID string) error {
	if err := service.repository.MarkReload(context, sessionID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// View returns the cart priced with the current price list.
func (service *Service) View(context context.Context, sessionID string) (View, error) {
	cart, err := service.load(context, sessionID)
	if err != nil {
		return View{}, err
	}
	return Price(service.prices.Prices(), cart), nil
}

// Cart returns the stored cart without pricing it.
func (service *Service) Cart(context context.Context, sessionID string) (*Cart, error) {
	return service.load(context, sessionID)
}

/*
Add puts a title in the cart.

Description: Adding a title already in the cart leaves the cart unchanged.

Returns:
  - View: The priced cart after the operation
  - error: VALIDATION_ERROR for malformed items, or storage failures
*/
func (service *Service) Add(context context.Context, sessionID string, item Item) (View, error) {
	item.Title = strings.TrimSpace(item.Title)

	v := &validate.Validator{}
	v.Custom(FieldID, item.ID <= 0, "Must be a positive catalog id").
		Required(FieldTitle, item.Title).
		MaxLen(FieldTitle, item.Title, 500).
		OneOf(FieldType, string(item.Type), string(TypeMovie), string(TypeTV))
	checkSeasons(v, item.SelectedSeasons)
	if err := v.Err(); err != nil {
		return View{}, err
	}

	return service.change(context, sessionID, func(cart *Cart) bool {
		item.AddedAt = service.now().UTC()
		return cart.Add(item)
	}, "cart_item_added", slog.Int64("item_id", item.ID))
}

// Remove drops a title from the cart.
func (service *Service) Remove(context context.Context, sessionID string, id int64) (View, error) {
	return service.change(context, sessionID, func(cart *Cart) bool {
		return cart.Remove(id)
	}, "cart_item_removed", slog.Int64("item_id", id))
}

// SetSeasons replaces the season selection of a series.
func (service *Service) SetSeasons(context context.Context, sessionID string, id int64, seasons []int) (View, error) {
	v := &validate.Validator{}
	checkSeasons(v, seasons)
	if err := v.Err(); err != nil {
		return View{}, err
	}

	return service.change(context, sessionID, func(cart *Cart) bool {
		return cart.SetSeasons(id, seasons)
	}, "cart_seasons_changed", slog.Int64("item_id", id), slog.Int("seasons", len(seasons)))
}

// SetPaymentType switches a title between cash and transfer.
func (service *Service) SetPaymentType(context context.Context, sessionID string, id int64, method pricing.Method) (View, error) {
	if !method.Valid() {
		return View{}, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldPaymentType,
			Message: fmt.Sprintf("Must be one of: %s, %s", pricing.MethodCash, pricing.MethodTransfer),
		})
	}

	return service.change(context, sessionID, func(cart *Cart) bool {
		return cart.SetPaymentType(id, method)
	}, "cart_payment_changed", slog.Int64("item_id", id), slog.String("method", string(method)))
}

// Clear empties the cart.
func (service *Service) Clear(context context.Context, sessionID string) error {
	release := service.locks.lock(sessionID)
	defer release()

	if err := service.repository.Delete(context, sessionID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// # Internal

func (service *Service) load(context context.Context, sessionID string) (*Cart, error) {
	cart, err := service.repository.Get(context, sessionID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return cart, nil
}

/*
change loads the cart, applies fn and saves only when fn reports a change.

Description: Writes to one session are serialized within this process.
Replicas sharing a Redis repository still resolve concurrent writes to the
same session as last-write-wins.
*/
func (service *Service) change(context context.Context, sessionID string, fn func(*Cart) bool, event string, attrs ...any) (View, error) {
	release := service.locks.lock(sessionID)
	defer release()

	cart, err := service.load(context, sessionID)
	if err != nil {
		return View{}, err
	}

	if fn(cart) {
		if err := service.repository.Save(context, sessionID, cart); err != nil {
			return View{}, apperr.Internal(err)
		}
		service.logger.Debug(event, append(attrs, slog.String("session_id", sessionID))...)
	}

	return Price(service.prices.Prices(), cart), nil
}

func checkSeasons(v *validate.Validator, seasons []int) {
	v.Custom(FieldSeasons, len(seasons) > maxSeasons, fmt.Sprintf("At most %d seasons", maxSeasons))
	for _, season := range seasons {
		if season < 1 {
			v.Custom(FieldSeasons, true, "Seasons start at 1")
			return
		}
	}
}
