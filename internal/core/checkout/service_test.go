// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package checkout_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/carta/internal/core/broadcast"
	"github.com/taibuivan/carta/internal/core/cart"
	"github.com/taibuivan/carta/internal/core/checkout"
	"github.com/taibuivan/carta/internal/core/pricing"
	"github.com/taibuivan/carta/internal/core/settings"
	"github.com/taibuivan/carta/internal/platform/apperr"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingDispatcher keeps dispatched orders and fails while err is set.
type recordingDispatcher struct {
	mu     sync.Mutex
	orders []checkout.Order
	err    error
}

func (dispatcher *recordingDispatcher) Dispatch(_ context.Context, order checkout.Order) error {
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	if dispatcher.err != nil {
		return dispatcher.err
	}
	dispatcher.orders = append(dispatcher.orders, order)
	return nil
}

type fixture struct {
	store      *settings.Store
	carts      *cart.Service
	dispatcher *recordingDispatcher
	service    *checkout.Service
	zone       settings.Zone
}

func newFixture(t *testing.T, delay time.Duration) *fixture {
	t.Helper()
	ctx := context.Background()

	store := settings.NewStore(settings.NewMemoryPersister(), broadcast.NewHub[settings.Change](discardLogger()),
		discardLogger(), settings.Options{NotificationCap: 100})
	zone, err := store.AddZone(ctx, "Vista Alegre", 300)
	require.NoError(t, err)

	carts := cart.NewService(cart.NewMemoryRepository(), store, discardLogger())
	dispatcher := &recordingDispatcher{}

	return &fixture{
		store:      store,
		carts:      carts,
		dispatcher: dispatcher,
		service:    checkout.NewService(store, carts, dispatcher, discardLogger(), delay),
		zone:       zone,
	}
}

func (f *fixture) fill(t *testing.T, sessionID string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.carts.Add(ctx, sessionID, cart.Item{ID: 1, Title: "Film", Type: cart.TypeMovie})
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, sessionID, cart.Item{ID: 2, Title: "Show", Type: cart.TypeTV, SelectedSeasons: []int{1, 2}})
	require.NoError(t, err)
	_, err = f.carts.SetPaymentType(ctx, sessionID, 2, pricing.MethodTransfer)
	require.NoError(t, err)
}

func (f *fixture) form() checkout.Form {
	return checkout.Form{FullName: "Ana Pérez", Phone: "+53 5 123-4567", Address: "Calle 4 #12", ZoneID: f.zone.ID}
}

func TestSubmit_RejectsShortPhone(t *testing.T) {
	f := newFixture(t, 0)
	f.fill(t, "s1")

	form := f.form()
	form.Phone = "123"

	_, err := f.service.Submit(context.Background(), "s1", form)
	require.Error(t, err)

	fields := apperr.As(err).Fields()
	assert.Contains(t, fields, checkout.FieldPhone)
	assert.Len(t, fields, 1)
	assert.Empty(t, f.dispatcher.orders)
}

func TestSubmit_ReportsEveryField(t *testing.T) {
	f := newFixture(t, 0)

	_, err := f.service.Submit(context.Background(), "empty", checkout.Form{ZoneID: "missing"})
	fields := apperr.As(err).Fields()

	for _, field := range []string{
		checkout.FieldFullName, checkout.FieldPhone, checkout.FieldAddress, checkout.FieldZone, checkout.FieldItems,
	} {
		assert.Contains(t, fields, field)
	}
}

func TestSubmit_BuildsOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	f.fill(t, "s1")

	order, err := f.service.Submit(ctx, "s1", f.form())
	require.NoError(t, err)

	assert.NotEmpty(t, order.OrderID)
	assert.Equal(t, "+5351234567", order.Customer.Phone)
	assert.Equal(t, "Vista Alegre", order.DeliveryZoneName)
	assert.Equal(t, pricing.Money(300), order.DeliveryCost)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, pricing.Money(80), order.CashTotal)
	assert.Equal(t, pricing.Money(660), order.TransferTotal)
	assert.Equal(t, pricing.Money(60), order.TransferFee)
	assert.Equal(t, pricing.Money(740), order.Subtotal)
	assert.Equal(t, order.Subtotal+order.DeliveryCost, order.Total)

	require.Len(t, f.dispatcher.orders, 1)
	assert.Equal(t, order.OrderID, f.dispatcher.orders[0].OrderID)

	remaining, err := f.carts.View(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, remaining.Count)
}

func TestSubmit_ReadsZoneCostLive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	f.fill(t, "s1")

	zone := f.zone
	zone.Cost = 450
	updated, err := f.store.UpdateZone(ctx, zone)
	require.NoError(t, err)
	require.True(t, updated)

	order, err := f.service.Submit(ctx, "s1", f.form())
	require.NoError(t, err)
	assert.Equal(t, pricing.Money(450), order.DeliveryCost)
	assert.Equal(t, pricing.Money(740+450), order.Total)
}

func TestSubmit_InactiveZoneRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	f.fill(t, "s1")

	zone := f.zone
	zone.Active = false
	_, err := f.store.UpdateZone(ctx, zone)
	require.NoError(t, err)

	_, err = f.service.Submit(ctx, "s1", f.form())
	assert.Contains(t, apperr.As(err).Fields(), checkout.FieldZone)
}

func TestSubmit_DispatchFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	f.fill(t, "s1")
	f.dispatcher.err = errors.New("broker down")

	_, err := f.service.Submit(ctx, "s1", f.form())
	require.Error(t, err)
	assert.Equal(t, "INTERNAL_ERROR", apperr.As(err).Code)

	view, err := f.carts.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Count)
}

func TestSubmit_OpenBreakerIsUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	f.fill(t, "s1")
	f.dispatcher.err = errors.New("broker down")

	breaker := checkout.NewBreakerDispatcher(f.dispatcher, discardLogger(),
		checkout.BreakerSettings{Failures: 1, Cooldown: time.Minute})
	service := checkout.NewService(f.store, f.carts, breaker, discardLogger(), 0)

	_, err := service.Submit(ctx, "s1", f.form())
	assert.Equal(t, "INTERNAL_ERROR", apperr.As(err).Code)

	_, err = service.Submit(ctx, "s1", f.form())
	assert.Equal(t, "SERVICE_UNAVAILABLE", apperr.As(err).Code)
}

func TestSubmit_DelayHonoursContext(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.fill(t, "s1")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.service.Submit(ctx, "s1", f.form())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, apperr.As(err))
	assert.Equal(t, http.StatusGatewayTimeout, apperr.As(err).HTTPStatus)
	assert.Empty(t, f.dispatcher.orders)
}
