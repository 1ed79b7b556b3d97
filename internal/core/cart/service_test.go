// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/carta/internal/core/cart"
	"github.com/taibuivan/carta/internal/core/pricing"
	"github.com/taibuivan/carta/internal/platform/apperr"
)

// priceList is a mutable [cart.PriceSource].
type priceList struct {
	cfg pricing.Config
}

func (list *priceList) Prices() pricing.Config { return list.cfg }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRedisRepository(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *cart.RedisRepository) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, cart.NewRedisRepository(client, ttl)
}

func TestService_PricesLive(t *testing.T) {
	ctx := context.Background()
	prices := &priceList{cfg: pricing.DefaultConfig()}
	service := cart.NewService(cart.NewMemoryRepository(), prices, discardLogger())

	_, err := service.Add(ctx, "s1", cart.Item{ID: 1, Title: "Film", Type: cart.TypeMovie})
	require.NoError(t, err)
	_, err = service.Add(ctx, "s1", cart.Item{ID: 2, Title: "Show", Type: cart.TypeTV, SelectedSeasons: []int{1, 2}})
	require.NoError(t, err)

	view, err := service.SetPaymentType(ctx, "s1", 2, pricing.MethodTransfer)
	require.NoError(t, err)

	require.Len(t, view.Items, 2)
	assert.Equal(t, pricing.Money(80), view.Items[0].Price)
	assert.Equal(t, pricing.Money(660), view.Items[1].Price)
	assert.Equal(t, pricing.Quote{Cash: 600, Transfer: 660}, view.Items[1].Quote)
	assert.Equal(t, pricing.Breakdown{Cash: 80, Transfer: 660, Total: 740, TransferSurcharge: 60}, view.Breakdown)
	assert.Equal(t, 2, view.Count)

	prices.cfg.MoviePrice = 100
	view, err = service.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, pricing.Money(100), view.Items[0].Price)
	assert.Equal(t, pricing.Money(760), view.Total)
}

func TestService_Validation(t *testing.T) {
	ctx := context.Background()
	service := cart.NewService(cart.NewMemoryRepository(), &priceList{cfg: pricing.DefaultConfig()}, discardLogger())

	_, err := service.Add(ctx, "s1", cart.Item{ID: 0, Title: " ", Type: "book"})
	fields := apperr.As(err).Fields()
	assert.Contains(t, fields, cart.FieldID)
	assert.Contains(t, fields, cart.FieldTitle)
	assert.Contains(t, fields, cart.FieldType)

	_, err = service.Add(ctx, "s1", cart.Item{ID: 1, Title: "Show", Type: cart.TypeTV})
	require.NoError(t, err)

	_, err = service.SetSeasons(ctx, "s1", 1, []int{0, 2})
	assert.Contains(t, apperr.As(err).Fields(), cart.FieldSeasons)

	_, err = service.SetPaymentType(ctx, "s1", 1, "card")
	assert.Contains(t, apperr.As(err).Fields(), cart.FieldPaymentType)

	view, err := service.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, view.Items[0].SelectedSeasons)
	assert.Equal(t, pricing.MethodCash, view.Items[0].PaymentType)
}

func TestService_EmptySeasonSelectionPricesZero(t *testing.T) {
	ctx := context.Background()
	service := cart.NewService(cart.NewMemoryRepository(), &priceList{cfg: pricing.DefaultConfig()}, discardLogger())

	_, err := service.Add(ctx, "s1", cart.Item{ID: 1, Title: "Show", Type: cart.TypeTV})
	require.NoError(t, err)

	view, err := service.SetSeasons(ctx, "s1", 1, nil)
	require.NoError(t, err)
	assert.Zero(t, view.Items[0].Price)
	assert.Zero(t, view.Total)
}

func TestService_ConcurrentAddsKeepEveryItem(t *testing.T) {
	ctx := context.Background()
	_, repository := newRedisRepository(t, time.Hour)
	service := cart.NewService(repository, &priceList{cfg: pricing.DefaultConfig()}, discardLogger())

	const writers = 20
	var group sync.WaitGroup
	for i := range writers {
		group.Add(1)
		go func(id int64) {
			defer group.Done()
			_, err := service.Add(ctx, "s1", cart.Item{ID: id, Title: "Film", Type: cart.TypeMovie})
			assert.NoError(t, err)
		}(int64(i + 1))
	}
	group.Wait()

	view, err := service.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, writers, view.Count)
}

func TestService_ReloadWipesCart(t *testing.T) {
	ctx := context.Background()
	_, repository := newRedisRepository(t, time.Hour)
	service := cart.NewService(repository, &priceList{cfg: pricing.DefaultConfig()}, discardLogger())

	_, err := service.Add(ctx, "s1", cart.Item{ID: 1, Title: "Film", Type: cart.TypeMovie})
	require.NoError(t, err)
	_, err = service.Add(ctx, "s1", cart.Item{ID: 2, Title: "Show", Type: cart.TypeTV})
	require.NoError(t, err)

	// Navigation without unload keeps the cart.
	view, err := service.Resume(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Count)

	require.NoError(t, service.MarkUnload(ctx, "s1"))
	view, err = service.Resume(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, view.Count)
	assert.Empty(t, view.Items)

	// The marker is consumed once.
	_, err = service.Add(ctx, "s1", cart.Item{ID: 3, Title: "Another", Type: cart.TypeMovie})
	require.NoError(t, err)
	view, err = service.Resume(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Count)
}

func TestService_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	_, repository := newRedisRepository(t, time.Hour)
	service := cart.NewService(repository, &priceList{cfg: pricing.DefaultConfig()}, discardLogger())

	_, err := service.Add(ctx, "s1", cart.Item{ID: 1, Title: "Film", Type: cart.TypeMovie})
	require.NoError(t, err)

	view, err := service.View(ctx, "s2")
	require.NoError(t, err)
	assert.Zero(t, view.Count)

	require.NoError(t, service.Clear(ctx, "s1"))
	view, err = service.View(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, view.Count)
}

func TestRedisRepository_TTL(t *testing.T) {
	ctx := context.Background()
	server, repository := newRedisRepository(t, 72*time.Hour)

	stored := &cart.Cart{}
	stored.Add(cart.Item{ID: 5, Title: "Film", Type: cart.TypeMovie})
	require.NoError(t, repository.Save(ctx, "s1", stored))

	assert.Equal(t, 72*time.Hour, server.TTL("cart:s1"))

	loaded, err := repository.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), loaded.Items[0].ID)

	server.FastForward(73 * time.Hour)
	loaded, err = repository.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, loaded.Len())
}

func TestRedisRepository_Unavailable(t *testing.T) {
	ctx := context.Background()
	server, repository := newRedisRepository(t, time.Hour)
	service := cart.NewService(repository, &priceList{cfg: pricing.DefaultConfig()}, discardLogger())
	server.Close()

	_, err := service.View(ctx, "s1")
	require.Error(t, err)
	assert.Equal(t, "INTERNAL_ERROR", apperr.As(err).Code)
}
