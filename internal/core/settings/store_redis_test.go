// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package settings_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/carta/internal/core/broadcast"
	"github.com/taibuivan/carta/internal/core/notification"
	"github.com/taibuivan/carta/internal/core/pricing"
	"github.com/taibuivan/carta/internal/core/settings"
	"github.com/taibuivan/carta/internal/platform/constants"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, client
}

func TestRedisPersister(t *testing.T) {
	ctx := context.Background()
	server, client := newRedis(t)
	persister := settings.NewRedisPersister(client)

	_, err := persister.Load(ctx)
	assert.ErrorIs(t, err, settings.ErrNoState)

	require.NoError(t, persister.Save(ctx, []byte(`{"prices":{"moviePrice":90}}`)))

	blob, err := persister.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"prices":{"moviePrice":90}}`, string(blob))

	stored, err := server.Get(constants.RedisKeyState)
	require.NoError(t, err)
	assert.JSONEq(t, string(blob), stored)
	assert.Zero(t, server.TTL(constants.RedisKeyState))
}

func TestRedisPersister_Unavailable(t *testing.T) {
	server, client := newRedis(t)
	server.Close()

	_, err := settings.NewRedisPersister(client).Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, settings.ErrNoState)
}

func TestStore_CancelledRequestStillPersists(t *testing.T) {
	_, client := newRedis(t)
	persister := settings.NewRedisPersister(client)
	store := newStore(t, persister)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	next := store.Prices()
	next.MoviePrice = 100
	require.NoError(t, store.UpdatePrices(cancelled, next))

	entries := store.Notifications()
	require.Len(t, entries, 1)
	assert.NotEqual(t, notification.TypeError, entries[0].Type)

	restarted := newStore(t, persister)
	restarted.Restore(context.Background())
	assert.Equal(t, pricing.Money(100), restarted.Prices().MoviePrice)
}

// replica is one API process sharing Redis with the others.
type replica struct {
	store *settings.Store
	stop  func()
}

func startReplica(t *testing.T, ctx context.Context, client *redis.Client, origin string) replica {
	t.Helper()

	hub := broadcast.NewHub[settings.Change](discardLogger())
	store := settings.NewStore(settings.NewRedisPersister(client), hub, discardLogger(), settings.Options{Origin: origin})
	relay := settings.NewRedisRelay(client, origin, discardLogger())
	store.SetRelay(relay)
	store.Restore(ctx)

	stop, err := relay.Start(ctx, store.ApplyRemote)
	require.NoError(t, err)
	return replica{store: store, stop: stop}
}

func TestRedisRelay_PropagatesBetweenReplicas(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	_, client := newRedis(t)

	writer := startReplica(t, ctx, client, "replica-a")
	reader := startReplica(t, ctx, client, "replica-b")

	var writerEvents, readerEvents []settings.ChangeKind
	var readerMu sync.Mutex
	writer.store.Subscribe(func(change settings.Change) { writerEvents = append(writerEvents, change.Kind) })
	reader.store.Subscribe(func(change settings.Change) {
		readerMu.Lock()
		defer readerMu.Unlock()
		readerEvents = append(readerEvents, change.Kind)
	})

	next := writer.store.Prices()
	next.MoviePrice = 100
	require.NoError(t, writer.store.UpdatePrices(ctx, next))

	require.Eventually(t, func() bool {
		readerMu.Lock()
		defer readerMu.Unlock()
		return len(readerEvents) > 0
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, pricing.Money(100), reader.store.Prices().MoviePrice)
	readerMu.Lock()
	assert.Equal(t, []settings.ChangeKind{settings.ChangeRemote}, readerEvents)
	readerMu.Unlock()

	cancel()
	writer.stop()
	reader.stop()

	// The writer never re-applied its own message
	assert.Equal(t, []settings.ChangeKind{settings.ChangePrices}, writerEvents)
}

func TestRedisRelay_NewReplicaRestoresSharedState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, client := newRedis(t)

	first := startReplica(t, ctx, client, "replica-a")
	_, err := first.store.AddZone(ctx, "Guanabacoa", 180)
	require.NoError(t, err)

	late := startReplica(t, ctx, client, "replica-c")
	require.Len(t, late.store.Zones(), 1)
	assert.Equal(t, "Guanabacoa", late.store.Zones()[0].Name)
}
