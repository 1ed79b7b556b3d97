// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/carta/internal/platform/constants"
)

// reloadMarkerTTL bounds how long an unload marker waits for the next page load.
const reloadMarkerTTL = 10 * time.Minute

// RedisRepository implements [Repository] with one JSON value per session.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRepository creates a Redis-backed [Repository]. Carts expire after ttl
// of inactivity.
func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl}
}

func cartKey(sessionID string) string {
	return constants.RedisPrefixCart + sessionID
}

func reloadKey(sessionID string) string {
	return constants.RedisPrefixReloadMarker + sessionID
}

/*
Get loads the cart of a session.

Returns:
  - *Cart: The stored cart, or an empty one on a miss
  - error: Connectivity or decoding failures
*/
func (repository *RedisRepository) Get(context context.Context, sessionID string) (*Cart, error) {
	blob, err := repository.client.Get(context, cartKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &Cart{}, nil
		}
		return nil, fmt.Errorf("redis_cart_get_failed: %w", err)
	}

	cart := &Cart{}
	if err := json.Unmarshal(blob, cart); err != nil {
		return nil, fmt.Errorf("redis_cart_decode_failed: %w", err)
	}
	return cart, nil
}

// Save stores the cart and restarts its TTL.
func (repository *RedisRepository) Save(context context.Context, sessionID string, cart *Cart) error {
	blob, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("redis_cart_encode_failed: %w", err)
	}

	if err := repository.client.Set(context, cartKey(sessionID), blob, repository.ttl).Err(); err != nil {
		return fmt.Errorf("redis_cart_set_failed: %w", err)
	}
	return nil
}

// Delete removes the cart of a session.
func (repository *RedisRepository) Delete(context context.Context, sessionID string) error {
	if err := repository.client.Del(context, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis_cart_delete_failed: %w", err)
	}
	return nil
}

// MarkReload sets the unload marker of a session.
func (repository *RedisRepository) MarkReload(context context.Context, sessionID string) error {
	if err := repository.client.Set(context, reloadKey(sessionID), "1", reloadMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis_reload_mark_failed: %w", err)
	}
	return nil
}

// ConsumeReload deletes the unload marker and reports whether it existed.
func (repository *RedisRepository) ConsumeReload(context context.Context, sessionID string) (bool, error) {
	removed, err := repository.client.Del(context, reloadKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis_reload_consume_failed: %w", err)
	}
	return removed > 0, nil
}
