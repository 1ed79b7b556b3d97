// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/carta/internal/platform/constants"
)

// RedisPersister keeps the snapshot as one JSON string shared by every replica.
type RedisPersister struct {
	client *redis.Client
	key    string
}

// NewRedisPersister creates a persister writing to [constants.RedisKeyState].
func NewRedisPersister(client *redis.Client) *RedisPersister {
	return &RedisPersister{client: client, key: constants.RedisKeyState}
}

/*
Load reads the stored snapshot.

Returns:
  - []byte: The encoded snapshot
  - error: ErrNoState when the key is absent, or connectivity errors
*/
func (persister *RedisPersister) Load(context context.Context) ([]byte, error) {
	blob, err := persister.client.Get(context, persister.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("redis_state_get_failed: %w", err)
	}
	return blob, nil
}

// Save overwrites the stored snapshot. The key never expires.
func (persister *RedisPersister) Save(context context.Context, blob []byte) error {
	if err := persister.client.Set(context, persister.key, blob, 0).Err(); err != nil {
		return fmt.Errorf("redis_state_set_failed: %w", err)
	}
	return nil
}
