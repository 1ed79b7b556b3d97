// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis opens the client shared by every Redis-backed component:

  - the configuration snapshot (STATE_BACKEND=redis)
  - session carts and their reload markers
  - the pub/sub relay between replicas
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// poolSize leaves room for the relay, which pins one connection to its subscription.
	poolSize = 10

	opTimeout    = 2 * time.Second
	probeTimeout = 2 * time.Second
)

// Connect parses redisURL and fails unless the server answers a ping.
func Connect(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse_url_failed: %w", err)
	}
	options.PoolSize = poolSize
	options.MinIdleConns = 1
	options.DialTimeout = 2 * opTimeout
	options.ReadTimeout = opTimeout
	options.WriteTimeout = opTimeout

	client := redis.NewClient(options)
	if err := Probe(client)(context); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_connected", slog.String("addr", options.Addr), slog.Int("db", options.DB))
	return client, nil
}

// Probe returns a readiness check that pings client with its own short deadline.
func Probe(client redis.UniversalClient) func(stdctx.Context) error {
	return func(parent stdctx.Context) error {
		context, cancel := stdctx.WithTimeout(parent, probeTimeout)
		defer cancel()

		if err := client.Ping(context).Err(); err != nil {
			return fmt.Errorf("redis: ping_failed: %w", err)
		}
		return nil
	}
}
