// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/carta/internal/platform/constants"
)

// RedisRelay carries committed changes between replicas over Redis pub/sub.
//
// Each replica publishes its own changes and applies everyone else's. A
// replica never applies a message it published itself, the same way a browser
// tab never receives the storage event for its own write. Concurrent writers
// on different replicas resolve last-write-wins.
type RedisRelay struct {
	client  *redis.Client
	channel string
	origin  string
	logger  *slog.Logger
}

// NewRedisRelay creates a relay on [constants.RedisChannelState] for the given replica origin.
func NewRedisRelay(client *redis.Client, origin string, logger *slog.Logger) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: constants.RedisChannelState,
		origin:  origin,
		logger:  logger,
	}
}

// relayMessage keeps the snapshot raw so it goes through [DecodeSnapshot].
type relayMessage struct {
	Kind     ChangeKind      `json:"kind"`
	Snapshot json.RawMessage `json:"snapshot"`
	Origin   string          `json:"origin"`
	At       time.Time       `json:"at"`
}

// Publish implements [Relay].
func (relay *RedisRelay) Publish(context context.Context, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("relay_encode_failed: %w", err)
	}

	if err := relay.client.Publish(context, relay.channel, payload).Err(); err != nil {
		return fmt.Errorf("relay_publish_failed: %w", err)
	}
	return nil
}

/*
Start subscribes to the channel and applies foreign changes until ctx ends.

Description: Start returns once Redis has confirmed the subscription, so any
change published after Start returns is seen.

Parameters:
  - context: context.Context (Cancelling it stops the listener)
  - apply: func(Snapshot, string) (Usually [Store.ApplyRemote])

Returns:
  - func(): Blocks until the listener goroutine has exited
  - error: Subscription failures
*/
func (relay *RedisRelay) Start(context context.Context, apply func(Snapshot, string)) (func(), error) {
	subscription := relay.client.Subscribe(context, relay.channel)
	if _, err := subscription.Receive(context); err != nil {
		_ = subscription.Close()
		return nil, fmt.Errorf("relay_subscribe_failed: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer subscription.Close()

		messages := subscription.Channel()
		for {
			select {
			case <-context.Done():
				return
			case message, ok := <-messages:
				if !ok {
					return
				}
				relay.handle(message.Payload, apply)
			}
		}
	}()

	relay.logger.Info("relay_started", slog.String("channel", relay.channel), slog.String("origin", relay.origin))
	return func() { <-done }, nil
}

func (relay *RedisRelay) handle(payload string, apply func(Snapshot, string)) {
	var message relayMessage
	if err := json.Unmarshal([]byte(payload), &message); err != nil {
		relay.logger.Warn("relay_message_malformed", slog.Any("error", err))
		return
	}

	if message.Origin == relay.origin {
		return
	}

	snapshot, err := DecodeSnapshot(message.Snapshot)
	if err != nil {
		relay.logger.Warn("relay_snapshot_rejected",
			slog.String("origin", message.Origin),
			slog.Any("error", err),
		)
		return
	}

	relay.logger.Debug("relay_change_applied",
		slog.String("origin", message.Origin),
		slog.String("kind", string(message.Kind)),
	)
	apply(snapshot, message.Origin)
}
