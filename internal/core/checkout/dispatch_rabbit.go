// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package checkout

import (
	stdctx "context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// publishTimeout bounds a single broker publish.
const publishTimeout = 5 * time.Second

var (
	// ErrPoolClosed is returned after [ChannelPool.Close].
	ErrPoolClosed = errors.New("channel pool closed")

	// ErrOrderRejected is returned when the broker nacks a published order.
	ErrOrderRejected = errors.New("broker rejected order")
)

// # Channel Pool

// ChannelPool shares one AMQP connection across a fixed set of channels.
//
// AMQP channels are not safe for concurrent publishing, so each publish
// borrows a channel and returns it afterwards.
type ChannelPool struct {
	conn     *amqp.Connection
	channels chan *amqp.Channel
	queue    string
	logger   *slog.Logger

	mu     sync.Mutex
	closed bool
}

/*
DialChannelPool connects to the broker and opens size channels.

Description: Each channel runs in publisher confirm mode and declares the
durable order queue, so the queue exists before the first publish.

Returns:
  - *ChannelPool: Ready pool
  - error: Connection or declaration failures
*/
func DialChannelPool(url, queue string, size int, logger *slog.Logger) (*ChannelPool, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp_dial_failed: %w", err)
	}

	size = max(size, 1)
	pool := &ChannelPool{
		conn:     conn,
		channels: make(chan *amqp.Channel, size),
		queue:    queue,
		logger:   logger,
	}

	for i := range size {
		channel, err := pool.open()
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("amqp_channel_%d_failed: %w", i, err)
		}
		pool.channels <- channel
	}

	logger.Info("amqp_pool_ready", slog.String("queue", queue), slog.Int("channels", size))
	return pool, nil
}

// open creates a confirming channel and declares the order queue on it.
func (pool *ChannelPool) open() (*amqp.Channel, error) {
	channel, err := pool.conn.Channel()
	if err != nil {
		return nil, err
	}

	if err := channel.Confirm(false); err != nil {
		_ = channel.Close()
		return nil, fmt.Errorf("confirm_mode_failed: %w", err)
	}

	_, err = channel.QueueDeclare(
		pool.queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = channel.Close()
		return nil, fmt.Errorf("queue_declare_failed: %w", err)
	}

	return channel, nil
}

// acquire borrows a channel, waiting until one is free or ctx ends.
// A channel closed by the broker is replaced.
func (pool *ChannelPool) acquire(context stdctx.Context) (*amqp.Channel, error) {
	select {
	case channel, ok := <-pool.channels:
		if !ok {
			return nil, ErrPoolClosed
		}
		if channel.IsClosed() {
			replacement, err := pool.open()
			if err != nil {
				pool.restore(channel)
				return nil, err
			}
			return replacement, nil
		}
		return channel, nil
	case <-context.Done():
		return nil, context.Err()
	}
}

// release returns a borrowed channel. Broken channels are dropped and
// replaced on the next acquire.
func (pool *ChannelPool) release(channel *amqp.Channel) {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	if pool.closed {
		_ = channel.Close()
		return
	}

	if channel.IsClosed() {
		replacement, err := pool.open()
		if err != nil {
			pool.logger.Warn("amqp_channel_replace_failed", slog.Any("error", err))
		} else {
			channel = replacement
		}
	}

	select {
	case pool.channels <- channel:
	default:
		_ = channel.Close()
	}
}

// restore puts a broken channel back so its slot is retried on the next acquire.
func (pool *ChannelPool) restore(channel *amqp.Channel) {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	if pool.closed {
		return
	}
	select {
	case pool.channels <- channel:
	default:
	}
}

// Healthy reports whether the broker connection is open.
func (pool *ChannelPool) Healthy() bool {
	return !pool.conn.IsClosed()
}

// Close closes every pooled channel and the connection.
func (pool *ChannelPool) Close() {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	if pool.closed {
		return
	}
	pool.closed = true

	close(pool.channels)
	for channel := range pool.channels {
		_ = channel.Close()
	}
	_ = pool.conn.Close()

	pool.logger.Info("amqp_pool_closed")
}

// # Rabbit Dispatcher

// RabbitDispatcher publishes orders as persistent JSON messages on the
// pool's queue through the default exchange.
type RabbitDispatcher struct {
	pool   *ChannelPool
	logger *slog.Logger
}

// NewRabbitDispatcher constructs a [RabbitDispatcher].
func NewRabbitDispatcher(pool *ChannelPool, logger *slog.Logger) *RabbitDispatcher {
	return &RabbitDispatcher{pool: pool, logger: logger}
}

/*
Dispatch publishes order and waits for the broker to confirm it.

Returns:
  - error: Channel, publish or confirm failures, [ErrOrderRejected] on a nack
*/
func (dispatcher *RabbitDispatcher) Dispatch(context stdctx.Context, order Order) error {
	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("order_encode_failed: %w", err)
	}

	publishCtx, cancel := stdctx.WithTimeout(context, publishTimeout)
	defer cancel()

	channel, err := dispatcher.pool.acquire(publishCtx)
	if err != nil {
		return fmt.Errorf("amqp_channel_unavailable: %w", err)
	}
	defer dispatcher.pool.release(channel)

	deferred, err := channel.PublishWithDeferredConfirmWithContext(publishCtx,
		"",                    // default exchange
		dispatcher.pool.queue, // routing key
		false,                 // mandatory
		false,                 // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    order.OrderID,
			Timestamp:    order.CreatedAt,
			Type:         "order.created",
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("amqp_publish_failed: %w", err)
	}
	if deferred == nil {
		return errors.New("amqp_publish_failed: channel is not in confirm mode")
	}

	if err := confirmation(deferred.WaitContext(publishCtx)); err != nil {
		return err
	}

	dispatcher.logger.InfoContext(context, "order_published",
		slog.String("order_id", order.OrderID),
		slog.String("queue", dispatcher.pool.queue),
	)
	return nil
}

// confirmation turns a broker ack or nack into a dispatch result.
func confirmation(acked bool, err error) error {
	if err != nil {
		return fmt.Errorf("amqp_confirm_failed: %w", err)
	}
	if !acked {
		return ErrOrderRejected
	}
	return nil
}
