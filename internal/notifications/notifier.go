// Package notifications fans feed events out to WebSocket clients, across
// instances through Redis pub/sub.
package notifications

import (
	"context"
	"log/slog"
	"runtime/debug"

	"pulse/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Notifier publishes feed events into Redis.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier. A nil client turns every call into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether events travel through Redis.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// PublishFeed sends an encoded event to every instance.
func (n *Notifier) PublishFeed(ctx context.Context, payload []byte) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, FeedChannel, payload).Err()
}

// StartFeedSubscriber calls onMessage for each feed event until ctx is done.
// The subscription is confirmed before it returns.
func (n *Notifier) StartFeedSubscriber(ctx context.Context, onMessage func(payload []byte)) error {
	if !n.Enabled() {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, FeedChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in feed subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage([]byte(msg.Payload))
				}()
			}
		}
	}()

	return nil
}
