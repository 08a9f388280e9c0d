package notifications

import (
	"context"
	"log"
	"runtime/debug"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix = "notifications:user:"
	broadcastChannel  = "notifications:broadcast"

	originIDLen = 36 // uuid string length
)

// Notifier publishes notification payloads into Redis channels so every
// instance's hub can fan them out to its local connections. Payloads are
// tagged with a per-process origin id; the subscriber drops messages this
// process published itself, since those were already delivered to local
// connections directly. Without the tag every locally connected client would
// receive its own instance's events twice.
type Notifier struct {
	rdb      *redis.Client
	originID string
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb, originID: uuid.NewString()}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), n.originID+"|"+payload).Err()
}

// PublishBroadcast sends a notification payload to all connected users.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, broadcastChannel, n.originID+"|"+payload).Err()
}

// StartPatternSubscriber subscribes to `notifications:user:*` and the
// broadcast channel, calling onMessage for each incoming message published by
// another instance. Self-published messages are dropped.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*", broadcastChannel)
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
				origin, payload := splitOrigin(msg.Payload)
				if origin == n.originID {
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, payload)
				}()
			}
		}
	}()

	return nil
}

// splitOrigin separates the origin tag from a published payload. Messages
// without a tag (published outside this codebase) pass through unchanged.
func splitOrigin(raw string) (origin, payload string) {
	if len(raw) > originIDLen && raw[originIDLen] == '|' {
		return raw[:originIDLen], raw[originIDLen+1:]
	}
	return "", raw
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}
