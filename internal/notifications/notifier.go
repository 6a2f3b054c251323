// Package notifications delivers request-lifecycle events to interested
// parties over Redis pub/sub and email.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"
	"time"

	"puntovuela/internal/models"

	"github.com/redis/go-redis/v9"
)

// Event names published on request channels.
const (
	EventRequestCreated   = "request.created"
	EventRequestAccepted  = "request.accepted"
	EventRequestCompleted = "request.completed"
	EventMessageSent      = "message.sent"
)

// RequestEvent is the payload published for every lifecycle transition.
type RequestEvent struct {
	Event       string               `json:"event"`
	RequestID   uint                 `json:"request_id"`
	Category    string               `json:"category,omitempty"`
	Status      models.RequestStatus `json:"status"`
	ActorID     uint                 `json:"actor_id"`
	OccurredAt  time.Time            `json:"occurred_at"`
	Description string               `json:"description,omitempty"`
}

func encodeEvent(event RequestEvent) (string, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	return string(payload), nil
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(
	ctx context.Context, userID uint, payload string,
) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishBroadcast sends a notification payload to all connected users.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, "notifications:broadcast", payload).Err()
}

// PublishRequestEvent publishes a lifecycle event on the request's own channel
// and on the broadcast channel, so both list views and an open request detail
// can refresh.
func (n *Notifier) PublishRequestEvent(ctx context.Context, event RequestEvent) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}
	if err := n.rdb.Publish(ctx, RequestChannel(event.RequestID), payload).Err(); err != nil {
		return err
	}
	return n.rdb.Publish(ctx, "notifications:broadcast", payload).Err()
}

// StartPatternSubscriber subscribes to the user, request and broadcast patterns
// and calls onMessage for each incoming message. onMessage receives channel
// and payload.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "notifications:user:*", "requests:*", "notifications:broadcast")
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
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}

// RequestChannel derives the Redis channel name for a help request.
func RequestChannel(requestID uint) string {
	return "requests:" + strconv.FormatUint(uint64(requestID), 10)
}
