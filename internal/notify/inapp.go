package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// InAppChannel is the Redis pub/sub channel in-app notifications are
// published on; the front-end relays it over its live connection.
const InAppChannel = "taskward:notifications"

// InAppMessage is the payload published to the in-app channel
type InAppMessage struct {
	Title     string    `json:"title"`
	ActionURL string    `json:"action_url"`
	SentAt    time.Time `json:"sent_at"`
}

// RedisInAppNotifier publishes in-app notifications over Redis pub/sub.
// It is the foreground fallback used when the push gateway is unreachable.
type RedisInAppNotifier struct {
	client *redis.Client
}

// NewRedisInAppNotifier creates a notifier backed by the given Redis client
func NewRedisInAppNotifier(client *redis.Client) *RedisInAppNotifier {
	return &RedisInAppNotifier{client: client}
}

// Notify publishes the notification to the in-app channel
func (n *RedisInAppNotifier) Notify(ctx context.Context, title, actionURL string) error {
	payload, err := json.Marshal(InAppMessage{
		Title:     title,
		ActionURL: actionURL,
		SentAt:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal in-app message: %w", err)
	}
	if err := n.client.Publish(ctx, InAppChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish in-app message: %w", err)
	}
	return nil
}

var _ FallbackNotifier = (*RedisInAppNotifier)(nil)
