package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"test-grading-service/internal/notify"
	"github.com/redis/go-redis/v9"
)

// ResultChannel is the pub/sub channel result notifications go out on.
const ResultChannel = "notifications:results"

// Notifier publishes result events to a Redis pub/sub channel for a
// downstream notification consumer (in-app feed, email worker).
type Notifier struct {
	client *redis.Client
}

func NewNotifier(client *redis.Client) *Notifier {
	return &Notifier{client: client}
}

func (n *Notifier) ResultSubmitted(ctx context.Context, event notify.ResultEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal result event: %w", err)
	}
	if err := n.client.Publish(ctx, ResultChannel, data).Err(); err != nil {
		return fmt.Errorf("publish result event: %w", err)
	}
	return nil
}
