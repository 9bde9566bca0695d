// Package notify broadcasts Todo change events over Redis pub/sub.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"todo-http-demo/internal/models"
	"todo-http-demo/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Publisher sends events to a Redis channel.
type Publisher struct {
	client  *redis.Client
	channel string
}

// NewPublisher parses redisURL and returns a publisher, or nil when redisURL is empty.
func NewPublisher(ctx context.Context, redisURL, channel string, poolSize int) (*Publisher, error) {
	if redisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if poolSize > 0 {
		opts.PoolSize = poolSize
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn(ctx, "Redis ping failed; events will be retried per publish", "error", err)
	} else {
		logger.Info(ctx, "Redis publisher initialized", "channel", channel, "pool_size", opts.PoolSize)
	}
	return NewPublisherWithClient(client, channel), nil
}

// NewPublisherWithClient wraps an existing client.
func NewPublisherWithClient(client *redis.Client, channel string) *Publisher {
	return &Publisher{client: client, channel: channel}
}

func (p *Publisher) Name() string { return "redis" }

// Publish sends the JSON encoded event to the channel.
func (p *Publisher) Publish(ctx context.Context, evt models.TodoEvent) error {
	b, err := EncodeEvent(evt)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, b).Err()
}

// EncodeEvent is the channel payload for evt.
func EncodeEvent(evt models.TodoEvent) ([]byte, error) {
	b, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return b, nil
}

func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *Publisher) Close() error {
	return p.client.Close()
}

// Subscribe streams decoded events from channel until ctx is done.
// Undecodable payloads are logged and skipped.
func Subscribe(ctx context.Context, client *redis.Client, channel string, handle func(models.TodoEvent)) error {
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}
	return consume(ctx, sub.Channel(), handle)
}

// consume hands decoded messages to handle until ctx is done or ch closes.
func consume(ctx context.Context, ch <-chan *redis.Message, handle func(models.TodoEvent)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var evt models.TodoEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				logger.Debug(ctx, "Redis event decode failed", "error", err)
				continue
			}
			handle(evt)
		}
	}
}
