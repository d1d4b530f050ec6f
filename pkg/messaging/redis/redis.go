package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinrec/console/pkg/breaker"
	"github.com/clinrec/console/pkg/messaging"
)

type Config struct {
	URL          string
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int
	MinIdleConns int
}

// Broker publishes console events on Redis pub/sub channels.
type Broker struct {
	client *redis.Client
	cb     *breaker.Breaker
	logger *zerolog.Logger
}

func NewBroker(cfg Config, logger *zerolog.Logger) (*Broker, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	opts.MaxRetries = cfg.MaxRetries
	opts.MinRetryBackoff = cfg.RetryBackoff
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	cb := breaker.New(breaker.Settings{
		Name:        "redis-broker",
		MaxFailures: 5,
		Cooldown:    10 * time.Second,
	})

	return &Broker{client: client, cb: cb, logger: logger}, nil
}

func (b *Broker) Publish(ctx context.Context, topic string, event *messaging.Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = b.cb.Execute(func() error {
		return b.client.Publish(ctx, topic, raw).Err()
	})
	if err != nil {
		b.logger.Error().
			Err(err).
			Str("topic", topic).
			Str("event_type", event.Type).
			Msg("failed to publish event")
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	b.logger.Debug().
		Str("topic", topic).
		Str("event_id", event.ID).
		Str("event_type", event.Type).
		Msg("event published")
	return nil
}

func (b *Broker) Close() error {
	return b.client.Close()
}
