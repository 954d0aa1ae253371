package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/netsentinel/sentryview/internal/model"
)

// Publisher re-publishes accepted alert summaries to a Redis channel for
// downstream consumers. Channel can be swapped at runtime (config reload).
type Publisher struct {
	rdb *redis.Client

	mu      sync.RWMutex
	channel string
}

// NewPublisher connects to Redis and verifies the connection.
func NewPublisher(ctx context.Context, addr, channel string) (*Publisher, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis %s: %w", addr, err)
	}
	return &Publisher{rdb: rdb, channel: channel}, nil
}

// Publish sends one alert summary as JSON.
func (p *Publisher) Publish(ctx context.Context, alert model.AlertSummary) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshaling alert: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.Channel(), payload).Err(); err != nil {
		return fmt.Errorf("publishing alert %s: %w", alert.IncidentID, err)
	}
	return nil
}

// Channel returns the current target channel.
func (p *Publisher) Channel() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.channel
}

// SetChannel swaps the target channel.
func (p *Publisher) SetChannel(channel string) {
	p.mu.Lock()
	p.channel = channel
	p.mu.Unlock()
}

// Close releases the Redis connection.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
