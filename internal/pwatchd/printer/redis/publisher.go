// Package redis implements printer event publishing over Redis pub/sub
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/printwatch/printwatch/internal/pwatchd/printer"
)

// EventChannel is the Redis channel printer events are published to
const EventChannel = "printwatch:printer:events"

// Publisher implements printer.EventPublisher using Redis pub/sub
type Publisher struct {
	client *redis.Client
	logger *slog.Logger
}

// NewPublisher creates a new Redis-backed event publisher
func NewPublisher(client *redis.Client, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// Publish serializes the event as JSON and publishes it to the
// printer events channel. Subscribers that are slow or absent do not
// affect the caller.
func (p *Publisher) Publish(ctx context.Context, event printer.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling event: %w", err)
	}

	if err := p.client.Publish(ctx, EventChannel, payload).Err(); err != nil {
		return fmt.Errorf("error publishing event: %w", err)
	}

	p.logger.Debug("published printer event",
		"type", event.Type,
		"printerID", event.PrinterID,
	)
	return nil
}
