// Package eventbridge publishes domain events to an AWS EventBridge bus so
// downstream consumers (notifications, analytics) can react without coupling
// to this service.
package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"pollboard/application/ports"
	"pollboard/domain/events"
)

// putEventsLimit is EventBridge's maximum entries per PutEvents call.
const putEventsLimit = 10

const eventSource = "pollboard"

// Publisher implements the EventPublisher port on EventBridge
type Publisher struct {
	client  *eventbridge.Client
	busName string
	logger  *zap.Logger
}

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client *eventbridge.Client, busName string, logger *zap.Logger) ports.EventPublisher {
	return &Publisher{
		client:  client,
		busName: busName,
		logger:  logger,
	}
}

// Publish sends a single domain event
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends domain events in PutEvents-sized chunks
func (p *Publisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	if len(batch) == 0 {
		return nil
	}

	entries := make([]types.PutEventsRequestEntry, 0, len(batch))
	for _, event := range batch {
		detail, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.GetEventType(), err)
		}
		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.busName),
			Source:       aws.String(eventSource),
			DetailType:   aws.String(event.GetEventType()),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(event.GetTimestamp()),
		})
	}

	for start := 0; start < len(entries); start += putEventsLimit {
		end := start + putEventsLimit
		if end > len(entries) {
			end = len(entries)
		}

		out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
			Entries: entries[start:end],
		})
		if err != nil {
			return fmt.Errorf("failed to publish events: %w", err)
		}
		if out.FailedEntryCount > 0 {
			p.logger.Warn("some events failed to publish",
				zap.Int32("failed", out.FailedEntryCount),
				zap.Int("total", end-start),
			)
		}
	}

	return nil
}

// NoopPublisher discards events. Used when no event bus is configured,
// typically in local development.
type NoopPublisher struct{}

// NewNoopPublisher creates a publisher that drops all events
func NewNoopPublisher() ports.EventPublisher {
	return NoopPublisher{}
}

// Publish implements EventPublisher
func (NoopPublisher) Publish(ctx context.Context, event events.DomainEvent) error { return nil }

// PublishBatch implements EventPublisher
func (NoopPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error { return nil }
