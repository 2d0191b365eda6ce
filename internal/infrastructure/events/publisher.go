// Package events publishes concept map domain events to EventBridge.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	apperrors "brain2-conceptmap/internal/errors"
)

// maxBatchSize is the EventBridge limit of entries per PutEvents call.
const maxBatchSize = 10

// Publisher publishes domain events.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// PutEventsAPI is the part of the EventBridge client the publisher needs.
type PutEventsAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventBridgePublisher implements Publisher using AWS EventBridge
type EventBridgePublisher struct {
	client   PutEventsAPI
	eventBus string
	source   string
	now      func() time.Time
}

// NewEventBridgePublisher creates a new EventBridge publisher
func NewEventBridgePublisher(client PutEventsAPI, eventBus, source string) *EventBridgePublisher {
	if eventBus == "" {
		eventBus = "default"
	}
	if source == "" {
		source = "brain2.conceptmap"
	}
	return &EventBridgePublisher{
		client:   client,
		eventBus: eventBus,
		source:   source,
		now:      time.Now,
	}
}

// Publish publishes events in batches of at most ten.
func (p *EventBridgePublisher) Publish(ctx context.Context, events ...Event) error {
	for i := 0; i < len(events); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(events) {
			end = len(events)
		}
		if err := p.publishBatch(ctx, events[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *EventBridgePublisher) publishBatch(ctx context.Context, batch []Event) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(batch))
	for _, event := range batch {
		detail, err := json.Marshal(event)
		if err != nil {
			return apperrors.NewInternal("marshal event "+event.EventType(), err)
		}
		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.eventBus),
			Source:       aws.String(p.source),
			DetailType:   aws.String(event.EventType()),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(p.now()),
		})
	}

	output, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return apperrors.NewExternal("put events", err).WithCode(apperrors.CodeEventBridgeError)
	}
	if output.FailedEntryCount > 0 {
		return apperrors.NewExternal(
			fmt.Sprintf("%d of %d events failed to publish", output.FailedEntryCount, len(entries)), nil,
		).WithCode(apperrors.CodeEventBridgeError)
	}
	return nil
}

// NoopPublisher drops every event. It is used when no event bus is configured.
type NoopPublisher struct{}

// Publish implements Publisher.
func (NoopPublisher) Publish(context.Context, ...Event) error { return nil }

// LoggingPublisher logs events instead of sending them anywhere.
type LoggingPublisher struct {
	logger *zap.Logger
}

// NewLoggingPublisher creates a publisher that writes events to logger.
func NewLoggingPublisher(logger *zap.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger.Named("events")}
}

// Publish implements Publisher.
func (p *LoggingPublisher) Publish(_ context.Context, events ...Event) error {
	for _, event := range events {
		p.logger.Debug("Domain event", zap.String("event_type", event.EventType()), zap.Any("event", event))
	}
	return nil
}
