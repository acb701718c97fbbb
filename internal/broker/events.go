package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"production-simulator/internal/models"
	"production-simulator/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing simulation domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishSimulationStarted publishes SimulationStarted event
func (ep *EventPublisher) PublishSimulationStarted(ctx context.Context, event *models.SimulationStartedEvent) error {
	return ep.producer.PublishEvent(ctx, "simulation", event)
}

// PublishDayAdvanced publishes DayAdvanced event
func (ep *EventPublisher) PublishDayAdvanced(ctx context.Context, event *models.DayAdvancedEvent) error {
	return ep.producer.PublishEvent(ctx, "simulation", event)
}

// PublishPurchaseOrderCreated publishes PurchaseOrderCreated event
func (ep *EventPublisher) PublishPurchaseOrderCreated(ctx context.Context, event *models.PurchaseOrderCreatedEvent) error {
	key := fmt.Sprintf("purchase-%d", event.Order.ID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPurchaseReceived publishes PurchaseReceived event
func (ep *EventPublisher) PublishPurchaseReceived(ctx context.Context, event *models.PurchaseReceivedEvent) error {
	key := fmt.Sprintf("purchase-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishManufacturingOrderCreated publishes ManufacturingOrderCreated event
func (ep *EventPublisher) PublishManufacturingOrderCreated(ctx context.Context, event *models.ManufacturingOrderCreatedEvent) error {
	key := fmt.Sprintf("manufacturing-%d", event.Order.ID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishManufacturingStarted publishes ManufacturingStarted event
func (ep *EventPublisher) PublishManufacturingStarted(ctx context.Context, event *models.ManufacturingStartedEvent) error {
	key := fmt.Sprintf("manufacturing-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishManufacturingCompleted publishes ManufacturingCompleted event
func (ep *EventPublisher) PublishManufacturingCompleted(ctx context.Context, event *models.ManufacturingCompletedEvent) error {
	key := fmt.Sprintf("manufacturing-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishManufacturingBlocked publishes ManufacturingBlocked event
func (ep *EventPublisher) PublishManufacturingBlocked(ctx context.Context, event *models.ManufacturingBlockedEvent) error {
	key := fmt.Sprintf("manufacturing-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming simulation events
type EventHandler struct {
	onDayAdvanced           func(context.Context, *models.DayAdvancedEvent) error
	onManufacturingBlocked  func(context.Context, *models.ManufacturingBlockedEvent) error
	onManufacturingComplete func(context.Context, *models.ManufacturingCompletedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnDayAdvanced registers a handler for DayAdvanced events
func (eh *EventHandler) OnDayAdvanced(handler func(context.Context, *models.DayAdvancedEvent) error) {
	eh.onDayAdvanced = handler
}

// OnManufacturingBlocked registers a handler for ManufacturingBlocked events
func (eh *EventHandler) OnManufacturingBlocked(handler func(context.Context, *models.ManufacturingBlockedEvent) error) {
	eh.onManufacturingBlocked = handler
}

// OnManufacturingCompleted registers a handler for ManufacturingCompleted events
func (eh *EventHandler) OnManufacturingCompleted(handler func(context.Context, *models.ManufacturingCompletedEvent) error) {
	eh.onManufacturingComplete = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeDayAdvanced:
		if eh.onDayAdvanced != nil {
			var event models.DayAdvancedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal DayAdvanced event: %w", err)
			}
			return eh.onDayAdvanced(ctx, &event)
		}

	case models.EventTypeManufacturingBlocked:
		if eh.onManufacturingBlocked != nil {
			var event models.ManufacturingBlockedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ManufacturingBlocked event: %w", err)
			}
			return eh.onManufacturingBlocked(ctx, &event)
		}

	case models.EventTypeManufacturingCompleted:
		if eh.onManufacturingComplete != nil {
			var event models.ManufacturingCompletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ManufacturingCompleted event: %w", err)
			}
			return eh.onManufacturingComplete(ctx, &event)
		}

	default:
		util.GetLogger().Debug("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
