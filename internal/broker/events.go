package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"popera/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing reservation domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishReservationCreated publishes a ReservationCreated event
func (ep *EventPublisher) PublishReservationCreated(ctx context.Context, event *models.ReservationCreatedEvent) error {
	key := fmt.Sprintf("event-%s", event.EventIDRef)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishReservationCancelled publishes a ReservationCancelled event
func (ep *EventPublisher) PublishReservationCancelled(ctx context.Context, event *models.ReservationCancelledEvent) error {
	key := fmt.Sprintf("event-%s", event.EventIDRef)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming reservation events
type EventHandler struct {
	onReservationCreated   func(context.Context, *models.ReservationCreatedEvent) error
	onReservationCancelled func(context.Context, *models.ReservationCancelledEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnReservationCreated registers a handler for ReservationCreated events
func (eh *EventHandler) OnReservationCreated(handler func(context.Context, *models.ReservationCreatedEvent) error) {
	eh.onReservationCreated = handler
}

// OnReservationCancelled registers a handler for ReservationCancelled events
func (eh *EventHandler) OnReservationCancelled(handler func(context.Context, *models.ReservationCancelledEvent) error) {
	eh.onReservationCancelled = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeReservationCreated:
		if eh.onReservationCreated != nil {
			var event models.ReservationCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ReservationCreated event: %w", err)
			}
			return eh.onReservationCreated(ctx, &event)
		}

	case models.EventTypeReservationCancelled:
		if eh.onReservationCancelled != nil {
			var event models.ReservationCancelledEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ReservationCancelled event: %w", err)
			}
			return eh.onReservationCancelled(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
