package models

import "time"

// Event types
const (
	EventTypeReservationCreated   = "RESERVATION_CREATED"
	EventTypeReservationCancelled = "RESERVATION_CANCELLED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ReservationCreatedEvent published when a reservation is created
type ReservationCreatedEvent struct {
	BaseEvent
	ReservationID string   `json:"reservation_id"`
	UserID        string   `json:"user_id"`
	EventIDRef    string   `json:"event_ref_id"`
	ReservedAt    FlexTime `json:"reserved_at"`
}

// ReservationCancelledEvent published when a reservation is cancelled
type ReservationCancelledEvent struct {
	BaseEvent
	ReservationID string `json:"reservation_id"`
	UserID        string `json:"user_id"`
	EventIDRef    string `json:"event_ref_id"`
	CancelledBy   string `json:"cancelled_by"`
	Reason        string `json:"reason,omitempty"`
}
