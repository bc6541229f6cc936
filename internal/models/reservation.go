package models

import "time"

// Reservation represents one user's claim on one event's capacity
type Reservation struct {
	ID          string   `db:"id" json:"id"`
	UserID      string   `db:"user_id" json:"user_id"`
	EventID     string   `db:"event_id" json:"event_id"`
	Status      string   `db:"status" json:"status"`
	ReservedAt  FlexTime `db:"reserved_at" json:"reserved_at,omitempty"`
	CreatedAt   FlexTime `db:"created_at" json:"created_at"`
	UpdatedAt   FlexTime `db:"updated_at" json:"updated_at"`
	CancelledAt FlexTime `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancelledBy string   `db:"cancelled_by" json:"cancelled_by,omitempty"`
}

// Reservation statuses
const (
	StatusReserved  = "reserved"
	StatusCancelled = "cancelled"
	StatusUnknown   = "unknown"
)

// Cancellation origins
const (
	CancelledByUser       = "user"
	CancelledByHost       = "host"
	CancelledByReconciler = "reconciler"
)

// NormalizedStatus maps any unrecognized stored status to StatusUnknown,
// which is treated as non-authoritative everywhere.
func (r *Reservation) NormalizedStatus() string {
	switch r.Status {
	case StatusReserved, StatusCancelled:
		return r.Status
	default:
		return StatusUnknown
	}
}

// Active reports whether the reservation holds a seat.
func (r *Reservation) Active() bool {
	return r.NormalizedStatus() == StatusReserved
}

// EventCapacity tracks seats for an event
type EventCapacity struct {
	EventID   string    `db:"event_id" json:"event_id"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Reserved  int       `db:"reserved" json:"reserved"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
