// Package reconcile implements the reservation consistency reconciler: three
// independent reads over the reservation store, cross-validated by a pure
// reconciliation function, with an opt-in resolver that collapses duplicate
// active reservations for a (user, event) pair down to one.
package reconcile

import (
	"context"

	"popera/internal/models"
)

// ReservationStore is the slice of the store the reconciler needs. The
// concrete *store.Store satisfies it; tests use an in-memory fake.
type ReservationStore interface {
	ReservationsByUserAndEvent(ctx context.Context, userID, eventID string) ([]models.Reservation, error)
	ActiveReservationsByEvent(ctx context.Context, eventID string) ([]models.Reservation, error)
	ActiveReservationsByUser(ctx context.Context, userID string) ([]models.Reservation, error)
	CancelReservation(ctx context.Context, id, cancelledBy string) error
}

// AnomalyKind classifies detected consistency violations.
type AnomalyKind string

const (
	AnomalyPermission         AnomalyKind = "permission_denied"
	AnomalyTimeout            AnomalyKind = "query_timeout"
	AnomalyDuplicateActive    AnomalyKind = "duplicate_active"
	AnomalyVisibilityMismatch AnomalyKind = "visibility_mismatch"
)

// Anomaly is one detected violation of a consistency invariant. Anomalies are
// collected and reported, never returned as errors.
type Anomaly struct {
	Kind    AnomalyKind
	Message string
}
