package store

import (
	"context"
	"database/sql"
	"fmt"

	"popera/internal/models"
)

// CreateReservation inserts a new reservation; the store assigns the id and
// the managed timestamps.
func (s *Store) CreateReservation(ctx context.Context, r *models.Reservation) error {
	query := `
		INSERT INTO reservations (user_id, event_id, status, reserved_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := s.db.GetContext(ctx, r, query, r.UserID, r.EventID, r.Status, r.ReservedAt)
	return classify(err)
}

// GetReservationByID retrieves a reservation by id
func (s *Store) GetReservationByID(ctx context.Context, id string) (*models.Reservation, error) {
	var r models.Reservation
	err := s.db.GetContext(ctx, &r, "SELECT * FROM reservations WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("reservation not found: %s", id)
	}
	if err != nil {
		return nil, classify(err)
	}
	return &r, nil
}

// ReservationsByUserAndEvent retrieves every reservation for a (user, event)
// pair regardless of status.
func (s *Store) ReservationsByUserAndEvent(ctx context.Context, userID, eventID string) ([]models.Reservation, error) {
	var rs []models.Reservation
	err := s.db.SelectContext(ctx, &rs,
		"SELECT * FROM reservations WHERE user_id = $1 AND event_id = $2 ORDER BY created_at",
		userID, eventID)
	if err != nil {
		return nil, classify(err)
	}
	return rs, nil
}

// ActiveReservationsByEvent retrieves every active reservation for an event
// across all users.
func (s *Store) ActiveReservationsByEvent(ctx context.Context, eventID string) ([]models.Reservation, error) {
	var rs []models.Reservation
	err := s.db.SelectContext(ctx, &rs,
		"SELECT * FROM reservations WHERE event_id = $1 AND status = $2 ORDER BY created_at",
		eventID, models.StatusReserved)
	if err != nil {
		return nil, classify(err)
	}
	return rs, nil
}

// ActiveReservationsByUser retrieves every active reservation a user holds
// across all events.
func (s *Store) ActiveReservationsByUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	var rs []models.Reservation
	err := s.db.SelectContext(ctx, &rs,
		"SELECT * FROM reservations WHERE user_id = $1 AND status = $2 ORDER BY created_at",
		userID, models.StatusReserved)
	if err != nil {
		return nil, classify(err)
	}
	return rs, nil
}

// ReservationsByUser retrieves all of a user's reservations, newest first.
func (s *Store) ReservationsByUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	var rs []models.Reservation
	err := s.db.SelectContext(ctx, &rs,
		"SELECT * FROM reservations WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, classify(err)
	}
	return rs, nil
}

// CancelReservation flips a single reservation to cancelled, stamping the
// server-side cancellation time and the cancelling party.
func (s *Store) CancelReservation(ctx context.Context, id, cancelledBy string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE reservations SET status = $1, cancelled_at = NOW(), cancelled_by = $2, updated_at = NOW() WHERE id = $3",
		models.StatusCancelled, cancelledBy, id)
	return classify(err)
}
