package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"popera/internal/broker"
	"popera/internal/models"
	"popera/internal/redisclient"
	"popera/internal/store"
	"popera/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEventFull is returned when no seats remain for an event.
var ErrEventFull = errors.New("event is full")

// ErrNotOwner is returned when a user tries to cancel someone else's reservation.
var ErrNotOwner = errors.New("reservation belongs to another user")

// ReservationService handles reservation business logic
type ReservationService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	capacity       *CapacityClient
	logger         *zap.Logger
}

// NewReservationService creates a new reservation service
func NewReservationService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
	capacity *CapacityClient,
) *ReservationService {
	return &ReservationService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		capacity:       capacity,
		logger:         util.GetLogger(),
	}
}

// ReserveRequest represents a request to reserve a seat
type ReserveRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	EventID string `json:"event_id" binding:"required"`
}

// ReserveResponse represents the response after reserving
type ReserveResponse struct {
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
	Existing      bool   `json:"existing,omitempty"`
}

// Reserve books one seat for a user on an event. A user who already holds an
// active reservation for the event gets that reservation back instead of a
// second one.
func (s *ReservationService) Reserve(ctx context.Context, req *ReserveRequest) (*ReserveResponse, error) {
	ctx, span := util.StartSpan(ctx, "ReservationService.Reserve")
	defer span.End()

	existing, err := s.store.ReservationsByUserAndEvent(ctx, req.UserID, req.EventID)
	if err != nil {
		util.ReservationsFailedTotal.WithLabelValues("lookup_error").Inc()
		return nil, fmt.Errorf("failed to check existing reservations: %w", err)
	}
	if active := firstActive(existing); active != nil {
		util.ReservationsDuplicateTotal.Inc()
		s.logger.Info("User already holds an active reservation",
			zap.String("user_id", req.UserID),
			zap.String("event_id", req.EventID),
			zap.String("reservation_id", active.ID))
		return &ReserveResponse{
			ReservationID: active.ID,
			Status:        active.Status,
			Existing:      true,
		}, nil
	}

	held, err := s.holdSeat(ctx, req.EventID)
	if err != nil {
		util.ReservationsFailedTotal.WithLabelValues("capacity_error").Inc()
		return nil, fmt.Errorf("seat hold failed: %w", err)
	}
	if !held {
		util.SeatHoldsFailed.WithLabelValues("event_full").Inc()
		return nil, ErrEventFull
	}

	reservation := &models.Reservation{
		UserID:     req.UserID,
		EventID:    req.EventID,
		Status:     models.StatusReserved,
		ReservedAt: models.MillisTime(time.Now().UnixMilli()),
	}

	if err := s.store.CreateReservation(ctx, reservation); err != nil {
		// Give the held seat back; the insert never happened.
		if relErr := s.capacity.ReleaseSeat(ctx, req.EventID); relErr != nil {
			s.logger.Error("Failed to release seat after failed insert",
				zap.String("event_id", req.EventID),
				zap.Error(relErr))
		}
		util.ReservationsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	util.ReservationsCreatedTotal.Inc()
	s.logger.Info("Reservation created",
		zap.String("reservation_id", reservation.ID),
		zap.String("user_id", req.UserID),
		zap.String("event_id", req.EventID))

	event := &models.ReservationCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeReservationCreated,
			Timestamp: time.Now(),
		},
		ReservationID: reservation.ID,
		UserID:        reservation.UserID,
		EventIDRef:    reservation.EventID,
		ReservedAt:    reservation.ReservedAt,
	}

	if err := s.eventPublisher.PublishReservationCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish ReservationCreated event", zap.Error(err))
	}

	return &ReserveResponse{
		ReservationID: reservation.ID,
		Status:        reservation.Status,
	}, nil
}

// firstActive returns the first active reservation in rs, or nil.
func firstActive(rs []models.Reservation) *models.Reservation {
	for i := range rs {
		if rs[i].Active() {
			return &rs[i]
		}
	}
	return nil
}

// holdSeat wraps the capacity client call with latency metrics
func (s *ReservationService) holdSeat(ctx context.Context, eventID string) (bool, error) {
	start := time.Now()
	defer func() {
		util.SeatHoldLatency.Observe(time.Since(start).Seconds())
	}()

	return s.capacity.HoldSeat(ctx, eventID)
}

// Cancel cancels a reservation on behalf of its owner. Cancelling an already
// cancelled reservation is a no-op.
func (s *ReservationService) Cancel(ctx context.Context, reservationID, userID string) error {
	ctx, span := util.StartSpan(ctx, "ReservationService.Cancel")
	defer span.End()

	reservation, err := s.store.GetReservationByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if reservation.UserID != userID {
		return ErrNotOwner
	}
	if !reservation.Active() {
		s.logger.Info("Reservation already inactive",
			zap.String("reservation_id", reservationID),
			zap.String("status", reservation.Status))
		return nil
	}

	if err := s.store.CancelReservation(ctx, reservationID, models.CancelledByUser); err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}

	if err := s.capacity.ReleaseSeat(ctx, reservation.EventID); err != nil {
		s.logger.Error("Failed to release seat on cancellation",
			zap.String("event_id", reservation.EventID),
			zap.Error(err))
	}

	util.ReservationsCancelledTotal.WithLabelValues(models.CancelledByUser).Inc()
	s.logger.Info("Reservation cancelled",
		zap.String("reservation_id", reservationID),
		zap.String("user_id", userID))

	event := &models.ReservationCancelledEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeReservationCancelled,
			Timestamp: time.Now(),
		},
		ReservationID: reservationID,
		UserID:        userID,
		EventIDRef:    reservation.EventID,
		CancelledBy:   models.CancelledByUser,
	}

	if err := s.eventPublisher.PublishReservationCancelled(ctx, event); err != nil {
		s.logger.Error("Failed to publish ReservationCancelled event", zap.Error(err))
	}

	return nil
}

// GetReservation retrieves a reservation by id
func (s *ReservationService) GetReservation(ctx context.Context, reservationID string) (*models.Reservation, error) {
	return s.store.GetReservationByID(ctx, reservationID)
}

// ListUserReservations retrieves all of a user's reservations
func (s *ReservationService) ListUserReservations(ctx context.Context, userID string) ([]models.Reservation, error) {
	return s.store.ReservationsByUser(ctx, userID)
}
