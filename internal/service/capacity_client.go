package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"popera/internal/models"
	"popera/internal/redisclient"
	"popera/internal/store"
	"popera/internal/util"

	"go.uber.org/zap"
)

// CapacityClient handles per-event seat accounting
type CapacityClient struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCapacityClient creates a new capacity client
func NewCapacityClient(store *store.Store, redis *redisclient.Client) *CapacityClient {
	return &CapacityClient{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// HoldSeat takes one seat for an event (fast path via Redis).
// Returns false when the event is full.
func (cc *CapacityClient) HoldSeat(ctx context.Context, eventID string) (bool, error) {
	ctx, span := util.StartSpan(ctx, "CapacityClient.HoldSeat")
	defer span.End()

	held, err := cc.redis.HoldSeat(ctx, eventID)
	if err != nil {
		cc.logger.Warn("Redis seat hold failed, falling back to DB",
			zap.String("event_id", eventID),
			zap.Error(err))

		return cc.holdSeatDB(ctx, eventID)
	}

	if !held {
		return false, nil
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := cc.store.HoldSeatTx(ctx, eventID); err != nil {
			cc.logger.Error("Failed to sync seat hold to DB",
				zap.String("event_id", eventID),
				zap.Error(err))
		}
	}()

	return true, nil
}

// holdSeatDB takes a seat using a database transaction (fallback)
func (cc *CapacityClient) holdSeatDB(ctx context.Context, eventID string) (bool, error) {
	err := cc.store.HoldSeatTx(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrEventFull) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReleaseSeat returns one seat to the pool (compensation)
func (cc *CapacityClient) ReleaseSeat(ctx context.Context, eventID string) error {
	ctx, span := util.StartSpan(ctx, "CapacityClient.ReleaseSeat")
	defer span.End()

	if err := cc.redis.ReleaseSeat(ctx, eventID); err != nil {
		cc.logger.Error("Failed to release seat in Redis",
			zap.String("event_id", eventID),
			zap.Error(err))
	}

	return cc.store.ReleaseSeat(ctx, eventID)
}

// SyncCapacityToRedis synchronizes database seat counters to Redis
func (cc *CapacityClient) SyncCapacityToRedis(ctx context.Context) error {
	cc.logger.Info("Starting capacity sync to Redis")

	caps, err := cc.store.GetEventCapacities(ctx)
	if err != nil {
		return fmt.Errorf("failed to get event capacities: %w", err)
	}

	for _, c := range caps {
		if err := cc.redis.InitEventSeats(ctx, c.EventID, c.Capacity, c.Reserved); err != nil {
			cc.logger.Error("Failed to init Redis seat counters",
				zap.String("event_id", c.EventID),
				zap.Error(err))
		}
	}

	cc.logger.Info("Capacity sync completed", zap.Int("count", len(caps)))
	return nil
}

// GetCapacity retrieves seat counters for an event
func (cc *CapacityClient) GetCapacity(ctx context.Context, eventID string) (*models.EventCapacity, error) {
	return cc.store.GetEventCapacity(ctx, eventID)
}
