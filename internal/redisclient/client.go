package redisclient

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/hold_seat.lua
var holdSeatScript string

//go:embed scripts/release_seat.lua
var releaseSeatScript string

type Client struct {
	rdb           *redis.Client
	holdScript    *redis.Script
	releaseScript *redis.Script
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:           rdb,
		holdScript:    redis.NewScript(holdSeatScript),
		releaseScript: redis.NewScript(releaseSeatScript),
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func eventKey(eventID string) string {
	return fmt.Sprintf("event:%s", eventID)
}

// HoldSeat atomically takes one seat for an event using a Lua script.
// Returns true if a seat was taken, false if the event is full. An unknown
// event (counters never synced) is an error so callers can fall back to the
// database path.
func (c *Client) HoldSeat(ctx context.Context, eventID string) (bool, error) {
	result, err := c.holdScript.Run(ctx, c.rdb, []string{eventKey(eventID)}).Result()
	if err != nil {
		return false, fmt.Errorf("hold seat script failed: %w", err)
	}

	outcome, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected script result type")
	}
	if outcome < 0 {
		return false, fmt.Errorf("no seat counters for event %s", eventID)
	}

	return outcome == 1, nil
}

// ReleaseSeat atomically returns one seat to the pool (compensation)
func (c *Client) ReleaseSeat(ctx context.Context, eventID string) error {
	_, err := c.releaseScript.Run(ctx, c.rdb, []string{eventKey(eventID)}).Result()
	if err != nil {
		return fmt.Errorf("release seat script failed: %w", err)
	}

	return nil
}

// InitEventSeats initializes seat counters for an event in Redis
func (c *Client) InitEventSeats(ctx context.Context, eventID string, capacity, reserved int) error {
	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, eventKey(eventID), "capacity", capacity)
	pipe.HSet(ctx, eventKey(eventID), "reserved", reserved)

	_, err := pipe.Exec(ctx)
	return err
}

// GetEventSeats retrieves current seat counters for an event
func (c *Client) GetEventSeats(ctx context.Context, eventID string) (capacity, reserved int, err error) {
	result, err := c.rdb.HGetAll(ctx, eventKey(eventID)).Result()
	if err != nil {
		return 0, 0, err
	}

	if len(result) == 0 {
		return 0, 0, fmt.Errorf("seat counters not found for event %s", eventID)
	}

	var capInt, resInt int
	fmt.Sscanf(result["capacity"], "%d", &capInt)
	fmt.Sscanf(result["reserved"], "%d", &resInt)

	return capInt, resInt, nil
}

// AcquireLock acquires a distributed lock
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), "1", ttl).Result()
}

// ReleaseLock releases a distributed lock
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:%s", lockKey)).Err()
}
