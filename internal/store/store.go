package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"popera/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetEventCapacity retrieves seat counters for an event
func (s *Store) GetEventCapacity(ctx context.Context, eventID string) (*models.EventCapacity, error) {
	var ec models.EventCapacity
	err := s.db.GetContext(ctx, &ec, "SELECT * FROM event_capacity WHERE event_id = $1", eventID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("capacity not found for event: %s", eventID)
	}
	if err != nil {
		return nil, classify(err)
	}
	return &ec, nil
}

// GetEventCapacities retrieves seat counters for all events
func (s *Store) GetEventCapacities(ctx context.Context) ([]models.EventCapacity, error) {
	var caps []models.EventCapacity
	err := s.db.SelectContext(ctx, &caps, "SELECT * FROM event_capacity ORDER BY event_id")
	if err != nil {
		return nil, classify(err)
	}
	return caps, nil
}

// HoldSeatTx takes one seat within a transaction (FOR UPDATE lock)
func (s *Store) HoldSeatTx(ctx context.Context, eventID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var ec models.EventCapacity
	err = tx.GetContext(ctx, &ec,
		"SELECT * FROM event_capacity WHERE event_id = $1 FOR UPDATE", eventID)
	if err != nil {
		return fmt.Errorf("failed to lock capacity: %w", classify(err))
	}

	if ec.Reserved >= ec.Capacity {
		return ErrEventFull
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE event_capacity SET reserved = reserved + 1, updated_at = NOW() WHERE event_id = $1",
		eventID)
	if err != nil {
		return fmt.Errorf("failed to hold seat: %w", classify(err))
	}

	return tx.Commit()
}

// ReleaseSeat returns one seat to the pool
func (s *Store) ReleaseSeat(ctx context.Context, eventID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE event_capacity SET reserved = GREATEST(reserved - 1, 0), updated_at = NOW() WHERE event_id = $1",
		eventID)
	return classify(err)
}

// IsEventProcessed checks if a broker event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, classify(err)
}

// MarkEventProcessed marks a broker event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return classify(err)
}
