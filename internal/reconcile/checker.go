package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"popera/internal/models"
	"popera/internal/store"
	"popera/internal/util"

	"go.uber.org/zap"
)

// Checker cross-validates the store's reservation data for one (user, event)
// pair without mutating anything.
type Checker struct {
	store        ReservationStore
	queryTimeout time.Duration
	logger       *zap.Logger
}

// NewChecker creates a new consistency checker. A zero queryTimeout disables
// per-query deadlines.
func NewChecker(st ReservationStore, queryTimeout time.Duration) *Checker {
	return &Checker{
		store:        st,
		queryTimeout: queryTimeout,
		logger:       util.GetLogger(),
	}
}

// queryResult is one read's contribution: its records, or the isolated
// failure that stands in for them.
type queryResult struct {
	records []models.Reservation
	failure *Anomaly
}

// Check runs the three verification reads and reconciles their result sets.
// Permission-denied and timed-out reads are recorded as anomalies and treated
// as empty; any other read error aborts the run.
func (c *Checker) Check(ctx context.Context, userID, eventID string) (*Report, error) {
	ctx, span := util.StartSpan(ctx, "Checker.Check")
	defer span.End()

	pair, err := c.read(ctx, "pair reservations", func(ctx context.Context) ([]models.Reservation, error) {
		return c.store.ReservationsByUserAndEvent(ctx, userID, eventID)
	})
	if err != nil {
		return nil, err
	}

	eventActive, err := c.read(ctx, "event active reservations", func(ctx context.Context) ([]models.Reservation, error) {
		return c.store.ActiveReservationsByEvent(ctx, eventID)
	})
	if err != nil {
		return nil, err
	}

	userActive, err := c.read(ctx, "user active reservations", func(ctx context.Context) ([]models.Reservation, error) {
		return c.store.ActiveReservationsByUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	report := &Report{
		Mode:               ModeReadOnly,
		UserID:             userID,
		EventID:            eventID,
		PairRecords:        summarize(pair.records),
		EventActiveCount:   len(eventActive.records),
		EventDistinctUsers: distinctUsers(eventActive.records),
		TargetInUserSet:    containsEvent(userActive.records, eventID),
		Anomalies:          reconcile(userID, eventID, pair, eventActive, userActive),
		pairActive:         activeRecords(pair.records),
	}

	c.logger.Info("Consistency check completed",
		zap.String("user_id", userID),
		zap.String("event_id", eventID),
		zap.Int("pair_records", len(pair.records)),
		zap.Int("event_active", report.EventActiveCount),
		zap.Int("anomalies", len(report.Anomalies)))

	return report, nil
}

// read runs one store query under the per-query timeout, isolating
// permission and timeout failures per the failure-handling contract.
func (c *Checker) read(ctx context.Context, label string, fn func(context.Context) ([]models.Reservation, error)) (queryResult, error) {
	qctx := ctx
	if c.queryTimeout > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(ctx, c.queryTimeout)
		defer cancel()
	}

	records, err := fn(qctx)
	if err == nil {
		return queryResult{records: records}, nil
	}

	if errors.Is(err, store.ErrPermissionDenied) {
		c.logger.Warn("Permission denied, continuing with empty result",
			zap.String("query", label), zap.Error(err))
		return queryResult{failure: &Anomaly{
			Kind:    AnomalyPermission,
			Message: fmt.Sprintf("permission denied reading %s", label),
		}}, nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		c.logger.Warn("Query timed out, continuing with empty result",
			zap.String("query", label), zap.Error(err))
		return queryResult{failure: &Anomaly{
			Kind:    AnomalyTimeout,
			Message: fmt.Sprintf("timed out reading %s", label),
		}}, nil
	}

	return queryResult{}, fmt.Errorf("reading %s: %w", label, err)
}

// reconcile cross-validates the three immutable result sets and returns the
// ordered anomaly list: query failures first in query order, then
// data-consistency anomalies. Pure function, no I/O.
func reconcile(userID, eventID string, pair, eventActive, userActive queryResult) []Anomaly {
	var anomalies []Anomaly

	for _, q := range []queryResult{pair, eventActive, userActive} {
		if q.failure != nil {
			anomalies = append(anomalies, *q.failure)
		}
	}

	if active := activeRecords(pair.records); len(active) > 1 {
		anomalies = append(anomalies, Anomaly{
			Kind: AnomalyDuplicateActive,
			Message: fmt.Sprintf("%d active reservations for user %s on event %s, expected at most 1",
				len(active), userID, eventID),
		})
	}

	// The event-active and user-active queries must agree about this user
	// holding a seat on this event.
	userHoldsTarget := false
	for i := range eventActive.records {
		if eventActive.records[i].UserID == userID {
			userHoldsTarget = true
			break
		}
	}
	if userHoldsTarget && !containsEvent(userActive.records, eventID) {
		anomalies = append(anomalies, Anomaly{
			Kind: AnomalyVisibilityMismatch,
			Message: fmt.Sprintf("event %s has an active reservation for user %s but is missing from the user's active set",
				eventID, userID),
		})
	}

	return anomalies
}

func activeRecords(records []models.Reservation) []models.Reservation {
	var active []models.Reservation
	for i := range records {
		if records[i].Active() {
			active = append(active, records[i])
		}
	}
	return active
}

func distinctUsers(records []models.Reservation) int {
	users := make(map[string]struct{}, len(records))
	for i := range records {
		users[records[i].UserID] = struct{}{}
	}
	return len(users)
}

func containsEvent(records []models.Reservation, eventID string) bool {
	for i := range records {
		if records[i].EventID == eventID {
			return true
		}
	}
	return false
}
