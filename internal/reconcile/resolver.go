package reconcile

import (
	"context"
	"fmt"
	"sort"

	"popera/internal/models"
	"popera/internal/util"

	"go.uber.org/zap"
)

// Resolver collapses duplicate active reservations for one pair down to
// exactly one, keeping the most recent record.
type Resolver struct {
	store  ReservationStore
	logger *zap.Logger
}

// NewResolver creates a new duplicate resolver.
func NewResolver(st ReservationStore) *Resolver {
	return &Resolver{
		store:  st,
		logger: util.GetLogger(),
	}
}

// FixResult is the evidence a fix produced: what was kept, what was
// cancelled, and the pair's active count before and after.
type FixResult struct {
	KeptID       string
	CancelledIDs []string
	FailedIDs    []string
	ActiveBefore int
	ActiveAfter  int

	after []models.Reservation
}

// resolvedTimestamp derives the comparison value for a record:
// updated_at, then reserved_at, then created_at, all normalized to
// milliseconds; 0 when every field is absent.
func resolvedTimestamp(r models.Reservation) int64 {
	if ms := r.UpdatedAt.Millis(); ms != 0 {
		return ms
	}
	if ms := r.ReservedAt.Millis(); ms != 0 {
		return ms
	}
	return r.CreatedAt.Millis()
}

// rankConflicts orders conflicting records most-recent first. Equal resolved
// timestamps fall back to record id descending so the outcome never depends
// on store result order, which the store does not guarantee.
func rankConflicts(records []models.Reservation) []models.Reservation {
	ranked := make([]models.Reservation, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		ti, tj := resolvedTimestamp(ranked[i]), resolvedTimestamp(ranked[j])
		if ti != tj {
			return ti > tj
		}
		return ranked[i].ID > ranked[j].ID
	})
	return ranked
}

// Resolve keeps the most recent of the conflicting active records and
// cancels the rest, best-effort and sequentially, then re-reads the pair to
// verify the fix. Cancellations are marked as reconciler-initiated.
func (rv *Resolver) Resolve(ctx context.Context, userID, eventID string, conflicting []models.Reservation) (*FixResult, error) {
	ctx, span := util.StartSpan(ctx, "Resolver.Resolve")
	defer span.End()

	if len(conflicting) == 0 {
		return &FixResult{}, nil
	}

	ranked := rankConflicts(conflicting)
	keep := ranked[0]

	fix := &FixResult{
		KeptID:       keep.ID,
		ActiveBefore: len(conflicting),
	}

	rv.logger.Info("Resolving duplicate active reservations",
		zap.String("user_id", userID),
		zap.String("event_id", eventID),
		zap.String("kept_id", keep.ID),
		zap.Int("conflicting", len(conflicting)))

	for _, r := range ranked[1:] {
		if err := rv.store.CancelReservation(ctx, r.ID, models.CancelledByReconciler); err != nil {
			rv.logger.Error("Failed to cancel duplicate reservation",
				zap.String("reservation_id", r.ID),
				zap.Error(err))
			fix.FailedIDs = append(fix.FailedIDs, r.ID)
			continue
		}
		util.ReconcileCancellationsTotal.Inc()
		fix.CancelledIDs = append(fix.CancelledIDs, r.ID)
	}

	after, err := rv.store.ReservationsByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return fix, fmt.Errorf("post-fix verification: %w", err)
	}
	fix.after = after
	fix.ActiveAfter = len(activeRecords(after))

	return fix, nil
}
