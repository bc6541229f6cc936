package reconcile

import (
	"context"
	"fmt"
	"time"

	"popera/internal/util"

	"go.uber.org/zap"
)

// Reconciler runs the full check / fix / re-verify flow for one pair.
type Reconciler struct {
	checker  *Checker
	resolver *Resolver
	logger   *zap.Logger
}

// New creates a reconciler over the given store. A zero queryTimeout
// disables per-query deadlines.
func New(st ReservationStore, queryTimeout time.Duration) *Reconciler {
	return &Reconciler{
		checker:  NewChecker(st, queryTimeout),
		resolver: NewResolver(st),
		logger:   util.GetLogger(),
	}
}

// Run checks the pair, repairs duplicate active reservations when fix mode is
// on, and returns the report reflecting the post-fix state. Data anomalies
// never produce an error; only infrastructure failures do.
func (rc *Reconciler) Run(ctx context.Context, userID, eventID string, fix bool) (*Report, error) {
	ctx, span := util.StartSpan(ctx, "Reconciler.Run")
	defer span.End()

	if userID == "" || eventID == "" {
		return nil, fmt.Errorf("both userID and eventID are required")
	}

	report, err := rc.checker.Check(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if fix {
		report.Mode = ModeFix
	}

	if fix && len(report.pairActive) > 1 {
		fixResult, err := rc.resolver.Resolve(ctx, userID, eventID, report.pairActive)
		if err != nil {
			return nil, err
		}
		report.Fix = fixResult

		// The report reflects the pair's post-fix state; the event-active and
		// user-active reads are not re-validated.
		report.PairRecords = summarize(fixResult.after)
		report.dropAnomalies(AnomalyDuplicateActive)
		if fixResult.ActiveAfter > 1 {
			report.Anomalies = append(report.Anomalies, Anomaly{
				Kind: AnomalyDuplicateActive,
				Message: fmt.Sprintf("%d active reservations remain for user %s on event %s after fix",
					fixResult.ActiveAfter, userID, eventID),
			})
		}
	}

	decision := "go"
	if !report.Go() {
		decision = "no-go"
	}
	util.ReconcileRunsTotal.WithLabelValues(string(report.Mode), decision).Inc()
	for _, a := range report.Anomalies {
		util.ReconcileAnomaliesTotal.WithLabelValues(string(a.Kind)).Inc()
	}

	rc.logger.Info("Reconciliation run finished",
		zap.String("user_id", userID),
		zap.String("event_id", eventID),
		zap.String("mode", string(report.Mode)),
		zap.Bool("go", report.Go()))

	return report, nil
}
