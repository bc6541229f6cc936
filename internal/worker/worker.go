package worker

import (
	"context"
	"log"

	"popera/internal/broker"
	"popera/internal/models"
	"popera/internal/reconcile"
	"popera/internal/store"
	"popera/internal/util"

	"go.uber.org/zap"
)

// SweepWorker consumes reservation events and runs a read-only consistency
// check on each touched (user, event) pair. Repairs are operator-only; the
// worker reports, it never mutates reservations.
type SweepWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
	reconciler   *reconcile.Reconciler
	logger       *zap.Logger
}

// NewSweepWorker creates a new sweep worker
func NewSweepWorker(
	consumer *broker.Consumer,
	st *store.Store,
	reconciler *reconcile.Reconciler,
) *SweepWorker {
	w := &SweepWorker{
		consumer:   consumer,
		store:      st,
		reconciler: reconciler,
		logger:     util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnReservationCreated(w.handleReservationCreated)
	eventHandler.OnReservationCancelled(w.handleReservationCancelled)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *SweepWorker) Start(ctx context.Context) error {
	log.Println("Starting sweep worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *SweepWorker) Stop() error {
	log.Println("Stopping sweep worker...")
	return w.consumer.Close()
}

func (w *SweepWorker) handleReservationCreated(ctx context.Context, event *models.ReservationCreatedEvent) error {
	return w.checkPair(ctx, event.EventID, event.EventType, event.UserID, event.EventIDRef)
}

func (w *SweepWorker) handleReservationCancelled(ctx context.Context, event *models.ReservationCancelledEvent) error {
	return w.checkPair(ctx, event.EventID, event.EventType, event.UserID, event.EventIDRef)
}

// checkPair runs one deduplicated read-only check for the pair an event touched.
func (w *SweepWorker) checkPair(ctx context.Context, brokerEventID, eventType, userID, eventID string) error {
	processed, err := w.store.IsEventProcessed(ctx, brokerEventID)
	if err != nil {
		return err
	}
	if processed {
		w.logger.Info("Event already processed", zap.String("event_id", brokerEventID))
		return nil
	}

	report, err := w.reconciler.Run(ctx, userID, eventID, false)
	if err != nil {
		return err
	}
	util.SweepChecksTotal.Inc()

	if !report.Go() {
		issues := make([]string, 0, len(report.Anomalies))
		for _, a := range report.Anomalies {
			issues = append(issues, a.Message)
		}
		w.logger.Warn("Sweep detected consistency anomalies",
			zap.String("user_id", userID),
			zap.String("event_id", eventID),
			zap.Strings("issues", issues))
	}

	if err := w.store.MarkEventProcessed(ctx, brokerEventID, eventType); err != nil {
		w.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	return nil
}
