package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"popera/internal/models"
	"popera/internal/store"
)

func permissionErr() error {
	return fmt.Errorf("query rejected: %w", store.ErrPermissionDenied)
}

// fakeStore is an in-memory ReservationStore for tests. Query errors can be
// injected per query shape, and event ids can be hidden from the user-active
// query to simulate a malformed record.
type fakeStore struct {
	mu      sync.Mutex
	records []models.Reservation

	pairErr  error
	eventErr error
	userErr  error

	hideFromUserActive map[string]bool
	cancelErr          map[string]error
	cancelled          []string
}

func newFakeStore(records ...models.Reservation) *fakeStore {
	return &fakeStore{records: records}
}

func (f *fakeStore) ReservationsByUserAndEvent(_ context.Context, userID, eventID string) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pairErr != nil {
		return nil, f.pairErr
	}
	var out []models.Reservation
	for _, r := range f.records {
		if r.UserID == userID && r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ActiveReservationsByEvent(_ context.Context, eventID string) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	var out []models.Reservation
	for _, r := range f.records {
		if r.EventID == eventID && r.Status == models.StatusReserved {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ActiveReservationsByUser(_ context.Context, userID string) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.userErr != nil {
		return nil, f.userErr
	}
	var out []models.Reservation
	for _, r := range f.records {
		if r.UserID == userID && r.Status == models.StatusReserved && !f.hideFromUserActive[r.EventID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) CancelReservation(_ context.Context, id, cancelledBy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.cancelErr[id]; err != nil {
		return err
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].Status = models.StatusCancelled
			f.records[i].CancelledAt = models.MillisTime(time.Now().UnixMilli())
			f.records[i].CancelledBy = cancelledBy
			f.records[i].UpdatedAt = models.MillisTime(time.Now().UnixMilli())
		}
	}
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakeStore) get(id string) models.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id {
			return r
		}
	}
	return models.Reservation{}
}
