package store

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrPermissionDenied marks reads rejected by the database's access
	// control. Callers isolate these per query instead of aborting.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrEventFull is returned when an event has no seats left.
	ErrEventFull = errors.New("event is full")
)

// insufficient_privilege
const sqlstatePermissionDenied = "42501"

// classify wraps known SQLSTATE classes into sentinel errors so callers can
// use errors.Is. Other errors pass through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == sqlstatePermissionDenied {
		return fmt.Errorf("%s: %w", pqErr.Message, ErrPermissionDenied)
	}
	return err
}
