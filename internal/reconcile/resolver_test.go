package reconcile

import (
	"context"
	"errors"
	"testing"

	"popera/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvedTimestampPrecedence(t *testing.T) {
	tests := []struct {
		name string
		r    models.Reservation
		want int64
	}{
		{
			name: "updated_at wins over everything",
			r: models.Reservation{
				UpdatedAt:  models.MillisTime(300),
				ReservedAt: models.MillisTime(200),
				CreatedAt:  models.MillisTime(100),
			},
			want: 300,
		},
		{
			name: "reserved_at when updated_at absent",
			r: models.Reservation{
				ReservedAt: models.MillisTime(200),
				CreatedAt:  models.MillisTime(100),
			},
			want: 200,
		},
		{
			name: "created_at as last resort",
			r:    models.Reservation{CreatedAt: models.MillisTime(100)},
			want: 100,
		},
		{
			name: "zero when all absent",
			r:    models.Reservation{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolvedTimestamp(tt.r))
		})
	}
}

func TestRankConflictsTieBreakDeterminism(t *testing.T) {
	older := reserved("r-old", "u1", "e1", 0)
	older.UpdatedAt = models.MillisTime(1000)
	newer := reserved("r-new", "u1", "e1", 0)
	newer.UpdatedAt = models.MillisTime(2000)

	// The kept record must not depend on input order.
	for _, in := range [][]models.Reservation{
		{older, newer},
		{newer, older},
	} {
		ranked := rankConflicts(in)
		require.Len(t, ranked, 2)
		assert.Equal(t, "r-new", ranked[0].ID)
		assert.Equal(t, "r-old", ranked[1].ID)
	}
}

func TestRankConflictsFallbackOrdering(t *testing.T) {
	// One record resolves through reserved_at, the other through created_at;
	// the higher resolved value wins regardless of which field supplied it.
	viaReserved := reserved("r-a", "u1", "e1", 100)
	viaCreated := models.Reservation{
		ID:        "r-b",
		UserID:    "u1",
		EventID:   "e1",
		Status:    models.StatusReserved,
		CreatedAt: models.MillisTime(200),
	}

	ranked := rankConflicts([]models.Reservation{viaReserved, viaCreated})
	assert.Equal(t, "r-b", ranked[0].ID)
}

func TestRankConflictsEqualTimestampsBreakByID(t *testing.T) {
	a := reserved("r-a", "u1", "e1", 500)
	b := reserved("r-b", "u1", "e1", 500)

	for _, in := range [][]models.Reservation{
		{a, b},
		{b, a},
	} {
		ranked := rankConflicts(in)
		assert.Equal(t, "r-b", ranked[0].ID)
	}
}

func TestResolveCancelsAllButKept(t *testing.T) {
	fs := newFakeStore(
		reserved("r1", "u1", "e1", 1000),
		reserved("r2", "u1", "e1", 2000),
		reserved("r3", "u1", "e1", 1500),
	)
	resolver := NewResolver(fs)

	conflicting, err := fs.ReservationsByUserAndEvent(context.Background(), "u1", "e1")
	require.NoError(t, err)

	fix, err := resolver.Resolve(context.Background(), "u1", "e1", conflicting)
	require.NoError(t, err)

	assert.Equal(t, "r2", fix.KeptID)
	assert.ElementsMatch(t, []string{"r1", "r3"}, fix.CancelledIDs)
	assert.Empty(t, fix.FailedIDs)
	assert.Equal(t, 3, fix.ActiveBefore)
	assert.Equal(t, 1, fix.ActiveAfter)

	for _, id := range []string{"r1", "r3"} {
		rec := fs.get(id)
		assert.Equal(t, models.StatusCancelled, rec.Status)
		assert.Equal(t, models.CancelledByReconciler, rec.CancelledBy)
		assert.False(t, rec.CancelledAt.IsZero())
	}
	assert.Equal(t, models.StatusReserved, fs.get("r2").Status)
}

func TestResolveBestEffortOnCancelFailure(t *testing.T) {
	fs := newFakeStore(
		reserved("r1", "u1", "e1", 1000),
		reserved("r2", "u1", "e1", 2000),
		reserved("r3", "u1", "e1", 1500),
	)
	fs.cancelErr = map[string]error{"r3": errors.New("write rejected")}
	resolver := NewResolver(fs)

	conflicting, err := fs.ReservationsByUserAndEvent(context.Background(), "u1", "e1")
	require.NoError(t, err)

	fix, err := resolver.Resolve(context.Background(), "u1", "e1", conflicting)
	require.NoError(t, err)

	// The failed update did not block the other cancellation.
	assert.Equal(t, []string{"r1"}, fix.CancelledIDs)
	assert.Equal(t, []string{"r3"}, fix.FailedIDs)
	assert.Equal(t, 2, fix.ActiveAfter)
}
