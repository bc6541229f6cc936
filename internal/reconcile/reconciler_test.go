package reconcile

import (
	"context"
	"testing"

	"popera/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRequiresBothIdentifiers(t *testing.T) {
	rc := New(newFakeStore(), 0)

	_, err := rc.Run(context.Background(), "", "e1", false)
	assert.Error(t, err)

	_, err = rc.Run(context.Background(), "u1", "", false)
	assert.Error(t, err)
}

func TestRunReadOnlyNeverMutates(t *testing.T) {
	fs := newFakeStore(
		reserved("r1", "u1", "e1", 1000),
		reserved("r2", "u1", "e1", 2000),
	)
	rc := New(fs, 0)

	report, err := rc.Run(context.Background(), "u1", "e1", false)
	require.NoError(t, err)

	assert.Equal(t, ModeReadOnly, report.Mode)
	assert.False(t, report.Go())
	assert.Nil(t, report.Fix)
	assert.Empty(t, fs.cancelled)
}

func TestRunFixEndToEnd(t *testing.T) {
	fs := newFakeStore(
		reserved("r-a", "u1", "e1", 1000),
		reserved("r-b", "u1", "e1", 2000),
	)
	rc := New(fs, 0)

	report, err := rc.Run(context.Background(), "u1", "e1", true)
	require.NoError(t, err)

	assert.Equal(t, ModeFix, report.Mode)
	require.NotNil(t, report.Fix)
	assert.Equal(t, "r-b", report.Fix.KeptID)
	assert.Equal(t, []string{"r-a"}, report.Fix.CancelledIDs)
	assert.Equal(t, 2, report.Fix.ActiveBefore)
	assert.Equal(t, 1, report.Fix.ActiveAfter)

	// The losing record is cancelled with the cancellation time stamped.
	cancelled := fs.get("r-a")
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.False(t, cancelled.CancelledAt.IsZero())
	assert.Equal(t, models.StatusReserved, fs.get("r-b").Status)

	// The duplicate anomaly no longer appears in the post-fix report.
	assert.True(t, report.Go())
	assert.Len(t, report.PairRecords, 2)
}

func TestRunFixIsIdempotent(t *testing.T) {
	fs := newFakeStore(
		reserved("r-a", "u1", "e1", 1000),
		reserved("r-b", "u1", "e1", 2000),
	)
	rc := New(fs, 0)

	_, err := rc.Run(context.Background(), "u1", "e1", true)
	require.NoError(t, err)
	require.Len(t, fs.cancelled, 1)

	// A second run over the already-repaired pair cancels nothing.
	report, err := rc.Run(context.Background(), "u1", "e1", true)
	require.NoError(t, err)

	assert.True(t, report.Go())
	assert.Nil(t, report.Fix)
	assert.Len(t, fs.cancelled, 1)
}

func TestRunFixSkipsWhenPairReadDenied(t *testing.T) {
	fs := newFakeStore(
		reserved("r-a", "u1", "e1", 1000),
		reserved("r-b", "u1", "e1", 2000),
	)
	fs.pairErr = permissionErr()
	rc := New(fs, 0)

	report, err := rc.Run(context.Background(), "u1", "e1", true)
	require.NoError(t, err)

	// Without pair visibility there is nothing to resolve.
	assert.Nil(t, report.Fix)
	assert.Empty(t, fs.cancelled)
	assert.False(t, report.Go())
}
