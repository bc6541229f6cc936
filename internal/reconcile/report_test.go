package reconcile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportGoDecision(t *testing.T) {
	r := &Report{Mode: ModeReadOnly}
	assert.True(t, r.Go())

	r.Anomalies = append(r.Anomalies, Anomaly{Kind: AnomalyDuplicateActive, Message: "x"})
	assert.False(t, r.Go())
}

func TestRenderGoBlock(t *testing.T) {
	r := &Report{
		Mode:               ModeReadOnly,
		UserID:             "u1",
		EventID:            "e1",
		PairRecords:        []RecordSummary{{ID: "r1", Status: "reserved", ReservedAt: 1000}},
		EventActiveCount:   1,
		EventDistinctUsers: 1,
		TargetInUserSet:    true,
	}

	out := r.Render()
	assert.Contains(t, out, "mode: read-only")
	assert.Contains(t, out, "pair query: 1 record(s)")
	assert.Contains(t, out, "reservedAt=1000")
	assert.Contains(t, out, "createdAt=absent")
	assert.Contains(t, out, "target event present: true")
	assert.Contains(t, out, "GO: no anomalies detected")
	assert.NotContains(t, out, "NO-GO")
}

func TestRenderNoGoListsIssuesInOrder(t *testing.T) {
	r := &Report{
		Mode:    ModeFix,
		UserID:  "u1",
		EventID: "e1",
		Anomalies: []Anomaly{
			{Kind: AnomalyPermission, Message: "permission denied reading event active reservations"},
			{Kind: AnomalyDuplicateActive, Message: "2 active reservations"},
		},
		Fix: &FixResult{
			KeptID:       "r2",
			CancelledIDs: []string{"r1"},
			ActiveBefore: 2,
			ActiveAfter:  1,
		},
	}

	out := r.Render()
	assert.Contains(t, out, "mode: fix")
	assert.Contains(t, out, "NO-GO: 2 issue(s)")
	assert.Contains(t, out, "fix: kept=r2 cancelled=1 failed=0 active before=2 after=1")

	// Findings always precede the decision block.
	assert.Less(t, strings.Index(out, "fix: kept"), strings.Index(out, "== decision =="))
	assert.Less(t, strings.Index(out, "permission denied"), strings.Index(out, "2 active reservations"))
}

func TestDropAnomaliesPreservesOthers(t *testing.T) {
	r := &Report{
		Anomalies: []Anomaly{
			{Kind: AnomalyPermission, Message: "p"},
			{Kind: AnomalyDuplicateActive, Message: "d"},
			{Kind: AnomalyVisibilityMismatch, Message: "v"},
		},
	}

	r.dropAnomalies(AnomalyDuplicateActive)

	assert.Equal(t, []Anomaly{
		{Kind: AnomalyPermission, Message: "p"},
		{Kind: AnomalyVisibilityMismatch, Message: "v"},
	}, r.Anomalies)
}
