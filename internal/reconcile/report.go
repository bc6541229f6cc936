package reconcile

import (
	"fmt"
	"strings"

	"popera/internal/models"
)

// Mode is the run mode reflected in the report.
type Mode string

const (
	ModeReadOnly Mode = "read-only"
	ModeFix      Mode = "fix"
)

// RecordSummary is the diagnostic view of one pair-query record: status plus
// the three normalized timestamps.
type RecordSummary struct {
	ID         string
	Status     string
	ReservedAt int64
	CreatedAt  int64
	UpdatedAt  int64
}

// Report is the structured outcome of a reconciliation run. The decision is
// GO iff the anomaly list is empty.
type Report struct {
	Mode    Mode
	UserID  string
	EventID string

	PairRecords        []RecordSummary
	EventActiveCount   int
	EventDistinctUsers int
	TargetInUserSet    bool

	Anomalies []Anomaly
	Fix       *FixResult

	pairActive []models.Reservation
}

// Go reports the final decision.
func (r *Report) Go() bool {
	return len(r.Anomalies) == 0
}

// Render formats the diagnostic findings followed by the decision block.
func (r *Report) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "== reservation consistency check ==\n")
	fmt.Fprintf(&b, "mode: %s\n", r.Mode)
	fmt.Fprintf(&b, "user: %s  event: %s\n\n", r.UserID, r.EventID)

	fmt.Fprintf(&b, "pair query: %d record(s)\n", len(r.PairRecords))
	for _, rec := range r.PairRecords {
		fmt.Fprintf(&b, "  - id=%s status=%s reservedAt=%s createdAt=%s updatedAt=%s\n",
			rec.ID, rec.Status, millisLabel(rec.ReservedAt), millisLabel(rec.CreatedAt), millisLabel(rec.UpdatedAt))
	}
	fmt.Fprintf(&b, "event-active query: %d active, %d distinct user(s)\n",
		r.EventActiveCount, r.EventDistinctUsers)
	fmt.Fprintf(&b, "user-active query: target event present: %t\n", r.TargetInUserSet)

	if r.Fix != nil {
		fmt.Fprintf(&b, "\nfix: kept=%s cancelled=%d failed=%d active before=%d after=%d\n",
			r.Fix.KeptID, len(r.Fix.CancelledIDs), len(r.Fix.FailedIDs),
			r.Fix.ActiveBefore, r.Fix.ActiveAfter)
		for _, id := range r.Fix.CancelledIDs {
			fmt.Fprintf(&b, "  cancelled: %s\n", id)
		}
		for _, id := range r.Fix.FailedIDs {
			fmt.Fprintf(&b, "  failed to cancel: %s\n", id)
		}
	}

	fmt.Fprintf(&b, "\n== decision ==\n")
	if r.Go() {
		fmt.Fprintf(&b, "GO: no anomalies detected\n")
	} else {
		fmt.Fprintf(&b, "NO-GO: %d issue(s)\n", len(r.Anomalies))
		for _, a := range r.Anomalies {
			fmt.Fprintf(&b, "  - [%s] %s\n", a.Kind, a.Message)
		}
	}

	return b.String()
}

func millisLabel(ms int64) string {
	if ms == 0 {
		return "absent"
	}
	return fmt.Sprintf("%d", ms)
}

// summarize builds the diagnostic summaries for the pair-query records.
func summarize(records []models.Reservation) []RecordSummary {
	summaries := make([]RecordSummary, 0, len(records))
	for i := range records {
		r := &records[i]
		summaries = append(summaries, RecordSummary{
			ID:         r.ID,
			Status:     r.NormalizedStatus(),
			ReservedAt: r.ReservedAt.Millis(),
			CreatedAt:  r.CreatedAt.Millis(),
			UpdatedAt:  r.UpdatedAt.Millis(),
		})
	}
	return summaries
}

// dropAnomalies removes every anomaly of the given kind, preserving order.
func (r *Report) dropAnomalies(kind AnomalyKind) {
	kept := r.Anomalies[:0]
	for _, a := range r.Anomalies {
		if a.Kind != kind {
			kept = append(kept, a)
		}
	}
	r.Anomalies = kept
}
