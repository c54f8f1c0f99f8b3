package progress

import (
	"log"
	"time"
)

// Aggregator derives the completion counters and weighted percentage from a
// record's session and assignment history. Weights sum to 100; when the
// catalog has no assignment gates, sessions carry the full weight.
type Aggregator struct {
	SessionWeight       float64
	AssignmentWeight    float64
	CompletionThreshold float64
}

// NewAggregator normalizes the configuration. Non-positive weights fall back
// to sessions-only; a non-positive threshold falls back to 100.
func NewAggregator(sessionWeight, assignmentWeight, threshold float64) Aggregator {
	if sessionWeight <= 0 {
		sessionWeight, assignmentWeight = 100, 0
	}
	if assignmentWeight < 0 {
		assignmentWeight = 0
	}
	if total := sessionWeight + assignmentWeight; total != 100 {
		sessionWeight = sessionWeight / total * 100
		assignmentWeight = assignmentWeight / total * 100
	}
	if threshold <= 0 || threshold > 100 {
		threshold = 100
	}
	return Aggregator{
		SessionWeight:       sessionWeight,
		AssignmentWeight:    assignmentWeight,
		CompletionThreshold: threshold,
	}
}

// Aggregates is the derived slice of a record.
type Aggregates struct {
	TotalSessionsCompleted    int
	TotalAssignmentsCompleted int
	CompletionPercentage      float64
	IsCompleted               bool
}

// Recompute derives the aggregates without touching the record.
func (a Aggregator) Recompute(rec *Record, catalog Catalog) Aggregates {
	completedSessions := 0
	for _, sp := range rec.SessionsCompleted {
		if sp.IsCompleted {
			completedSessions++
		}
	}

	// Distinct approved assignments; a rejected-then-approved resubmission
	// must not count twice.
	approvedIDs := make(map[uint]bool)
	for _, sub := range rec.AssignmentsSubmitted {
		if sub.Status == SubmissionApproved {
			approvedIDs[sub.AssignmentID] = true
		}
	}

	// Only approvals that satisfy a catalog gate count toward the
	// percentage, mirroring the unlock evaluator: an approved submission
	// for an ungated assignment must not close the assignment term while a
	// gated assignment is still pending.
	gateIDs, anyGates := catalog.assignmentGates()
	satisfied := 0
	for id := range gateIDs {
		if approvedIDs[id] {
			satisfied++
		}
	}
	if anyGates > 0 && len(approvedIDs) > 0 {
		satisfied += anyGates
	}

	totalAssignments := len(gateIDs) + anyGates
	sw, aw := a.SessionWeight, a.AssignmentWeight
	if totalAssignments == 0 {
		sw, aw = sw+aw, 0
	}

	pct := 0.0
	if len(catalog) > 0 {
		pct += float64(completedSessions) / float64(len(catalog)) * sw
	}
	if totalAssignments > 0 {
		pct += float64(satisfied) / float64(totalAssignments) * aw
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	return Aggregates{
		TotalSessionsCompleted:    completedSessions,
		TotalAssignmentsCompleted: len(approvedIDs),
		CompletionPercentage:      pct,
		IsCompleted:               pct >= a.CompletionThreshold,
	}
}

// Apply recomputes and writes the aggregates onto the record, enforcing the
// monotonicity invariant: the stored percentage and completion flag never
// regress. A recomputation below the stored value is logged and discarded.
func (a Aggregator) Apply(rec *Record, catalog Catalog, now time.Time) {
	agg := a.Recompute(rec, catalog)

	if agg.CompletionPercentage < rec.CompletionPercentage {
		log.Printf("[PROGRESS] enrollment %d: recomputed completion %.2f%% below stored %.2f%%, keeping stored value",
			rec.EnrollmentID, agg.CompletionPercentage, rec.CompletionPercentage)
		agg.CompletionPercentage = rec.CompletionPercentage
	}

	rec.TotalSessionsCompleted = agg.TotalSessionsCompleted
	rec.TotalAssignmentsCompleted = agg.TotalAssignmentsCompleted
	rec.CompletionPercentage = agg.CompletionPercentage

	if !rec.IsCompleted && agg.CompletionPercentage >= a.CompletionThreshold {
		rec.IsCompleted = true
		completedAt := now
		rec.CompletionDate = &completedAt
	}
}
