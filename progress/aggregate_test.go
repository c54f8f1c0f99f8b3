package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAggregatorNormalizesWeights(t *testing.T) {
	a := NewAggregator(60, 20, 100)
	assert.InDelta(t, 75, a.SessionWeight, 0.001)
	assert.InDelta(t, 25, a.AssignmentWeight, 0.001)

	a = NewAggregator(0, 50, 100)
	assert.InDelta(t, 100, a.SessionWeight, 0.001)
	assert.InDelta(t, 0, a.AssignmentWeight, 0.001)

	a = NewAggregator(70, 30, 0)
	assert.InDelta(t, 100, a.CompletionThreshold, 0.001)
	a = NewAggregator(70, 30, 150)
	assert.InDelta(t, 100, a.CompletionThreshold, 0.001)
}

func TestRecomputeSessionsOnly(t *testing.T) {
	catalog := sequentialCatalog(t, 3)
	a := NewAggregator(70, 30, 100)
	now := time.Now()

	rec := &Record{EnrollmentID: 1}
	completeSession(rec, 1, now)

	// No assignment gates, so sessions carry the full weight
	agg := a.Recompute(rec, catalog)
	assert.Equal(t, 1, agg.TotalSessionsCompleted)
	assert.InDelta(t, 100.0/3, agg.CompletionPercentage, 0.01)
	assert.False(t, agg.IsCompleted)

	completeSession(rec, 2, now)
	completeSession(rec, 3, now)
	agg = a.Recompute(rec, catalog)
	assert.InDelta(t, 100, agg.CompletionPercentage, 0.001)
	assert.True(t, agg.IsCompleted)
}

func TestRecomputeWithAssignmentWeight(t *testing.T) {
	defs := []SessionDefinition{
		{SessionNumber: 1},
		{SessionNumber: 2, Rules: UnlockRules{RequiresAssignment: true, UnlockAssignmentID: 3}},
	}
	catalog, err := NewCatalog(defs)
	require.NoError(t, err)

	a := NewAggregator(70, 30, 100)
	now := time.Now()

	rec := &Record{EnrollmentID: 1}
	completeSession(rec, 1, now)
	completeSession(rec, 2, now)

	// Both sessions done, assignment pending: 70% of the weight
	agg := a.Recompute(rec, catalog)
	assert.InDelta(t, 70, agg.CompletionPercentage, 0.001)
	assert.False(t, agg.IsCompleted)

	rec.AssignmentsSubmitted = []AssignmentSubmission{
		{AssignmentID: 3, Status: SubmissionApproved, SubmittedDate: now},
	}
	agg = a.Recompute(rec, catalog)
	assert.InDelta(t, 100, agg.CompletionPercentage, 0.001)
	assert.True(t, agg.IsCompleted)
}

func TestRecomputeCountsApprovedAssignmentsOnce(t *testing.T) {
	defs := []SessionDefinition{
		{SessionNumber: 1, Rules: UnlockRules{RequiresAssignment: true, UnlockAssignmentID: 3}},
	}
	catalog, err := NewCatalog(defs)
	require.NoError(t, err)

	a := NewAggregator(50, 50, 100)
	now := time.Now()

	rec := &Record{EnrollmentID: 1}
	rec.AssignmentsSubmitted = []AssignmentSubmission{
		{AssignmentID: 3, Status: SubmissionApproved, SubmittedDate: now},
		{AssignmentID: 3, Status: SubmissionApproved, SubmittedDate: now.Add(time.Hour)},
	}

	agg := a.Recompute(rec, catalog)
	assert.Equal(t, 1, agg.TotalAssignmentsCompleted)
	assert.InDelta(t, 50, agg.CompletionPercentage, 0.001)
}

func TestRecomputeIgnoresUngatedApprovals(t *testing.T) {
	defs := []SessionDefinition{
		{SessionNumber: 1},
		{SessionNumber: 2, Rules: UnlockRules{RequiresAssignment: true, UnlockAssignmentID: 5}},
	}
	catalog, err := NewCatalog(defs)
	require.NoError(t, err)

	a := NewAggregator(70, 30, 100)
	now := time.Now()

	rec := &Record{EnrollmentID: 1}
	completeSession(rec, 1, now)
	completeSession(rec, 2, now)

	// Assignment 9 has no gate in the catalog: its approval must not close
	// the assignment term while assignment 5 is still pending
	rec.AssignmentsSubmitted = []AssignmentSubmission{
		{AssignmentID: 9, Status: SubmissionApproved, SubmittedDate: now},
	}
	agg := a.Recompute(rec, catalog)
	assert.InDelta(t, 70, agg.CompletionPercentage, 0.001)
	assert.False(t, agg.IsCompleted)

	rec.AssignmentsSubmitted = append(rec.AssignmentsSubmitted,
		AssignmentSubmission{AssignmentID: 5, Status: SubmissionApproved, SubmittedDate: now})
	agg = a.Recompute(rec, catalog)
	assert.InDelta(t, 100, agg.CompletionPercentage, 0.001)
	assert.True(t, agg.IsCompleted)
}

func TestRecomputeAnyGateSatisfiedByAnyApproval(t *testing.T) {
	defs := []SessionDefinition{
		{SessionNumber: 1},
		{SessionNumber: 2, Rules: UnlockRules{RequiresAssignment: true}},
	}
	catalog, err := NewCatalog(defs)
	require.NoError(t, err)

	a := NewAggregator(70, 30, 100)
	now := time.Now()

	rec := &Record{EnrollmentID: 1}
	completeSession(rec, 1, now)
	completeSession(rec, 2, now)

	agg := a.Recompute(rec, catalog)
	assert.InDelta(t, 70, agg.CompletionPercentage, 0.001)

	// An any-submission gate accepts whichever assignment got approved,
	// matching the unlock evaluator
	rec.AssignmentsSubmitted = []AssignmentSubmission{
		{AssignmentID: 42, Status: SubmissionApproved, SubmittedDate: now},
	}
	agg = a.Recompute(rec, catalog)
	assert.InDelta(t, 100, agg.CompletionPercentage, 0.001)
	assert.True(t, agg.IsCompleted)
}

func TestApplyKeepsPercentageMonotone(t *testing.T) {
	catalog := sequentialCatalog(t, 2)
	a := NewAggregator(70, 30, 100)
	now := time.Now()

	rec := &Record{EnrollmentID: 1, CompletionPercentage: 80}
	completeSession(rec, 1, now)

	// Recomputation yields 50%, below the stored 80%: keep the stored value
	a.Apply(rec, catalog, now)
	assert.InDelta(t, 80, rec.CompletionPercentage, 0.001)
	assert.Equal(t, 1, rec.TotalSessionsCompleted)
}

func TestApplySetsCompletionOnce(t *testing.T) {
	catalog := sequentialCatalog(t, 1)
	a := NewAggregator(100, 0, 100)
	now := time.Now()

	rec := &Record{EnrollmentID: 1}
	completeSession(rec, 1, now)

	a.Apply(rec, catalog, now)
	require.True(t, rec.IsCompleted)
	require.NotNil(t, rec.CompletionDate)
	firstCompletion := *rec.CompletionDate

	a.Apply(rec, catalog, now.Add(time.Hour))
	assert.True(t, rec.IsCompleted)
	assert.Equal(t, firstCompletion, *rec.CompletionDate)
}

func TestPartialCompletionThreshold(t *testing.T) {
	catalog := sequentialCatalog(t, 4)
	a := NewAggregator(100, 0, 75)
	now := time.Now()

	rec := &Record{EnrollmentID: 1}
	completeSession(rec, 1, now)
	completeSession(rec, 2, now)

	a.Apply(rec, catalog, now)
	assert.False(t, rec.IsCompleted)

	completeSession(rec, 3, now)
	a.Apply(rec, catalog, now)
	assert.True(t, rec.IsCompleted)
	assert.InDelta(t, 75, rec.CompletionPercentage, 0.001)
}
