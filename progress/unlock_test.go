package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialCatalog(t *testing.T, n int) Catalog {
	t.Helper()
	defs := make([]SessionDefinition, n)
	for i := range defs {
		defs[i] = SessionDefinition{
			SessionNumber: i + 1,
			Rules:         UnlockRules{RequiresPreviousCompletion: true},
		}
	}
	c, err := NewCatalog(defs)
	require.NoError(t, err)
	return c
}

func completeSession(rec *Record, n int, at time.Time) {
	sp := rec.ensureSession(n)
	sp.IsWatched = true
	sp.IsCompleted = true
	completedAt := at
	sp.CompletedDate = &completedAt
}

func TestSessionOneAlwaysUnlocked(t *testing.T) {
	catalog := sequentialCatalog(t, 3)
	rec := &Record{EnrollmentID: 1}

	unlocked := ComputeUnlockedSessions(catalog, rec, time.Now())
	assert.Equal(t, []int{1}, unlocked)
}

func TestSequentialGating(t *testing.T) {
	catalog := sequentialCatalog(t, 4)
	now := time.Now()

	rec := &Record{EnrollmentID: 1}
	completeSession(rec, 1, now)
	assert.Equal(t, []int{1, 2}, ComputeUnlockedSessions(catalog, rec, now))

	// Completing session 3 out of order must not unlock session 4 while
	// session 2 is still open
	completeSession(rec, 3, now)
	assert.Equal(t, []int{1, 2}, ComputeUnlockedSessions(catalog, rec, now))

	completeSession(rec, 2, now)
	assert.Equal(t, []int{1, 2, 3, 4}, ComputeUnlockedSessions(catalog, rec, now))
}

func TestTimeGapRule(t *testing.T) {
	defs := []SessionDefinition{
		{SessionNumber: 1},
		{SessionNumber: 2, Rules: UnlockRules{RequiresPreviousCompletion: true, TimeGapAfterPreviousHours: 24}},
	}
	catalog, err := NewCatalog(defs)
	require.NoError(t, err)

	completedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := &Record{EnrollmentID: 1}
	completeSession(rec, 1, completedAt)

	// 23 hours later: still locked
	assert.Equal(t, []int{1}, ComputeUnlockedSessions(catalog, rec, completedAt.Add(23*time.Hour)))
	// exactly 24 hours later: unlocked
	assert.Equal(t, []int{1, 2}, ComputeUnlockedSessions(catalog, rec, completedAt.Add(24*time.Hour)))
}

func TestTimeGapWithoutCompletionDate(t *testing.T) {
	defs := []SessionDefinition{
		{SessionNumber: 1},
		{SessionNumber: 2, Rules: UnlockRules{TimeGapAfterPreviousHours: 1}},
	}
	catalog, err := NewCatalog(defs)
	require.NoError(t, err)

	// Session 1 completed but with no completion date recorded: the gap has
	// no anchor, so session 2 stays locked rather than erroring
	rec := &Record{EnrollmentID: 1}
	sp := rec.ensureSession(1)
	sp.IsCompleted = true

	assert.Equal(t, []int{1}, ComputeUnlockedSessions(catalog, rec, time.Now()))
}

func TestTimeGapCompletionDateInFuture(t *testing.T) {
	defs := []SessionDefinition{
		{SessionNumber: 1},
		{SessionNumber: 2, Rules: UnlockRules{TimeGapAfterPreviousHours: 1}},
	}
	catalog, err := NewCatalog(defs)
	require.NoError(t, err)

	now := time.Now()
	rec := &Record{EnrollmentID: 1}
	completeSession(rec, 1, now.Add(2*time.Hour))

	assert.Equal(t, []int{1}, ComputeUnlockedSessions(catalog, rec, now))
}

func TestAssignmentGate(t *testing.T) {
	defs := []SessionDefinition{
		{SessionNumber: 1},
		{SessionNumber: 2, Rules: UnlockRules{RequiresPreviousCompletion: true, RequiresAssignment: true, UnlockAssignmentID: 5}},
	}
	catalog, err := NewCatalog(defs)
	require.NoError(t, err)

	now := time.Now()
	rec := &Record{EnrollmentID: 1}
	completeSession(rec, 1, now)

	// Submitted but not approved: locked
	rec.AssignmentsSubmitted = []AssignmentSubmission{
		{AssignmentID: 5, Status: SubmissionSubmitted, SubmittedDate: now},
	}
	assert.Equal(t, []int{1}, ComputeUnlockedSessions(catalog, rec, now))

	// Approval of a different assignment does not satisfy the gate
	rec.AssignmentsSubmitted[0].Status = SubmissionRejected
	rec.AssignmentsSubmitted = append(rec.AssignmentsSubmitted,
		AssignmentSubmission{AssignmentID: 9, Status: SubmissionApproved, SubmittedDate: now})
	assert.Equal(t, []int{1}, ComputeUnlockedSessions(catalog, rec, now))

	rec.AssignmentsSubmitted = append(rec.AssignmentsSubmitted,
		AssignmentSubmission{AssignmentID: 5, Status: SubmissionApproved, SubmittedDate: now})
	assert.Equal(t, []int{1, 2}, ComputeUnlockedSessions(catalog, rec, now))
}

func TestAssignmentGateAnySubmission(t *testing.T) {
	defs := []SessionDefinition{
		{SessionNumber: 1},
		{SessionNumber: 2, Rules: UnlockRules{RequiresPreviousCompletion: true, RequiresAssignment: true}},
	}
	catalog, err := NewCatalog(defs)
	require.NoError(t, err)

	now := time.Now()
	rec := &Record{EnrollmentID: 1}
	completeSession(rec, 1, now)
	rec.AssignmentsSubmitted = []AssignmentSubmission{
		{AssignmentID: 42, Status: SubmissionApproved, SubmittedDate: now},
	}

	assert.Equal(t, []int{1, 2}, ComputeUnlockedSessions(catalog, rec, now))
}

func TestRatingAndTestimonyGates(t *testing.T) {
	defs := []SessionDefinition{
		{SessionNumber: 1},
		{SessionNumber: 2, Rules: UnlockRules{RequiresPreviousCompletion: true, RequiresRating: true, RequiresTestimony: true}},
	}
	catalog, err := NewCatalog(defs)
	require.NoError(t, err)

	now := time.Now()
	rec := &Record{EnrollmentID: 1}
	completeSession(rec, 1, now)

	assert.Equal(t, []int{1}, ComputeUnlockedSessions(catalog, rec, now))

	rec.RatingSubmitted = true
	assert.Equal(t, []int{1}, ComputeUnlockedSessions(catalog, rec, now))

	rec.TestimonySubmitted = true
	assert.Equal(t, []int{1, 2}, ComputeUnlockedSessions(catalog, rec, now))
}

// Unlocks never regress: a satisfied precondition stays satisfied, so the
// unlock set computed after any forward mutation is a superset of the one
// computed before it.
func TestUnlockSetIsMonotone(t *testing.T) {
	defs := []SessionDefinition{
		{SessionNumber: 1},
		{SessionNumber: 2, Rules: UnlockRules{RequiresPreviousCompletion: true, TimeGapAfterPreviousHours: 2}},
		{SessionNumber: 3, Rules: UnlockRules{RequiresPreviousCompletion: true, RequiresRating: true}},
	}
	catalog, err := NewCatalog(defs)
	require.NoError(t, err)

	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	rec := &Record{EnrollmentID: 1}

	prev := ComputeUnlockedSessions(catalog, rec, start)

	steps := []func(now time.Time){
		func(now time.Time) { completeSession(rec, 1, now) },
		func(now time.Time) {}, // clock passes the 2h gap
		func(now time.Time) { completeSession(rec, 2, now) },
		func(now time.Time) { rec.RatingSubmitted = true },
	}

	now := start
	for _, step := range steps {
		step(now)
		now = now.Add(3 * time.Hour)
		cur := ComputeUnlockedSessions(catalog, rec, now)
		require.GreaterOrEqual(t, len(cur), len(prev))
		assert.Equal(t, prev, cur[:len(prev)])
		prev = cur
	}
	assert.Equal(t, []int{1, 2, 3}, prev)
}
