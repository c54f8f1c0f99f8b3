package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store with the same compare-and-swap contract as
// the database implementation.
type memStore struct {
	records map[uint]*Record
	saves   int

	// beforeSave runs at the top of Save, standing in for a concurrent
	// writer that slips between the engine's load and save.
	beforeSave func()

	// createErr makes Create fail, standing in for storage loss.
	createErr error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[uint]*Record)}
}

func cloneRecord(rec *Record) *Record {
	data, _ := json.Marshal(rec)
	out := new(Record)
	_ = json.Unmarshal(data, out)
	return out
}

func (s *memStore) Load(_ context.Context, enrollmentID uint) (*Record, error) {
	rec, ok := s.records[enrollmentID]
	if !ok {
		return nil, fmt.Errorf("%w: enrollment %d", ErrNotFound, enrollmentID)
	}
	return cloneRecord(rec), nil
}

func (s *memStore) Save(_ context.Context, rec *Record, expectedVersion uint) error {
	if s.beforeSave != nil {
		s.beforeSave()
	}
	stored, ok := s.records[rec.EnrollmentID]
	if !ok {
		return fmt.Errorf("%w: enrollment %d", ErrNotFound, rec.EnrollmentID)
	}
	if stored.Version != expectedVersion {
		return fmt.Errorf("%w: expected version %d, stored %d", ErrVersionConflict, expectedVersion, stored.Version)
	}
	rec.Version = expectedVersion + 1
	s.records[rec.EnrollmentID] = cloneRecord(rec)
	s.saves++
	return nil
}

func (s *memStore) Create(_ context.Context, rec *Record) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.records[rec.EnrollmentID] = cloneRecord(rec)
	return nil
}

// staticCatalogs serves a fixed catalog per workshop.
type staticCatalogs map[uint]Catalog

func (c staticCatalogs) SessionCatalog(_ context.Context, workshopID uint) (Catalog, error) {
	catalog, ok := c[workshopID]
	if !ok {
		return nil, fmt.Errorf("%w: workshop %d", ErrNotFound, workshopID)
	}
	return catalog, nil
}

func newTestEngine(t *testing.T, defs []SessionDefinition) (*Engine, *memStore) {
	t.Helper()
	catalog, err := NewCatalog(defs)
	require.NoError(t, err)
	store := newMemStore()
	engine := NewEngine(store, staticCatalogs{10: catalog}, NewAggregator(70, 30, 100))
	return engine, store
}

func sequentialDefs(n int) []SessionDefinition {
	defs := make([]SessionDefinition, n)
	for i := range defs {
		defs[i] = SessionDefinition{
			SessionNumber: i + 1,
			Rules:         UnlockRules{RequiresPreviousCompletion: true},
		}
	}
	return defs
}

func TestCreateRecordInitialState(t *testing.T) {
	engine, store := newTestEngine(t, sequentialDefs(3))
	now := time.Now()

	rec, err := engine.CreateRecord(context.Background(), 1, 100, 10, now)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, rec.UnlockedSessions)
	assert.Equal(t, 1, rec.CurrentSessionNumber)
	assert.Equal(t, uint(1), rec.Version)
	assert.False(t, rec.IsCompleted)
	assert.Zero(t, rec.CompletionPercentage)
	require.Contains(t, store.records, uint(1))
}

// A failed create must leave no record behind: the enrollment flow removes
// its enrollment row when this errors, and relies on nothing having been
// persisted here.
func TestCreateRecordLeavesNothingOnStoreFailure(t *testing.T) {
	engine, store := newTestEngine(t, sequentialDefs(3))
	store.createErr = fmt.Errorf("%w: connection reset", ErrStorage)

	_, err := engine.CreateRecord(context.Background(), 1, 100, 10, time.Now())
	require.ErrorIs(t, err, ErrStorage)
	assert.Empty(t, store.records)
}

func TestCreateRecordUnknownWorkshop(t *testing.T) {
	engine, _ := newTestEngine(t, sequentialDefs(3))

	_, err := engine.CreateRecord(context.Background(), 1, 100, 99, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWatchRequiresUnlockedSession(t *testing.T) {
	engine, _ := newTestEngine(t, sequentialDefs(3))
	ctx := context.Background()
	now := time.Now()

	_, err := engine.CreateRecord(ctx, 1, 100, 10, now)
	require.NoError(t, err)

	_, err = engine.RecordSessionWatch(ctx, 1, 2, 60, now)
	assert.ErrorIs(t, err, ErrSessionLocked)

	_, err = engine.RecordSessionWatch(ctx, 1, 7, 60, now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompletionRequiresWatch(t *testing.T) {
	engine, _ := newTestEngine(t, sequentialDefs(3))
	ctx := context.Background()
	now := time.Now()

	_, err := engine.CreateRecord(ctx, 1, 100, 10, now)
	require.NoError(t, err)

	_, err = engine.RecordSessionCompletion(ctx, 1, 1, nil, now)
	assert.ErrorIs(t, err, ErrSessionNotWatched)

	_, err = engine.RecordSessionWatch(ctx, 1, 1, 300, now)
	require.NoError(t, err)

	rec, err := engine.RecordSessionCompletion(ctx, 1, 1, nil, now)
	require.NoError(t, err)
	require.NotNil(t, rec.Session(1))
	assert.True(t, rec.Session(1).IsCompleted)
}

func TestWatchAccumulatesTime(t *testing.T) {
	engine, _ := newTestEngine(t, sequentialDefs(2))
	ctx := context.Background()
	now := time.Now()

	_, err := engine.CreateRecord(ctx, 1, 100, 10, now)
	require.NoError(t, err)

	_, err = engine.RecordSessionWatch(ctx, 1, 1, 90, now)
	require.NoError(t, err)
	rec, err := engine.RecordSessionWatch(ctx, 1, 1, 45, now)
	require.NoError(t, err)

	assert.Equal(t, 135, rec.Session(1).WatchTime)
	assert.Equal(t, 2, rec.TotalEngagementMinutes)
}

// Full walkthrough of a three-session workshop with no assignment gates: the
// percentage climbs a third per completion and the record closes at 100%.
func TestThreeSessionWorkshopScenario(t *testing.T) {
	engine, _ := newTestEngine(t, sequentialDefs(3))
	ctx := context.Background()
	now := time.Now()

	_, err := engine.CreateRecord(ctx, 1, 100, 10, now)
	require.NoError(t, err)

	expected := []float64{100.0 / 3, 200.0 / 3, 100}
	for n := 1; n <= 3; n++ {
		_, err = engine.RecordSessionWatch(ctx, 1, n, 600, now)
		require.NoError(t, err)
		rec, err := engine.RecordSessionCompletion(ctx, 1, n, nil, now)
		require.NoError(t, err)

		assert.InDelta(t, expected[n-1], rec.CompletionPercentage, 0.01)
		if n < 3 {
			assert.Equal(t, n+1, rec.CurrentSessionNumber)
			assert.Equal(t, []int{1, 2, 3}[:n+1], rec.UnlockedSessions)
			assert.False(t, rec.IsCompleted)
		} else {
			assert.True(t, rec.IsCompleted)
			assert.NotNil(t, rec.CompletionDate)
		}
	}
}

func TestCurrentSessionAdvancesAtMostOne(t *testing.T) {
	// Sessions 2 and 3 have no rules of their own, so completing session 1
	// unlocks both at once; the pointer still moves a single step
	defs := []SessionDefinition{
		{SessionNumber: 1},
		{SessionNumber: 2},
		{SessionNumber: 3},
	}
	engine, _ := newTestEngine(t, defs)
	ctx := context.Background()
	now := time.Now()

	_, err := engine.CreateRecord(ctx, 1, 100, 10, now)
	require.NoError(t, err)

	_, err = engine.RecordSessionWatch(ctx, 1, 1, 60, now)
	require.NoError(t, err)
	rec, err := engine.RecordSessionCompletion(ctx, 1, 1, nil, now)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, rec.UnlockedSessions)
	assert.Equal(t, 2, rec.CurrentSessionNumber)
}

func TestCompletionIdempotent(t *testing.T) {
	engine, _ := newTestEngine(t, sequentialDefs(2))
	ctx := context.Background()
	now := time.Now()

	_, err := engine.CreateRecord(ctx, 1, 100, 10, now)
	require.NoError(t, err)
	_, err = engine.RecordSessionWatch(ctx, 1, 1, 60, now)
	require.NoError(t, err)

	first, err := engine.RecordSessionCompletion(ctx, 1, 1, nil, now)
	require.NoError(t, err)
	firstDate := *first.Session(1).CompletedDate
	firstPct := first.CompletionPercentage

	again, err := engine.RecordSessionCompletion(ctx, 1, 1, nil, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, firstDate, *again.Session(1).CompletedDate)
	assert.Equal(t, firstPct, again.CompletionPercentage)
	assert.Equal(t, 2, again.CurrentSessionNumber)
}

func TestAssessmentScoreStored(t *testing.T) {
	engine, _ := newTestEngine(t, sequentialDefs(1))
	ctx := context.Background()
	now := time.Now()

	_, err := engine.CreateRecord(ctx, 1, 100, 10, now)
	require.NoError(t, err)
	_, err = engine.RecordSessionWatch(ctx, 1, 1, 60, now)
	require.NoError(t, err)

	score := 87.5
	rec, err := engine.RecordSessionCompletion(ctx, 1, 1, &score, now)
	require.NoError(t, err)
	require.NotNil(t, rec.Session(1).AssessmentScore)
	assert.InDelta(t, 87.5, *rec.Session(1).AssessmentScore, 0.001)
}

func TestAssignmentSubmissionLifecycle(t *testing.T) {
	defs := []SessionDefinition{
		{SessionNumber: 1},
		{SessionNumber: 2, Rules: UnlockRules{RequiresPreviousCompletion: true, RequiresAssignment: true, UnlockAssignmentID: 5}},
	}
	engine, _ := newTestEngine(t, defs)
	ctx := context.Background()
	now := time.Now()

	_, err := engine.CreateRecord(ctx, 1, 100, 10, now)
	require.NoError(t, err)
	_, err = engine.RecordSessionWatch(ctx, 1, 1, 60, now)
	require.NoError(t, err)
	rec, err := engine.RecordSessionCompletion(ctx, 1, 1, nil, now)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, rec.UnlockedSessions)

	rec, err = engine.SubmitAssignment(ctx, 1, 5, "https://drive.example/sub1", now)
	require.NoError(t, err)
	assert.Equal(t, SubmissionSubmitted, rec.AssignmentsSubmitted[0].Status)

	// Pending submission blocks resubmission
	_, err = engine.SubmitAssignment(ctx, 1, 5, "https://drive.example/sub2", now)
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	// Rejection reopens the assignment
	rec, err = engine.ReviewAssignment(ctx, 1, 5, false, "please redo the breathing sequence", now)
	require.NoError(t, err)
	assert.Equal(t, SubmissionRejected, rec.AssignmentsSubmitted[0].Status)
	assert.Equal(t, []int{1}, rec.UnlockedSessions)

	rec, err = engine.SubmitAssignment(ctx, 1, 5, "https://drive.example/sub2", now)
	require.NoError(t, err)
	require.Len(t, rec.AssignmentsSubmitted, 2)

	// Approval unlocks session 2 in the same transition
	rec, err = engine.ReviewAssignment(ctx, 1, 5, true, "well done", now)
	require.NoError(t, err)
	assert.Equal(t, SubmissionApproved, rec.AssignmentsSubmitted[1].Status)
	assert.Equal(t, []int{1, 2}, rec.UnlockedSessions)

	// Approved submission blocks any further resubmission
	_, err = engine.SubmitAssignment(ctx, 1, 5, "https://drive.example/sub3", now)
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	// Nothing left pending to review
	_, err = engine.ReviewAssignment(ctx, 1, 5, true, "", now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRatingAndTestimonyOneShot(t *testing.T) {
	engine, _ := newTestEngine(t, sequentialDefs(1))
	ctx := context.Background()
	now := time.Now()

	_, err := engine.CreateRecord(ctx, 1, 100, 10, now)
	require.NoError(t, err)

	rec, err := engine.SubmitRating(ctx, 1, 5, "life changing", now)
	require.NoError(t, err)
	assert.True(t, rec.RatingSubmitted)
	assert.Equal(t, 5, rec.RatingScore)

	_, err = engine.SubmitRating(ctx, 1, 3, "changed my mind", now)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	rec, err = engine.SubmitTestimony(ctx, 1, "I can finally touch my toes", "", now)
	require.NoError(t, err)
	assert.True(t, rec.TestimonySubmitted)

	_, err = engine.SubmitTestimony(ctx, 1, "again", "", now)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestProgressReadDoesNotPersist(t *testing.T) {
	defs := []SessionDefinition{
		{SessionNumber: 1},
		{SessionNumber: 2, Rules: UnlockRules{RequiresPreviousCompletion: true, TimeGapAfterPreviousHours: 24}},
	}
	engine, store := newTestEngine(t, defs)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := engine.CreateRecord(ctx, 1, 100, 10, start)
	require.NoError(t, err)
	_, err = engine.RecordSessionWatch(ctx, 1, 1, 60, start)
	require.NoError(t, err)
	_, err = engine.RecordSessionCompletion(ctx, 1, 1, nil, start)
	require.NoError(t, err)

	savesBefore := store.saves

	// A day later the gap has elapsed: the read shows session 2 unlocked
	// without writing anything back
	rec, err := engine.Progress(ctx, 1, start.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, rec.UnlockedSessions)
	assert.Equal(t, savesBefore, store.saves)
	assert.Equal(t, []int{1}, store.records[1].UnlockedSessions)
}

func TestRefreshUnlocksPersistsTimeGap(t *testing.T) {
	defs := []SessionDefinition{
		{SessionNumber: 1},
		{SessionNumber: 2, Rules: UnlockRules{RequiresPreviousCompletion: true, TimeGapAfterPreviousHours: 24}},
	}
	engine, store := newTestEngine(t, defs)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := engine.CreateRecord(ctx, 1, 100, 10, start)
	require.NoError(t, err)
	_, err = engine.RecordSessionWatch(ctx, 1, 1, 60, start)
	require.NoError(t, err)
	_, err = engine.RecordSessionCompletion(ctx, 1, 1, nil, start)
	require.NoError(t, err)

	// Before the gap elapses the sweep is a no-op
	_, changed, err := engine.RefreshUnlocks(ctx, 1, start.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	rec, changed, err := engine.RefreshUnlocks(ctx, 1, start.Add(25*time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []int{1, 2}, rec.UnlockedSessions)
	assert.Equal(t, []int{1, 2}, store.records[1].UnlockedSessions)

	// Running the sweep again changes nothing
	_, changed, err = engine.RefreshUnlocks(ctx, 1, start.Add(26*time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSaveVersionConflictSurfaces(t *testing.T) {
	engine, store := newTestEngine(t, sequentialDefs(2))
	ctx := context.Background()
	now := time.Now()

	_, err := engine.CreateRecord(ctx, 1, 100, 10, now)
	require.NoError(t, err)

	// A concurrent writer lands between the engine's load and save
	store.beforeSave = func() {
		store.beforeSave = nil
		store.records[1].Version++
	}

	_, err = engine.RecordSessionWatch(ctx, 1, 1, 60, now)
	assert.ErrorIs(t, err, ErrVersionConflict)

	// With the interloper gone the retry goes through
	_, err = engine.RecordSessionWatch(ctx, 1, 1, 60, now)
	assert.NoError(t, err)
}

func TestVersionBumpsPerMutation(t *testing.T) {
	engine, _ := newTestEngine(t, sequentialDefs(2))
	ctx := context.Background()
	now := time.Now()

	rec, err := engine.CreateRecord(ctx, 1, 100, 10, now)
	require.NoError(t, err)
	assert.Equal(t, uint(1), rec.Version)

	rec, err = engine.RecordSessionWatch(ctx, 1, 1, 60, now)
	require.NoError(t, err)
	assert.Equal(t, uint(2), rec.Version)

	rec, err = engine.RecordSessionCompletion(ctx, 1, 1, nil, now)
	require.NoError(t, err)
	assert.Equal(t, uint(3), rec.Version)
}

func TestMissingRecord(t *testing.T) {
	engine, _ := newTestEngine(t, sequentialDefs(2))
	ctx := context.Background()

	_, err := engine.Progress(ctx, 404, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}
