package progress

import (
	"context"
	"fmt"
	"time"
)

// Engine orchestrates every mutation of a progress record: it loads the
// record, validates the operation against the catalog and the unlock rules,
// applies the change in memory, refreshes the derived aggregates and writes
// the record back through the store's conditional save.
//
// Operations take an explicit `now` so the unlock evaluation stays
// deterministic under test. Each operation does exactly one load and one
// save; a failed save leaves nothing persisted.
type Engine struct {
	store    Store
	catalogs CatalogSource
	agg      Aggregator
}

func NewEngine(store Store, catalogs CatalogSource, agg Aggregator) *Engine {
	return &Engine{store: store, catalogs: catalogs, agg: agg}
}

// CreateRecord initializes the progress record for a new enrollment:
// session 1 unlocked, pointer at session 1, all flags cleared.
func (e *Engine) CreateRecord(ctx context.Context, enrollmentID, userID, workshopID uint, now time.Time) (*Record, error) {
	catalog, err := e.catalogs.SessionCatalog(ctx, workshopID)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		EnrollmentID:         enrollmentID,
		UserID:               userID,
		WorkshopID:           workshopID,
		CurrentSessionNumber: 1,
		LastActivityDate:     now,
		Version:              1,
	}
	rec.UnlockedSessions = ComputeUnlockedSessions(catalog, rec, now)

	if err := e.store.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Progress returns the record with the unlocked set freshly evaluated at
// `now`. The read is mutation-free: time-gap unlocks that materialized since
// the last write show up in the response but are not persisted here.
func (e *Engine) Progress(ctx context.Context, enrollmentID uint, now time.Time) (*Record, error) {
	rec, catalog, err := e.load(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	rec.UnlockedSessions = ComputeUnlockedSessions(catalog, rec, now)
	return rec, nil
}

// RecordSessionWatch marks a session as watched and accumulates watch time.
// The session must currently be unlocked. Watching alone never completes a
// session, but the unlock set is still recomputed for consistency.
func (e *Engine) RecordSessionWatch(ctx context.Context, enrollmentID uint, sessionNumber, watchSeconds int, now time.Time) (*Record, error) {
	rec, catalog, err := e.load(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if _, ok := catalog.Session(sessionNumber); !ok {
		return nil, fmt.Errorf("%w: session %d", ErrNotFound, sessionNumber)
	}

	rec.UnlockedSessions = ComputeUnlockedSessions(catalog, rec, now)
	if !rec.IsUnlocked(sessionNumber) {
		return nil, fmt.Errorf("%w: session %d", ErrSessionLocked, sessionNumber)
	}

	sp := rec.ensureSession(sessionNumber)
	sp.IsWatched = true
	if watchSeconds > 0 {
		sp.WatchTime += watchSeconds
	}

	return e.finish(ctx, rec, catalog, now)
}

// RecordSessionCompletion marks a watched session as completed. This is the
// primary trigger for unlocking subsequent sessions; the current-session
// pointer advances by at most one step even when several sessions become
// unlocked at once.
func (e *Engine) RecordSessionCompletion(ctx context.Context, enrollmentID uint, sessionNumber int, assessmentScore *float64, now time.Time) (*Record, error) {
	rec, catalog, err := e.load(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if _, ok := catalog.Session(sessionNumber); !ok {
		return nil, fmt.Errorf("%w: session %d", ErrNotFound, sessionNumber)
	}

	sp := rec.Session(sessionNumber)
	if sp == nil || !sp.IsWatched {
		return nil, fmt.Errorf("%w: session %d", ErrSessionNotWatched, sessionNumber)
	}

	if !sp.IsCompleted {
		sp.IsCompleted = true
		completedAt := now
		sp.CompletedDate = &completedAt
	}
	if assessmentScore != nil {
		sp.AssessmentScore = assessmentScore
	}

	rec.UnlockedSessions = ComputeUnlockedSessions(catalog, rec, now)
	if next := rec.CurrentSessionNumber + 1; next <= maxSession(rec.UnlockedSessions) {
		rec.CurrentSessionNumber = next
	}

	return e.finish(ctx, rec, catalog, now)
}

// SubmitAssignment appends a submission with status SUBMITTED. It does not
// change unlock state by itself; the admin review transition does.
func (e *Engine) SubmitAssignment(ctx context.Context, enrollmentID, assignmentID uint, submissionURL string, now time.Time) (*Record, error) {
	rec, catalog, err := e.load(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	for _, sub := range rec.AssignmentsSubmitted {
		if sub.AssignmentID == assignmentID &&
			(sub.Status == SubmissionSubmitted || sub.Status == SubmissionApproved) {
			return nil, fmt.Errorf("%w: assignment %d is %s", ErrDuplicateSubmission, assignmentID, sub.Status)
		}
	}

	rec.AssignmentsSubmitted = append(rec.AssignmentsSubmitted, AssignmentSubmission{
		AssignmentID:  assignmentID,
		SubmittedDate: now,
		SubmissionURL: submissionURL,
		Status:        SubmissionSubmitted,
	})

	return e.finish(ctx, rec, catalog, now)
}

// ReviewAssignment resolves a pending submission to APPROVED or REJECTED.
// Approval is a precondition the unlock evaluator checks, so the unlock set
// is recomputed here.
func (e *Engine) ReviewAssignment(ctx context.Context, enrollmentID, assignmentID uint, approve bool, review string, now time.Time) (*Record, error) {
	rec, catalog, err := e.load(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	var pending *AssignmentSubmission
	for i := range rec.AssignmentsSubmitted {
		sub := &rec.AssignmentsSubmitted[i]
		if sub.AssignmentID == assignmentID && sub.Status == SubmissionSubmitted {
			pending = sub
		}
	}
	if pending == nil {
		return nil, fmt.Errorf("%w: no pending submission for assignment %d", ErrNotFound, assignmentID)
	}

	if approve {
		pending.Status = SubmissionApproved
	} else {
		pending.Status = SubmissionRejected
	}
	pending.AdminReview = review
	reviewedAt := now
	pending.ReviewedDate = &reviewedAt

	return e.finish(ctx, rec, catalog, now)
}

// SubmitRating records the one-time workshop rating. A rating can gate a
// later session, so the unlock set is recomputed.
func (e *Engine) SubmitRating(ctx context.Context, enrollmentID uint, score int, comment string, now time.Time) (*Record, error) {
	rec, catalog, err := e.load(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if rec.RatingSubmitted {
		return nil, fmt.Errorf("%w: rating", ErrAlreadySubmitted)
	}

	rec.RatingSubmitted = true
	ratedAt := now
	rec.RatingDate = &ratedAt
	rec.RatingScore = score
	rec.RatingComment = comment

	return e.finish(ctx, rec, catalog, now)
}

// SubmitTestimony records the one-time testimony, independent of the rating.
func (e *Engine) SubmitTestimony(ctx context.Context, enrollmentID uint, text, videoURL string, now time.Time) (*Record, error) {
	rec, catalog, err := e.load(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if rec.TestimonySubmitted {
		return nil, fmt.Errorf("%w: testimony", ErrAlreadySubmitted)
	}

	rec.TestimonySubmitted = true
	submittedAt := now
	rec.TestimonyDate = &submittedAt
	rec.TestimonyText = text
	rec.TestimonyVideoURL = videoURL

	return e.finish(ctx, rec, catalog, now)
}

// RefreshUnlocks persists unlock-set growth caused by wall-clock passage
// alone (time-gap rules). Returns whether anything changed. Used by the
// periodic scheduler; all other unlock transitions piggyback on mutations.
func (e *Engine) RefreshUnlocks(ctx context.Context, enrollmentID uint, now time.Time) (*Record, bool, error) {
	rec, catalog, err := e.load(ctx, enrollmentID)
	if err != nil {
		return nil, false, err
	}

	unlocked := ComputeUnlockedSessions(catalog, rec, now)
	if len(unlocked) <= len(rec.UnlockedSessions) {
		return rec, false, nil
	}

	rec.UnlockedSessions = unlocked
	if err := e.store.Save(ctx, rec, rec.Version); err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func (e *Engine) load(ctx context.Context, enrollmentID uint) (*Record, Catalog, error) {
	rec, err := e.store.Load(ctx, enrollmentID)
	if err != nil {
		return nil, nil, err
	}
	catalog, err := e.catalogs.SessionCatalog(ctx, rec.WorkshopID)
	if err != nil {
		return nil, nil, err
	}
	return rec, catalog, nil
}

// finish refreshes the unlock set and aggregates, stamps the activity
// fields and saves the record conditionally on the version it was loaded
// with.
func (e *Engine) finish(ctx context.Context, rec *Record, catalog Catalog, now time.Time) (*Record, error) {
	rec.UnlockedSessions = ComputeUnlockedSessions(catalog, rec, now)
	e.agg.Apply(rec, catalog, now)

	rec.LastActivityDate = now
	totalWatch := 0
	for _, sp := range rec.SessionsCompleted {
		totalWatch += sp.WatchTime
	}
	rec.TotalEngagementMinutes = totalWatch / 60

	if err := e.store.Save(ctx, rec, rec.Version); err != nil {
		return nil, err
	}
	return rec, nil
}

func maxSession(sessions []int) int {
	max := 0
	for _, n := range sessions {
		if n > max {
			max = n
		}
	}
	return max
}
