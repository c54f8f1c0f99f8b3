package progress

import "errors"

// Every operation fails with exactly one of these. The HTTP layer maps them
// to response codes; the engine never retries and never applies a partial
// mutation once an error is returned.
var (
	// ErrNotFound - the enrollment has no progress record, or a referenced
	// entity (session number, assignment submission) does not exist.
	ErrNotFound = errors.New("progress record not found")

	// ErrSessionLocked - watch/complete attempted on a session that is not
	// in the unlocked set.
	ErrSessionLocked = errors.New("session is locked")

	// ErrSessionNotWatched - completion attempted before any watch was
	// recorded for the session.
	ErrSessionNotWatched = errors.New("session has not been watched")

	// ErrDuplicateSubmission - assignment resubmission while a prior
	// submission is still pending or already approved.
	ErrDuplicateSubmission = errors.New("assignment already submitted")

	// ErrAlreadySubmitted - rating or testimony was already submitted for
	// this enrollment.
	ErrAlreadySubmitted = errors.New("already submitted")

	// ErrVersionConflict - concurrent modification detected by the store's
	// conditional save. Callers reload and retry.
	ErrVersionConflict = errors.New("progress record was modified concurrently")

	// ErrStorage - the underlying store is unavailable.
	ErrStorage = errors.New("progress storage unavailable")
)
