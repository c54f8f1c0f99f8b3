package progress

import "time"

// Assignment submission statuses. An admin review moves a submission from
// SUBMITTED to APPROVED or REJECTED; only APPROVED counts toward unlock
// rules and completion percentage.
const (
	SubmissionSubmitted = "SUBMITTED"
	SubmissionReviewed  = "REVIEWED"
	SubmissionApproved  = "APPROVED"
	SubmissionRejected  = "REJECTED"
)

// UnlockRules are the static preconditions attached to a session definition.
type UnlockRules struct {
	RequiresPreviousCompletion bool    `json:"requires_previous_completion"`
	TimeGapAfterPreviousHours  float64 `json:"time_gap_after_previous_hours"`
	RequiresAssignment         bool    `json:"requires_assignment"`
	UnlockAssignmentID         uint    `json:"unlock_assignment_id"` // 0 = any approved submission
	RequiresRating             bool    `json:"requires_rating"`
	RequiresTestimony          bool    `json:"requires_testimony"`
}

// SessionDefinition is one entry of a workshop's session catalog.
// Session numbers are 1-based and contiguous.
type SessionDefinition struct {
	SessionNumber   int         `json:"session_number"`
	DurationSeconds int         `json:"duration_seconds"`
	Rules           UnlockRules `json:"unlock_rules"`
}

// SessionProgress tracks one session's watch/completion state for a student.
type SessionProgress struct {
	SessionID       int        `json:"session_id"`
	CompletedDate   *time.Time `json:"completed_date,omitempty"`
	WatchTime       int        `json:"watch_time"` // seconds, never decreases
	IsWatched       bool       `json:"is_watched"`
	IsCompleted     bool       `json:"is_completed"`
	AssessmentScore *float64   `json:"assessment_score,omitempty"`
}

// AssignmentSubmission is one submission of a workshop assignment.
type AssignmentSubmission struct {
	AssignmentID  uint       `json:"assignment_id"`
	SubmittedDate time.Time  `json:"submitted_date"`
	SubmissionURL string     `json:"submission_url"`
	Status        string     `json:"status"`
	AdminReview   string     `json:"admin_review,omitempty"`
	ReviewedDate  *time.Time `json:"reviewed_date,omitempty"`
}

// Record is the per-enrollment progress state. There is exactly one Record
// per enrollment; it is created at enrollment time and mutated only through
// Engine operations.
type Record struct {
	EnrollmentID uint `json:"enrollment_id"`
	UserID       uint `json:"user_id"`
	WorkshopID   uint `json:"workshop_id"`

	SessionsCompleted    []SessionProgress      `json:"sessions_completed"`
	UnlockedSessions     []int                  `json:"unlocked_sessions"`
	CurrentSessionNumber int                    `json:"current_session_number"`
	AssignmentsSubmitted []AssignmentSubmission `json:"assignments_submitted"`

	RatingSubmitted bool       `json:"rating_submitted"`
	RatingDate      *time.Time `json:"rating_date,omitempty"`
	RatingScore     int        `json:"rating_score,omitempty"`
	RatingComment   string     `json:"rating_comment,omitempty"`

	TestimonySubmitted bool       `json:"testimony_submitted"`
	TestimonyDate      *time.Time `json:"testimony_date,omitempty"`
	TestimonyText      string     `json:"testimony_text,omitempty"`
	TestimonyVideoURL  string     `json:"testimony_video_url,omitempty"`

	TotalSessionsCompleted    int     `json:"total_sessions_completed"`
	TotalAssignmentsCompleted int     `json:"total_assignments_completed"`
	CompletionPercentage      float64 `json:"completion_percentage"`
	IsCompleted               bool    `json:"is_completed"`
	CompletionDate            *time.Time `json:"completion_date,omitempty"`

	LastActivityDate       time.Time `json:"last_activity_date"`
	TotalEngagementMinutes int       `json:"total_engagement_minutes"`

	// Version is the optimistic concurrency token checked by Store.Save.
	Version uint `json:"version"`
}

// Session returns the progress entry for the given session number, or nil
// if the student has not touched that session yet.
func (r *Record) Session(sessionNumber int) *SessionProgress {
	for i := range r.SessionsCompleted {
		if r.SessionsCompleted[i].SessionID == sessionNumber {
			return &r.SessionsCompleted[i]
		}
	}
	return nil
}

// ensureSession returns the progress entry for the session, creating a
// zero-value entry when the session is touched for the first time.
func (r *Record) ensureSession(sessionNumber int) *SessionProgress {
	if sp := r.Session(sessionNumber); sp != nil {
		return sp
	}
	r.SessionsCompleted = append(r.SessionsCompleted, SessionProgress{SessionID: sessionNumber})
	return &r.SessionsCompleted[len(r.SessionsCompleted)-1]
}

// IsUnlocked reports whether the session number is in the unlocked set.
func (r *Record) IsUnlocked(sessionNumber int) bool {
	for _, n := range r.UnlockedSessions {
		if n == sessionNumber {
			return true
		}
	}
	return false
}

// hasApprovedSubmission reports whether an approved submission exists.
// assignmentID 0 matches any assignment.
func (r *Record) hasApprovedSubmission(assignmentID uint) bool {
	for _, sub := range r.AssignmentsSubmitted {
		if sub.Status != SubmissionApproved {
			continue
		}
		if assignmentID == 0 || sub.AssignmentID == assignmentID {
			return true
		}
	}
	return false
}
