package workshop

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StudentProgress is the persisted form of a progress.Record. The
// document-shaped parts (session history, unlocked set, submissions) live in
// JSON columns; Version backs the optimistic compare-and-swap in the
// progress store.
type StudentProgress struct {
	gorm.Model
	EnrollmentID uint `json:"enrollment_id" gorm:"uniqueIndex;not null"`
	UserID       uint `json:"user_id" gorm:"index;not null"`
	WorkshopID   uint `json:"workshop_id" gorm:"index;not null"`

	SessionsCompleted    datatypes.JSON `json:"sessions_completed"`
	UnlockedSessions     datatypes.JSON `json:"unlocked_sessions"`
	CurrentSessionNumber int            `json:"current_session_number" gorm:"default:1"`
	AssignmentsSubmitted datatypes.JSON `json:"assignments_submitted"`

	RatingSubmitted bool       `json:"rating_submitted" gorm:"default:false"`
	RatingDate      *time.Time `json:"rating_date"`
	RatingScore     int        `json:"rating_score" gorm:"default:0"`
	RatingComment   string     `json:"rating_comment" gorm:"type:text"`

	TestimonySubmitted bool       `json:"testimony_submitted" gorm:"default:false"`
	TestimonyDate      *time.Time `json:"testimony_date"`
	TestimonyText      string     `json:"testimony_text" gorm:"type:text"`
	TestimonyVideoURL  string     `json:"testimony_video_url"`

	TotalSessionsCompleted    int        `json:"total_sessions_completed" gorm:"default:0"`
	TotalAssignmentsCompleted int        `json:"total_assignments_completed" gorm:"default:0"`
	CompletionPercentage      float64    `json:"completion_percentage" gorm:"default:0"`
	IsCompleted               bool       `json:"is_completed" gorm:"index;default:false"`
	CompletionDate            *time.Time `json:"completion_date"`

	LastActivityDate       time.Time `json:"last_activity_date"`
	TotalEngagementMinutes int       `json:"total_engagement_minutes" gorm:"default:0"`

	Version   uint `json:"version" gorm:"not null;default:1"`
	IsDeleted bool `gorm:"default:false"`
}
