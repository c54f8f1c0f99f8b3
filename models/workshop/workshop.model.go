package workshop

import "gorm.io/gorm"

// Workshop represents one yoga workshop with a sequential session curriculum
type Workshop struct {
	gorm.Model
	Title         string `json:"title" gorm:"unique;not null"`
	Description   string `json:"description" gorm:"type:text"`
	Category      string `json:"category"`                         // basic, L1, L2, meditation, ...
	Level         string `json:"level" gorm:"default:'beginner'"`  // beginner, intermediate, advanced
	Instructor    string `json:"instructor"`
	ThumbnailURL  string `json:"thumbnail_url"`
	Duration      int64  `json:"duration" gorm:"default:0"` // total duration in hours
	TotalSessions int    `json:"total_sessions" gorm:"default:0"`
	Status        string `json:"status" gorm:"default:'DRAFT'"` // DRAFT, ACTIVE, INACTIVE
	IsPublished   bool   `json:"is_published" gorm:"default:false"`
	IsDeleted     bool   `gorm:"default:false"`
}

// WorkshopSession is one session of a workshop's curriculum. SessionNumber
// is 1-based and contiguous within a workshop; the unlock rule columns are
// immutable during a student's enrollment.
type WorkshopSession struct {
	gorm.Model
	WorkshopID      uint   `json:"workshop_id" gorm:"index;not null"`
	SessionNumber   int    `json:"session_number" gorm:"not null"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationSeconds int    `json:"duration_seconds" gorm:"default:0"`
	VideoURL        string `json:"video_url"`
	ThumbnailURL    string `json:"thumbnail_url"`
	MeetingURL      string `json:"meeting_url"` // Zoom link for live batches

	// Unlock rules
	RequiresPreviousCompletion bool    `json:"requires_previous_completion" gorm:"default:true"`
	TimeGapAfterPreviousHours  float64 `json:"time_gap_after_previous_hours" gorm:"default:0"`
	RequiresAssignment         bool    `json:"requires_assignment" gorm:"default:false"`
	UnlockAssignmentID         uint    `json:"unlock_assignment_id" gorm:"default:0"`
	RequiresRating             bool    `json:"requires_rating" gorm:"default:false"`
	RequiresTestimony          bool    `json:"requires_testimony" gorm:"default:false"`

	IsPublished bool `json:"is_published" gorm:"default:false"`
	IsDeleted   bool `gorm:"default:false"`
}

// Assignment is a homework item attached to a workshop that students submit
// for admin review.
type Assignment struct {
	gorm.Model
	WorkshopID    uint   `json:"workshop_id" gorm:"index;not null"`
	SessionNumber int    `json:"session_number" gorm:"default:0"` // session the assignment belongs to
	Title         string `json:"title"`
	Description   string `json:"description" gorm:"type:text"`
	IsDeleted     bool   `gorm:"default:false"`
}
