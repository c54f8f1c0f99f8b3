package workshop

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment ties one user to one workshop. Progress is tracked in the
// StudentProgress record keyed on the enrollment ID. The composite unique
// index rules out double-enrollment under concurrent requests.
type Enrollment struct {
	gorm.Model
	UserID           uint       `json:"user_id" gorm:"uniqueIndex:idx_user_workshop;not null"`
	WorkshopID       uint       `json:"workshop_id" gorm:"uniqueIndex:idx_user_workshop;not null"`
	SelectedMode     string     `json:"selected_mode" gorm:"default:'recorded'"` // online, offline, residential, recorded
	SelectedLanguage string     `json:"selected_language" gorm:"default:'hindi'"`
	Status           string     `json:"status" gorm:"default:'ENROLLED'"` // ENROLLED, IN_PROGRESS, COMPLETED, CANCELLED
	CompletedAt      *time.Time `json:"completed_at"`
	IsDeleted        bool       `gorm:"default:false"`
}
