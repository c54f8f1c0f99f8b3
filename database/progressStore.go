package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	workshopModels "sadhaka/models/workshop"
	"sadhaka/progress"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProgressStore implements progress.Store on top of the student_progresses
// table. Saves are conditional on the version column, so a concurrent
// writer surfaces as progress.ErrVersionConflict instead of a lost update.
type ProgressStore struct {
	db *gorm.DB
}

func NewProgressStore(db *gorm.DB) *ProgressStore {
	return &ProgressStore{db: db}
}

func (s *ProgressStore) Load(ctx context.Context, enrollmentID uint) (*progress.Record, error) {
	var row workshopModels.StudentProgress
	err := s.db.WithContext(ctx).
		Where("enrollment_id = ? AND is_deleted = ?", enrollmentID, false).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: enrollment %d", progress.ErrNotFound, enrollmentID)
		}
		return nil, fmt.Errorf("%w: %v", progress.ErrStorage, err)
	}
	return toRecord(&row)
}

func (s *ProgressStore) Create(ctx context.Context, rec *progress.Record) error {
	row, err := fromRecord(rec)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("%w: %v", progress.ErrStorage, err)
	}
	return nil
}

func (s *ProgressStore) Save(ctx context.Context, rec *progress.Record, expectedVersion uint) error {
	row, err := fromRecord(rec)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Model(&workshopModels.StudentProgress{}).
		Where("enrollment_id = ? AND version = ? AND is_deleted = ?", rec.EnrollmentID, expectedVersion, false).
		Updates(map[string]interface{}{
			"sessions_completed":          row.SessionsCompleted,
			"unlocked_sessions":           row.UnlockedSessions,
			"current_session_number":      row.CurrentSessionNumber,
			"assignments_submitted":       row.AssignmentsSubmitted,
			"rating_submitted":            row.RatingSubmitted,
			"rating_date":                 row.RatingDate,
			"rating_score":                row.RatingScore,
			"rating_comment":              row.RatingComment,
			"testimony_submitted":         row.TestimonySubmitted,
			"testimony_date":              row.TestimonyDate,
			"testimony_text":              row.TestimonyText,
			"testimony_video_url":         row.TestimonyVideoURL,
			"total_sessions_completed":    row.TotalSessionsCompleted,
			"total_assignments_completed": row.TotalAssignmentsCompleted,
			"completion_percentage":       row.CompletionPercentage,
			"is_completed":                row.IsCompleted,
			"completion_date":             row.CompletionDate,
			"last_activity_date":          row.LastActivityDate,
			"total_engagement_minutes":    row.TotalEngagementMinutes,
			"version":                     expectedVersion + 1,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", progress.ErrStorage, res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the record vanished or someone else bumped the version.
		var count int64
		if err := s.db.WithContext(ctx).
			Model(&workshopModels.StudentProgress{}).
			Where("enrollment_id = ? AND is_deleted = ?", rec.EnrollmentID, false).
			Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %v", progress.ErrStorage, err)
		}
		if count == 0 {
			return fmt.Errorf("%w: enrollment %d", progress.ErrNotFound, rec.EnrollmentID)
		}
		return fmt.Errorf("%w: enrollment %d", progress.ErrVersionConflict, rec.EnrollmentID)
	}

	rec.Version = expectedVersion + 1
	return nil
}

func toRecord(row *workshopModels.StudentProgress) (*progress.Record, error) {
	rec := &progress.Record{
		EnrollmentID:              row.EnrollmentID,
		UserID:                    row.UserID,
		WorkshopID:                row.WorkshopID,
		CurrentSessionNumber:      row.CurrentSessionNumber,
		RatingSubmitted:           row.RatingSubmitted,
		RatingDate:                row.RatingDate,
		RatingScore:               row.RatingScore,
		RatingComment:             row.RatingComment,
		TestimonySubmitted:        row.TestimonySubmitted,
		TestimonyDate:             row.TestimonyDate,
		TestimonyText:             row.TestimonyText,
		TestimonyVideoURL:         row.TestimonyVideoURL,
		TotalSessionsCompleted:    row.TotalSessionsCompleted,
		TotalAssignmentsCompleted: row.TotalAssignmentsCompleted,
		CompletionPercentage:      row.CompletionPercentage,
		IsCompleted:               row.IsCompleted,
		CompletionDate:            row.CompletionDate,
		LastActivityDate:          row.LastActivityDate,
		TotalEngagementMinutes:    row.TotalEngagementMinutes,
		Version:                   row.Version,
	}

	if len(row.SessionsCompleted) > 0 {
		if err := json.Unmarshal(row.SessionsCompleted, &rec.SessionsCompleted); err != nil {
			return nil, fmt.Errorf("%w: corrupt sessions_completed: %v", progress.ErrStorage, err)
		}
	}
	if len(row.UnlockedSessions) > 0 {
		if err := json.Unmarshal(row.UnlockedSessions, &rec.UnlockedSessions); err != nil {
			return nil, fmt.Errorf("%w: corrupt unlocked_sessions: %v", progress.ErrStorage, err)
		}
	}
	if len(row.AssignmentsSubmitted) > 0 {
		if err := json.Unmarshal(row.AssignmentsSubmitted, &rec.AssignmentsSubmitted); err != nil {
			return nil, fmt.Errorf("%w: corrupt assignments_submitted: %v", progress.ErrStorage, err)
		}
	}
	return rec, nil
}

func fromRecord(rec *progress.Record) (*workshopModels.StudentProgress, error) {
	sessions, err := marshalJSON(rec.SessionsCompleted)
	if err != nil {
		return nil, err
	}
	unlocked, err := marshalJSON(rec.UnlockedSessions)
	if err != nil {
		return nil, err
	}
	submissions, err := marshalJSON(rec.AssignmentsSubmitted)
	if err != nil {
		return nil, err
	}

	return &workshopModels.StudentProgress{
		EnrollmentID:              rec.EnrollmentID,
		UserID:                    rec.UserID,
		WorkshopID:                rec.WorkshopID,
		SessionsCompleted:         sessions,
		UnlockedSessions:          unlocked,
		CurrentSessionNumber:      rec.CurrentSessionNumber,
		AssignmentsSubmitted:      submissions,
		RatingSubmitted:           rec.RatingSubmitted,
		RatingDate:                rec.RatingDate,
		RatingScore:               rec.RatingScore,
		RatingComment:             rec.RatingComment,
		TestimonySubmitted:        rec.TestimonySubmitted,
		TestimonyDate:             rec.TestimonyDate,
		TestimonyText:             rec.TestimonyText,
		TestimonyVideoURL:         rec.TestimonyVideoURL,
		TotalSessionsCompleted:    rec.TotalSessionsCompleted,
		TotalAssignmentsCompleted: rec.TotalAssignmentsCompleted,
		CompletionPercentage:      rec.CompletionPercentage,
		IsCompleted:               rec.IsCompleted,
		CompletionDate:            rec.CompletionDate,
		LastActivityDate:          rec.LastActivityDate,
		TotalEngagementMinutes:    rec.TotalEngagementMinutes,
		Version:                   rec.Version,
	}, nil
}

func marshalJSON(v interface{}) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", progress.ErrStorage, err)
	}
	return datatypes.JSON(b), nil
}
