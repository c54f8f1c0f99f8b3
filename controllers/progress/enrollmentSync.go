package progressController

import (
	"log"
	"time"

	"sadhaka/database"
	"sadhaka/models"
	workshopModels "sadhaka/models/workshop"
	"sadhaka/progress"
	"sadhaka/utils"
)

// syncEnrollmentStatus mirrors the derived progress onto the enrollment row
// after a watch/completion event
func syncEnrollmentStatus(rec *progress.Record) {
	var enrollment workshopModels.Enrollment
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", rec.EnrollmentID, false).First(&enrollment).Error; err != nil {
		return
	}

	if rec.IsCompleted {
		if enrollment.Status != "COMPLETED" {
			enrollment.Status = "COMPLETED"
			now := time.Now()
			enrollment.CompletedAt = &now
			if err := database.Database.Db.Save(&enrollment).Error; err != nil {
				log.Printf("Failed to mark enrollment %d COMPLETED: %v", enrollment.ID, err)
			}
		}
	} else if rec.CompletionPercentage > 0 && enrollment.Status == "ENROLLED" {
		enrollment.Status = "IN_PROGRESS"
		if err := database.Database.Db.Save(&enrollment).Error; err != nil {
			log.Printf("Failed to mark enrollment %d IN_PROGRESS: %v", enrollment.ID, err)
		}
	}
}

// notifyWorkshopCompleted sends the congratulation mail the first time an
// enrollment reaches completion
func notifyWorkshopCompleted(rec *progress.Record) {
	var enrollment workshopModels.Enrollment
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", rec.EnrollmentID, false).First(&enrollment).Error; err != nil {
		return
	}
	if enrollment.Status == "COMPLETED" {
		// already notified on a previous completion event
		return
	}

	syncEnrollmentStatus(rec)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", rec.UserID, false).First(&user).Error; err != nil {
		return
	}
	var workshop workshopModels.Workshop
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", rec.WorkshopID, false).First(&workshop).Error; err != nil {
		return
	}

	utils.SendWorkshopCompletionEmail(user.Name, user.Email, workshop.Title)
}
