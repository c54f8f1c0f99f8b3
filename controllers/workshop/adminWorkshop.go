package controllers

import (
	"sadhaka/database"
	"sadhaka/middleware"
	workshopModels "sadhaka/models/workshop"
	"sadhaka/progress"
	"sadhaka/utils"
	workshopValidator "sadhaka/validators/workshop"

	"github.com/gofiber/fiber/v2"
)

func sessionFromInput(workshopID uint, s workshopValidator.SessionInput) workshopModels.WorkshopSession {
	return workshopModels.WorkshopSession{
		WorkshopID:                 workshopID,
		SessionNumber:              s.SessionNumber,
		Title:                      s.Title,
		Description:                s.Description,
		DurationSeconds:            s.DurationSeconds,
		VideoURL:                   s.VideoURL,
		ThumbnailURL:               s.ThumbnailURL,
		RequiresPreviousCompletion: s.RequiresPreviousCompletion,
		TimeGapAfterPreviousHours:  s.TimeGapAfterPreviousHours,
		RequiresAssignment:         s.RequiresAssignment,
		UnlockAssignmentID:         s.UnlockAssignmentID,
		RequiresRating:             s.RequiresRating,
		RequiresTestimony:          s.RequiresTestimony,
	}
}

// CreateWorkshop creates a draft workshop with its session curriculum
func CreateWorkshop(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCreateWorkshop").(*workshopValidator.CreateWorkshopRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Check for duplicate title
	if err := database.Database.Db.Where("title = ? AND is_deleted = ?", reqData.Title, false).First(&workshopModels.Workshop{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "A workshop with this title already exists!", nil)
	}

	workshop := workshopModels.Workshop{
		Title:         reqData.Title,
		Description:   reqData.Description,
		Category:      reqData.Category,
		Level:         reqData.Level,
		Instructor:    reqData.Instructor,
		ThumbnailURL:  reqData.ThumbnailURL,
		Duration:      reqData.Duration,
		TotalSessions: len(reqData.Sessions),
		Status:        "DRAFT",
	}

	tx := database.Database.Db.Begin()
	if err := tx.Create(&workshop).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create workshop!", nil)
	}

	for _, s := range reqData.Sessions {
		session := sessionFromInput(workshop.ID, s)
		if err := tx.Create(&session).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create workshop sessions!", nil)
		}
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Workshop created successfully!", workshop)
}

// UpdateWorkshop updates workshop fields and optionally replaces the
// session curriculum. Session edits are blocked once students are enrolled;
// unlock rules are immutable during an enrollment.
func UpdateWorkshop(c *fiber.Ctx) error {
	workshopID := c.Locals("workshopID").(uint)

	reqData, ok := c.Locals("validatedUpdateWorkshop").(*workshopValidator.UpdateWorkshopRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var workshop workshopModels.Workshop
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", workshopID, false).First(&workshop).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Workshop not found!", nil)
	}

	if reqData.Title != nil {
		workshop.Title = *reqData.Title
	}
	if reqData.Description != nil {
		workshop.Description = *reqData.Description
	}
	if reqData.Category != nil {
		workshop.Category = *reqData.Category
	}
	if reqData.Level != nil {
		workshop.Level = *reqData.Level
	}
	if reqData.Instructor != nil {
		workshop.Instructor = *reqData.Instructor
	}
	if reqData.ThumbnailURL != nil {
		workshop.ThumbnailURL = *reqData.ThumbnailURL
	}
	if reqData.Duration != nil {
		workshop.Duration = *reqData.Duration
	}

	tx := database.Database.Db.Begin()

	if len(reqData.Sessions) > 0 {
		var enrolled int64
		database.Database.Db.Model(&workshopModels.Enrollment{}).
			Where("workshop_id = ? AND is_deleted = ?", workshopID, false).Count(&enrolled)
		if enrolled > 0 {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Cannot change sessions while students are enrolled!", nil)
		}

		if err := tx.Where("workshop_id = ?", workshopID).Delete(&workshopModels.WorkshopSession{}).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update sessions!", nil)
		}
		for _, s := range reqData.Sessions {
			session := sessionFromInput(workshopID, s)
			if err := tx.Create(&session).Error; err != nil {
				tx.Rollback()
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update sessions!", nil)
			}
		}
		workshop.TotalSessions = len(reqData.Sessions)
	}

	if err := tx.Save(&workshop).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update workshop!", nil)
	}
	tx.Commit()

	Catalogs.Invalidate(workshopID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Workshop updated successfully!", workshop)
}

// PublishWorkshop validates the curriculum and makes the workshop visible
// and enrollable
func PublishWorkshop(c *fiber.Ctx) error {
	workshopID := c.Locals("workshopID").(uint)

	var workshop workshopModels.Workshop
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", workshopID, false).First(&workshop).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Workshop not found!", nil)
	}

	var sessions []workshopModels.WorkshopSession
	database.Database.Db.Where("workshop_id = ? AND is_deleted = ?", workshopID, false).
		Order("session_number asc").Find(&sessions)
	if len(sessions) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Workshop has no sessions!", nil)
	}

	// Reject curricula the unlock evaluator cannot work with
	defs := make([]progress.SessionDefinition, len(sessions))
	for i, s := range sessions {
		defs[i] = progress.SessionDefinition{SessionNumber: s.SessionNumber, DurationSeconds: s.DurationSeconds}
	}
	if _, err := progress.NewCatalog(defs); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid session curriculum: "+err.Error(), nil)
	}

	tx := database.Database.Db.Begin()
	if err := tx.Model(&workshopModels.WorkshopSession{}).
		Where("workshop_id = ? AND is_deleted = ?", workshopID, false).
		Update("is_published", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish sessions!", nil)
	}

	workshop.IsPublished = true
	workshop.Status = "ACTIVE"
	if err := tx.Save(&workshop).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish workshop!", nil)
	}
	tx.Commit()

	Catalogs.Invalidate(workshopID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Workshop published successfully!", workshop)
}

// CreateAssignment attaches a reviewable assignment to a workshop
func CreateAssignment(c *fiber.Ctx) error {
	workshopID := c.Locals("workshopID").(uint)

	reqData, ok := c.Locals("validatedCreateAssignment").(*workshopValidator.CreateAssignmentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var workshop workshopModels.Workshop
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", workshopID, false).First(&workshop).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Workshop not found!", nil)
	}

	assignment := workshopModels.Assignment{
		WorkshopID:    workshopID,
		SessionNumber: reqData.SessionNumber,
		Title:         reqData.Title,
		Description:   reqData.Description,
	}

	if err := database.Database.Db.Create(&assignment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create assignment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Assignment created successfully!", assignment)
}

// CreateSessionMeeting creates a Zoom meeting for a live session and stores
// its join URL on the session
func CreateSessionMeeting(c *fiber.Ctx) error {
	workshopID := c.Locals("workshopID").(uint)

	reqData, ok := c.Locals("validatedCreateMeeting").(*workshopValidator.CreateMeetingRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var workshop workshopModels.Workshop
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", workshopID, false).First(&workshop).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Workshop not found!", nil)
	}

	var session workshopModels.WorkshopSession
	if err := database.Database.Db.Where("workshop_id = ? AND session_number = ? AND is_deleted = ?", workshopID, reqData.SessionNumber, false).First(&session).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
	}

	topic := workshop.Title + " - " + session.Title
	joinURL, err := utils.CreateZoomMeeting(topic, reqData.StartTime, reqData.DurationMinutes)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to create Zoom meeting!", nil)
	}

	session.MeetingURL = joinURL
	if err := database.Database.Db.Save(&session).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save meeting URL!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Meeting created successfully!", fiber.Map{
		"session":  session,
		"join_url": joinURL,
	})
}
