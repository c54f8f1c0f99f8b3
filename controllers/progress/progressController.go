package progressController

import (
	"errors"
	"time"

	"sadhaka/database"
	"sadhaka/middleware"
	"sadhaka/models"
	workshopModels "sadhaka/models/workshop"
	"sadhaka/progress"
	progressValidator "sadhaka/validators/progress"

	"github.com/gofiber/fiber/v2"
)

// Engine is the shared progress engine, wired in main
var Engine *progress.Engine

// Init sets the engine used by the progress controllers
func Init(engine *progress.Engine) {
	Engine = engine
}

// respondProgressError maps engine errors to HTTP responses
func respondProgressError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, progress.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Progress record not found!", nil)
	case errors.Is(err, progress.ErrSessionLocked):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "This session is still locked!", nil)
	case errors.Is(err, progress.ErrSessionNotWatched):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Watch the session before completing it!", nil)
	case errors.Is(err, progress.ErrDuplicateSubmission):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Assignment already submitted!", nil)
	case errors.Is(err, progress.ErrAlreadySubmitted):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Already submitted!", nil)
	case errors.Is(err, progress.ErrVersionConflict):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Progress was updated concurrently, please retry!", nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
	}
}

// requireOwnEnrollment checks that the progress record for the enrollment
// belongs to the authenticated user. Admin routes skip this.
func requireOwnEnrollment(c *fiber.Ctx, enrollmentID uint) (uint, bool, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return 0, false, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return 0, false, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var row workshopModels.StudentProgress
	if err := database.Database.Db.Where("enrollment_id = ? AND is_deleted = ?", enrollmentID, false).First(&row).Error; err != nil {
		return 0, false, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Progress record not found!", nil)
	}
	if row.UserID != userID {
		return 0, false, middleware.JsonResponse(c, fiber.StatusForbidden, false, "This enrollment does not belong to you!", nil)
	}

	return userID, true, nil
}

// GetProgress returns the progress record with the unlocked set evaluated
// at request time
func GetProgress(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)

	if _, ok, resp := requireOwnEnrollment(c, enrollmentID); !ok {
		return resp
	}

	rec, err := Engine.Progress(c.Context(), enrollmentID, time.Now())
	if err != nil {
		return respondProgressError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", rec)
}

// RecordSessionWatch marks a session watched and accumulates watch time
func RecordSessionWatch(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)

	reqData, ok := c.Locals("validatedSessionWatch").(*progressValidator.SessionWatchRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if _, ok, resp := requireOwnEnrollment(c, enrollmentID); !ok {
		return resp
	}

	rec, err := Engine.RecordSessionWatch(c.Context(), enrollmentID, reqData.SessionNumber, reqData.WatchSeconds, time.Now())
	if err != nil {
		return respondProgressError(c, err)
	}

	syncEnrollmentStatus(rec)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session watch recorded!", rec)
}

// RecordSessionCompletion marks a watched session as completed and unlocks
// whatever the rules allow next
func RecordSessionCompletion(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)

	reqData, ok := c.Locals("validatedSessionComplete").(*progressValidator.SessionCompleteRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if _, ok, resp := requireOwnEnrollment(c, enrollmentID); !ok {
		return resp
	}

	rec, err := Engine.RecordSessionCompletion(c.Context(), enrollmentID, reqData.SessionNumber, reqData.AssessmentScore, time.Now())
	if err != nil {
		return respondProgressError(c, err)
	}

	// Notify once the whole workshop is done
	if rec.IsCompleted {
		notifyWorkshopCompleted(rec)
	} else {
		syncEnrollmentStatus(rec)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session completed!", rec)
}

// SubmitAssignment records an assignment submission pending admin review
func SubmitAssignment(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)

	reqData, ok := c.Locals("validatedSubmitAssignment").(*progressValidator.SubmitAssignmentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if _, ok, resp := requireOwnEnrollment(c, enrollmentID); !ok {
		return resp
	}

	// The assignment must exist on the enrolled workshop
	var row workshopModels.StudentProgress
	if err := database.Database.Db.Where("enrollment_id = ? AND is_deleted = ?", enrollmentID, false).First(&row).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Progress record not found!", nil)
	}
	var assignment workshopModels.Assignment
	if err := database.Database.Db.Where("id = ? AND workshop_id = ? AND is_deleted = ?", reqData.AssignmentID, row.WorkshopID, false).First(&assignment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assignment not found!", nil)
	}

	rec, err := Engine.SubmitAssignment(c.Context(), enrollmentID, reqData.AssignmentID, reqData.SubmissionURL, time.Now())
	if err != nil {
		return respondProgressError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignment submitted! Pending review.", rec)
}

// SubmitRating records the one-time workshop rating
func SubmitRating(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)

	reqData, ok := c.Locals("validatedSubmitRating").(*progressValidator.SubmitRatingRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if _, ok, resp := requireOwnEnrollment(c, enrollmentID); !ok {
		return resp
	}

	rec, err := Engine.SubmitRating(c.Context(), enrollmentID, reqData.Score, reqData.Comment, time.Now())
	if err != nil {
		return respondProgressError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Rating submitted successfully!", rec)
}

// SubmitTestimony records the one-time testimony
func SubmitTestimony(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)

	reqData, ok := c.Locals("validatedSubmitTestimony").(*progressValidator.SubmitTestimonyRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if _, ok, resp := requireOwnEnrollment(c, enrollmentID); !ok {
		return resp
	}

	rec, err := Engine.SubmitTestimony(c.Context(), enrollmentID, reqData.Text, reqData.VideoURL, time.Now())
	if err != nil {
		return respondProgressError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Testimony submitted successfully!", rec)
}
