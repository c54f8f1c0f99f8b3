package progressController

import (
	"time"

	"sadhaka/database"
	"sadhaka/middleware"
	"sadhaka/models"
	workshopModels "sadhaka/models/workshop"
	progressValidator "sadhaka/validators/progress"

	"github.com/gofiber/fiber/v2"
)

// ReviewAssignment resolves a pending assignment submission. Approval can
// unlock the next session for the student, so the engine recomputes the
// unlock set as part of the transition.
func ReviewAssignment(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)

	reqData, ok := c.Locals("validatedReviewAssignment").(*progressValidator.ReviewAssignmentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	rec, err := Engine.ReviewAssignment(c.Context(), enrollmentID, reqData.AssignmentID, *reqData.Approve, reqData.Review, time.Now())
	if err != nil {
		return respondProgressError(c, err)
	}

	message := "Assignment rejected."
	if *reqData.Approve {
		message = "Assignment approved!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, rec)
}

// GetStudentProgressAdmin returns any student's progress record for the
// admin panel, with completion context from the enrollment
func GetStudentProgressAdmin(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)

	rec, err := Engine.Progress(c.Context(), enrollmentID, time.Now())
	if err != nil {
		return respondProgressError(c, err)
	}

	var user models.User
	database.Database.Db.Where("id = ? AND is_deleted = ?", rec.UserID, false).First(&user)
	user.Password = ""

	var enrollment workshopModels.Enrollment
	database.Database.Db.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&enrollment)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"progress":   rec,
		"student":    user,
		"enrollment": enrollment,
	})
}
