package progressValidator

import (
	"strconv"
	"strings"

	"sadhaka/middleware"

	"github.com/gofiber/fiber/v2"
)

// parseEnrollmentID validates the :enrollment_id path parameter and stashes
// it in Locals for the controller.
func parseEnrollmentID(c *fiber.Ctx) (uint, bool) {
	idStr := strings.TrimSpace(c.Params("enrollment_id"))
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// GetProgress validator middleware
func GetProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentID, ok := parseEnrollmentID(c)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid enrollment ID!", nil)
		}
		c.Locals("enrollmentID", enrollmentID)
		return c.Next()
	}
}

// SessionWatchRequest is the validated session-watch payload
type SessionWatchRequest struct {
	SessionNumber int `json:"session_number"`
	WatchSeconds  int `json:"watch_seconds"`
}

// SessionWatch validator middleware
func SessionWatch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentID, ok := parseEnrollmentID(c)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid enrollment ID!", nil)
		}

		reqData := new(SessionWatchRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.SessionNumber < 1 {
			errors["session_number"] = "Session number must be greater than 0!"
		}
		if reqData.WatchSeconds < 0 {
			errors["watch_seconds"] = "Watch seconds cannot be negative!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("enrollmentID", enrollmentID)
		c.Locals("validatedSessionWatch", reqData)
		return c.Next()
	}
}

// SessionCompleteRequest is the validated session-completion payload
type SessionCompleteRequest struct {
	SessionNumber   int      `json:"session_number"`
	AssessmentScore *float64 `json:"assessment_score"`
}

// SessionComplete validator middleware
func SessionComplete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentID, ok := parseEnrollmentID(c)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid enrollment ID!", nil)
		}

		reqData := new(SessionCompleteRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.SessionNumber < 1 {
			errors["session_number"] = "Session number must be greater than 0!"
		}
		if reqData.AssessmentScore != nil && (*reqData.AssessmentScore < 0 || *reqData.AssessmentScore > 100) {
			errors["assessment_score"] = "Assessment score must be between 0 and 100!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("enrollmentID", enrollmentID)
		c.Locals("validatedSessionComplete", reqData)
		return c.Next()
	}
}

// SubmitAssignmentRequest is the validated assignment submission payload
type SubmitAssignmentRequest struct {
	AssignmentID  uint   `json:"assignment_id"`
	SubmissionURL string `json:"submission_url"`
}

// SubmitAssignment validator middleware
func SubmitAssignment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentID, ok := parseEnrollmentID(c)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid enrollment ID!", nil)
		}

		reqData := new(SubmitAssignmentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.AssignmentID == 0 {
			errors["assignment_id"] = "Assignment ID is required!"
		}
		if strings.TrimSpace(reqData.SubmissionURL) == "" {
			errors["submission_url"] = "Submission URL is required!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("enrollmentID", enrollmentID)
		c.Locals("validatedSubmitAssignment", reqData)
		return c.Next()
	}
}

// SubmitRatingRequest is the validated rating payload
type SubmitRatingRequest struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// SubmitRating validator middleware
func SubmitRating() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentID, ok := parseEnrollmentID(c)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid enrollment ID!", nil)
		}

		reqData := new(SubmitRatingRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Score < 1 || reqData.Score > 5 {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"score": "Rating must be between 1 and 5!",
			})
		}

		c.Locals("enrollmentID", enrollmentID)
		c.Locals("validatedSubmitRating", reqData)
		return c.Next()
	}
}

// SubmitTestimonyRequest is the validated testimony payload
type SubmitTestimonyRequest struct {
	Text     string `json:"text"`
	VideoURL string `json:"video_url"`
}

// SubmitTestimony validator middleware
func SubmitTestimony() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentID, ok := parseEnrollmentID(c)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid enrollment ID!", nil)
		}

		reqData := new(SubmitTestimonyRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if strings.TrimSpace(reqData.Text) == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"text": "Testimony text is required!",
			})
		}

		c.Locals("enrollmentID", enrollmentID)
		c.Locals("validatedSubmitTestimony", reqData)
		return c.Next()
	}
}

// ReviewAssignmentRequest is the validated admin review payload
type ReviewAssignmentRequest struct {
	AssignmentID uint   `json:"assignment_id"`
	Approve      *bool  `json:"approve"`
	Review       string `json:"review"`
}

// ReviewAssignment validator middleware
func ReviewAssignment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentID, ok := parseEnrollmentID(c)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid enrollment ID!", nil)
		}

		reqData := new(ReviewAssignmentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.AssignmentID == 0 {
			errors["assignment_id"] = "Assignment ID is required!"
		}
		if reqData.Approve == nil {
			errors["approve"] = "Approve flag is required!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("enrollmentID", enrollmentID)
		c.Locals("validatedReviewAssignment", reqData)
		return c.Next()
	}
}
