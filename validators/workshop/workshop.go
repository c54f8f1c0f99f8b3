package workshopValidator

import (
	"strconv"
	"strings"
	"time"

	"sadhaka/middleware"

	"github.com/gofiber/fiber/v2"
)

func parseWorkshopID(c *fiber.Ctx, param string) (uint, bool) {
	idStr := strings.TrimSpace(c.Params(param))
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// WorkshopList validator middleware
func WorkshopList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if reqData.Page != nil && reqData.Limit != nil && *reqData.Page >= 1 && *reqData.Limit >= 1 {
			c.Locals("validatedWorkshopList", reqData)
		}
		return c.Next()
	}
}

// GetWorkshopDetail validator middleware
func GetWorkshopDetail() fiber.Handler {
	return func(c *fiber.Ctx) error {
		workshopID, ok := parseWorkshopID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Workshop ID!", nil)
		}
		c.Locals("workshopID", workshopID)
		return c.Next()
	}
}

// EnrollRequest is the validated enrollment payload
type EnrollRequest struct {
	SelectedMode     string `json:"selected_mode"`
	SelectedLanguage string `json:"selected_language"`
}

var validModes = map[string]bool{"online": true, "offline": true, "residential": true, "recorded": true}
var validLanguages = map[string]bool{"hindi": true, "marathi": true, "english": true}

// EnrollWorkshop validator middleware
func EnrollWorkshop() fiber.Handler {
	return func(c *fiber.Ctx) error {
		workshopID, ok := parseWorkshopID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Workshop ID!", nil)
		}

		reqData := &EnrollRequest{SelectedMode: "recorded", SelectedLanguage: "hindi"}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}

		errors := make(map[string]string)
		if !validModes[reqData.SelectedMode] {
			errors["selected_mode"] = "Mode must be one of online, offline, residential, recorded!"
		}
		if !validLanguages[reqData.SelectedLanguage] {
			errors["selected_language"] = "Language must be one of hindi, marathi, english!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("workshopID", workshopID)
		c.Locals("validatedEnroll", reqData)
		return c.Next()
	}
}

// SessionInput is one session definition of a create/update workshop payload
type SessionInput struct {
	SessionNumber   int    `json:"session_number"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationSeconds int    `json:"duration_seconds"`
	VideoURL        string `json:"video_url"`
	ThumbnailURL    string `json:"thumbnail_url"`

	RequiresPreviousCompletion bool    `json:"requires_previous_completion"`
	TimeGapAfterPreviousHours  float64 `json:"time_gap_after_previous_hours"`
	RequiresAssignment         bool    `json:"requires_assignment"`
	UnlockAssignmentID         uint    `json:"unlock_assignment_id"`
	RequiresRating             bool    `json:"requires_rating"`
	RequiresTestimony          bool    `json:"requires_testimony"`
}

// CreateWorkshopRequest is the validated workshop creation payload
type CreateWorkshopRequest struct {
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Category     string         `json:"category"`
	Level        string         `json:"level"`
	Instructor   string         `json:"instructor"`
	ThumbnailURL string         `json:"thumbnail_url"`
	Duration     int64          `json:"duration"`
	Sessions     []SessionInput `json:"sessions"`
}

func validateSessions(sessions []SessionInput, errors map[string]string) {
	seen := make(map[int]bool)
	for _, s := range sessions {
		if s.SessionNumber < 1 {
			errors["sessions"] = "Session numbers must be greater than 0!"
			return
		}
		if seen[s.SessionNumber] {
			errors["sessions"] = "Duplicate session number " + strconv.Itoa(s.SessionNumber) + "!"
			return
		}
		seen[s.SessionNumber] = true
		if s.DurationSeconds < 0 {
			errors["sessions"] = "Session duration cannot be negative!"
			return
		}
		if s.TimeGapAfterPreviousHours < 0 {
			errors["sessions"] = "Time gap cannot be negative!"
			return
		}
	}
	for n := 1; n <= len(sessions); n++ {
		if !seen[n] {
			errors["sessions"] = "Session numbers must be contiguous starting at 1!"
			return
		}
	}
}

// CreateWorkshop validator middleware
func CreateWorkshop() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateWorkshopRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}
		if len(reqData.Sessions) == 0 {
			errors["sessions"] = "At least one session is required!"
		} else {
			validateSessions(reqData.Sessions, errors)
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreateWorkshop", reqData)
		return c.Next()
	}
}

// UpdateWorkshopRequest is the validated workshop update payload
type UpdateWorkshopRequest struct {
	Title        *string        `json:"title"`
	Description  *string        `json:"description"`
	Category     *string        `json:"category"`
	Level        *string        `json:"level"`
	Instructor   *string        `json:"instructor"`
	ThumbnailURL *string        `json:"thumbnail_url"`
	Duration     *int64         `json:"duration"`
	Sessions     []SessionInput `json:"sessions"`
}

// UpdateWorkshop validator middleware
func UpdateWorkshop() fiber.Handler {
	return func(c *fiber.Ctx) error {
		workshopID, ok := parseWorkshopID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Workshop ID!", nil)
		}

		reqData := new(UpdateWorkshopRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.Title != nil && len(strings.TrimSpace(*reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}
		if len(reqData.Sessions) > 0 {
			validateSessions(reqData.Sessions, errors)
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("workshopID", workshopID)
		c.Locals("validatedUpdateWorkshop", reqData)
		return c.Next()
	}
}

// PublishWorkshop validator middleware
func PublishWorkshop() fiber.Handler {
	return func(c *fiber.Ctx) error {
		workshopID, ok := parseWorkshopID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Workshop ID!", nil)
		}
		c.Locals("workshopID", workshopID)
		return c.Next()
	}
}

// CreateAssignmentRequest is the validated assignment creation payload
type CreateAssignmentRequest struct {
	SessionNumber int    `json:"session_number"`
	Title         string `json:"title"`
	Description   string `json:"description"`
}

// CreateAssignment validator middleware
func CreateAssignment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		workshopID, ok := parseWorkshopID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Workshop ID!", nil)
		}

		reqData := new(CreateAssignmentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}
		if reqData.SessionNumber < 0 {
			errors["session_number"] = "Session number cannot be negative!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("workshopID", workshopID)
		c.Locals("validatedCreateAssignment", reqData)
		return c.Next()
	}
}

// CreateMeetingRequest is the validated live-session meeting payload
type CreateMeetingRequest struct {
	SessionNumber   int       `json:"session_number"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

// CreateMeeting validator middleware
func CreateMeeting() fiber.Handler {
	return func(c *fiber.Ctx) error {
		workshopID, ok := parseWorkshopID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Workshop ID!", nil)
		}

		reqData := new(CreateMeetingRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.SessionNumber < 1 {
			errors["session_number"] = "Session number must be greater than 0!"
		}
		if reqData.StartTime.IsZero() {
			errors["start_time"] = "Start time is required!"
		}
		if reqData.DurationMinutes < 1 {
			errors["duration_minutes"] = "Duration must be greater than 0!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("workshopID", workshopID)
		c.Locals("validatedCreateMeeting", reqData)
		return c.Next()
	}
}

// RequestCertificate validator middleware
func RequestCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		workshopID, ok := parseWorkshopID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Workshop ID!", nil)
		}
		c.Locals("workshopID", workshopID)
		return c.Next()
	}
}

// ApproveCertificateRequest is the validated certificate approval payload
type ApproveCertificateRequest struct {
	Approve         *bool  `json:"approve"`
	CertificateURL  string `json:"certificate_url"`
	RejectionReason string `json:"rejection_reason"`
}

// ApproveCertificate validator middleware
func ApproveCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestIDStr := strings.TrimSpace(c.Params("id"))
		requestID, err := strconv.Atoi(requestIDStr)
		if err != nil || requestID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid certificate request ID!", nil)
		}

		reqData := new(ApproveCertificateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.Approve == nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"approve": "Approve flag is required!",
			})
		}

		c.Locals("requestID", uint(requestID))
		c.Locals("validatedApproveCertificate", reqData)
		return c.Next()
	}
}
