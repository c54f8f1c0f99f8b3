package controllers

import (
	"errors"
	"log"
	"time"

	"sadhaka/database"
	"sadhaka/middleware"
	"sadhaka/models"
	workshopModels "sadhaka/models/workshop"
	"sadhaka/progress"
	workshopValidator "sadhaka/validators/workshop"

	"github.com/gofiber/fiber/v2"
)

// Engine is the shared progress engine, wired in main
var Engine *progress.Engine

// Catalogs is the shared catalog source; admin edits must invalidate it
var Catalogs *database.CatalogSource

// Init sets the shared engine and catalog source
func Init(engine *progress.Engine, catalogs *database.CatalogSource) {
	Engine = engine
	Catalogs = catalogs
}

// GetAllWorkshops lists published workshops
func GetAllWorkshops(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	db := database.Database.Db.Model(&workshopModels.Workshop{}).
		Where("is_deleted = ? AND is_published = ?", false, true)

	// Retrieve validated pagination request
	reqData, ok := c.Locals("validatedWorkshopList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})

	page := 1
	limit := 10
	if ok && reqData.Page != nil && reqData.Limit != nil {
		page = *reqData.Page
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	var total int64
	db.Count(&total)

	var workshops []workshopModels.Workshop
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&workshops).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch workshops!", nil)
	}

	response := map[string]interface{}{
		"workshops": workshops,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Workshops fetched successfully!", response)
}

// GetWorkshopDetails returns a workshop with its session curriculum and the
// caller's enrollment state
func GetWorkshopDetails(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	workshopID := c.Locals("workshopID").(uint)

	var workshop workshopModels.Workshop
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", workshopID, false, true).First(&workshop).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Workshop not found!", nil)
	}

	var sessions []workshopModels.WorkshopSession
	database.Database.Db.Where("workshop_id = ? AND is_deleted = ?", workshopID, false).
		Order("session_number asc").Find(&sessions)

	var enrollment workshopModels.Enrollment
	isEnrolled := database.Database.Db.Where("user_id = ? AND workshop_id = ? AND is_deleted = ?", userID, workshopID, false).First(&enrollment).Error == nil

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Workshop details fetched successfully!", fiber.Map{
		"workshop":    workshop,
		"sessions":    sessions,
		"is_enrolled": isEnrolled,
		"enrollment":  enrollment,
	})
}

// EnrollInWorkshop enrolls the user and initializes their progress record
// with session 1 unlocked
func EnrollInWorkshop(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	workshopID := c.Locals("workshopID").(uint)

	reqData, ok := c.Locals("validatedEnroll").(*workshopValidator.EnrollRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Check if workshop exists and is active
	var workshop workshopModels.Workshop
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ? AND status = ?", workshopID, false, true, "ACTIVE").First(&workshop).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Workshop not found or not active!", nil)
	}

	// Check if user is already enrolled
	var existingEnrollment workshopModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND workshop_id = ? AND is_deleted = ?", userID, workshopID, false).First(&existingEnrollment).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You are already enrolled in this workshop!", nil)
	}

	enrollment := workshopModels.Enrollment{
		UserID:           userID,
		WorkshopID:       workshopID,
		SelectedMode:     reqData.SelectedMode,
		SelectedLanguage: reqData.SelectedLanguage,
		Status:           "ENROLLED",
	}

	// The unique index on (user_id, workshop_id) catches the race the
	// duplicate check above cannot
	if err := database.Database.Db.Create(&enrollment).Error; err != nil {
		var raced workshopModels.Enrollment
		if database.Database.Db.Where("user_id = ? AND workshop_id = ?", userID, workshopID).First(&raced).Error == nil {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "You are already enrolled in this workshop!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in workshop!", nil)
	}

	// Initialize the progress record: session 1 unlocked, pointer at 1.
	// Enrollment and progress record must exist together: without the record
	// every progress call 404s while the duplicate check blocks re-enrolling,
	// so a failed init removes the enrollment row again.
	rec, err := Engine.CreateRecord(c.Context(), enrollment.ID, userID, workshopID, time.Now())
	if err != nil {
		if delErr := database.Database.Db.Unscoped().Delete(&enrollment).Error; delErr != nil {
			log.Printf("Failed to remove enrollment %d after progress init failure: %v", enrollment.ID, delErr)
		}
		if errors.Is(err, progress.ErrNotFound) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Workshop has no published sessions yet!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to initialize progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in workshop successfully!", fiber.Map{
		"enrollment": enrollment,
		"progress":   rec,
	})
}

// GetUserEnrollmentsList lists the caller's enrollments with workshop info
func GetUserEnrollmentsList(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var enrollments []workshopModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	type EnrollmentWithWorkshop struct {
		workshopModels.Enrollment
		Workshop workshopModels.Workshop `json:"workshop"`
	}

	result := make([]EnrollmentWithWorkshop, len(enrollments))
	for i, enrollment := range enrollments {
		result[i] = EnrollmentWithWorkshop{Enrollment: enrollment}
		database.Database.Db.Where("id = ?", enrollment.WorkshopID).First(&result[i].Workshop)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", result)
}
