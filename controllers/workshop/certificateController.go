package controllers

import (
	"time"

	"sadhaka/database"
	"sadhaka/middleware"
	"sadhaka/models"
	workshopModels "sadhaka/models/workshop"
	"sadhaka/utils"
	workshopValidator "sadhaka/validators/workshop"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestCertificate lets a student request a completion certificate once
// their workshop progress reaches 100%
func RequestCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	workshopID := c.Locals("workshopID").(uint)

	var enrollment workshopModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND workshop_id = ? AND is_deleted = ?", userID, workshopID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "You are not enrolled in this workshop!", nil)
	}

	// Completion gate
	var row workshopModels.StudentProgress
	if err := database.Database.Db.Where("enrollment_id = ? AND is_deleted = ?", enrollment.ID, false).First(&row).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Progress record not found!", nil)
	}
	if !row.IsCompleted {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Complete the workshop before requesting a certificate!", nil)
	}

	var existingCert workshopModels.Certificate
	if err := database.Database.Db.Where("enrollment_id = ? AND is_deleted = ?", enrollment.ID, false).First(&existingCert).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate already issued!", existingCert)
	}

	var existingRequest workshopModels.CertificateRequest
	if err := database.Database.Db.Where("enrollment_id = ? AND status = ? AND is_deleted = ?", enrollment.ID, "PENDING", false).First(&existingRequest).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate request already pending!", existingRequest)
	}

	request := workshopModels.CertificateRequest{
		UserID:       userID,
		WorkshopID:   workshopID,
		EnrollmentID: enrollment.ID,
		Status:       "PENDING",
		RequestedAt:  time.Now(),
	}

	if err := database.Database.Db.Create(&request).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create certificate request!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate requested successfully!", request)
}

// ApproveCertificate resolves a pending certificate request. Approval issues
// the certificate and mails the student.
func ApproveCertificate(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	requestID := c.Locals("requestID").(uint)

	reqData, ok := c.Locals("validatedApproveCertificate").(*workshopValidator.ApproveCertificateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var request workshopModels.CertificateRequest
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", requestID, false).First(&request).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate request not found!", nil)
	}
	if request.Status != "PENDING" {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate request already resolved!", nil)
	}

	now := time.Now()

	if !*reqData.Approve {
		request.Status = "REJECTED"
		request.RejectionReason = reqData.RejectionReason
		if err := database.Database.Db.Save(&request).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update certificate request!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate request rejected.", request)
	}

	certificate := workshopModels.Certificate{
		UserID:            request.UserID,
		WorkshopID:        request.WorkshopID,
		EnrollmentID:      request.EnrollmentID,
		CertificateURL:    reqData.CertificateURL,
		CertificateNumber: "CERT-" + uuid.New().String(),
		IssuedAt:          now,
	}

	tx := database.Database.Db.Begin()
	if err := tx.Create(&certificate).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to issue certificate!", nil)
	}

	request.Status = "APPROVED"
	request.ApprovedAt = &now
	request.ApprovedBy = &adminID
	if err := tx.Save(&request).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update certificate request!", nil)
	}
	tx.Commit()

	var student models.User
	var workshop workshopModels.Workshop
	if database.Database.Db.Where("id = ? AND is_deleted = ?", request.UserID, false).First(&student).Error == nil &&
		database.Database.Db.Where("id = ? AND is_deleted = ?", request.WorkshopID, false).First(&workshop).Error == nil {
		utils.SendCertificateIssuedEmail(student.Name, student.Email, workshop.Title, certificate.CertificateNumber, certificate.CertificateURL)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate issued successfully!", certificate)
}

// GetUserCertificates lists the caller's issued certificates
func GetUserCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var certificates []workshopModels.Certificate
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("issued_at desc").Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", certificates)
}

// GetPendingCertificateRequests lists unresolved requests for the admin panel
func GetPendingCertificateRequests(c *fiber.Ctx) error {
	var requests []workshopModels.CertificateRequest
	if err := database.Database.Db.Where("status = ? AND is_deleted = ?", "PENDING", false).
		Order("requested_at asc").Find(&requests).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificate requests!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate requests fetched successfully!", requests)
}
