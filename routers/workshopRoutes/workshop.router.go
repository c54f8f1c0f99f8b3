package workshopRoutes

import (
	controllers "sadhaka/controllers/workshop"
	"sadhaka/middleware"
	validators "sadhaka/validators/workshop"

	"github.com/gofiber/fiber/v2"
)

// SetupWorkshopRoutes sets up all user-facing workshop routes
func SetupWorkshopRoutes(app *fiber.App) {
	userGroup := app.Group("/workshop")

	// Workshop listing and details (published workshops)
	userGroup.Get("/list", middleware.JWTMiddleware, validators.WorkshopList(), controllers.GetAllWorkshops)
	userGroup.Get("/:id", middleware.JWTMiddleware, validators.GetWorkshopDetail(), controllers.GetWorkshopDetails)

	// Enrollment
	userGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.EnrollWorkshop(), controllers.EnrollInWorkshop)

	// Certificate request
	userGroup.Post("/:id/certificate/request", middleware.JWTMiddleware, validators.RequestCertificate(), controllers.RequestCertificate)

	// User enrollments and certificates
	userEnrollGroup := app.Group("/user")
	userEnrollGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetUserEnrollmentsList)
	userEnrollGroup.Get("/certificates", middleware.JWTMiddleware, controllers.GetUserCertificates)
}
