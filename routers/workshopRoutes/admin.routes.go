package workshopRoutes

import (
	progressControllers "sadhaka/controllers/progress"
	controllers "sadhaka/controllers/workshop"
	"sadhaka/middleware"
	progressValidators "sadhaka/validators/progress"
	validators "sadhaka/validators/workshop"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminWorkshopRoutes sets up all admin workshop management routes
func SetupAdminWorkshopRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/workshop", middleware.JWTMiddleware, middleware.AdminMiddleware)

	// Workshop CRUD
	adminGroup.Post("/", validators.CreateWorkshop(), controllers.CreateWorkshop)
	adminGroup.Put("/:id", validators.UpdateWorkshop(), controllers.UpdateWorkshop)
	adminGroup.Post("/:id/publish", validators.PublishWorkshop(), controllers.PublishWorkshop)

	// Assignment and live-session management
	adminGroup.Post("/:id/assignment", validators.CreateAssignment(), controllers.CreateAssignment)
	adminGroup.Post("/:id/meeting", validators.CreateMeeting(), controllers.CreateSessionMeeting)

	// Assignment review and student progress
	reviewGroup := app.Group("/admin/assignment", middleware.JWTMiddleware, middleware.AdminMiddleware)
	reviewGroup.Put("/:enrollment_id/review", progressValidators.ReviewAssignment(), progressControllers.ReviewAssignment)

	studentGroup := app.Group("/admin/student", middleware.JWTMiddleware, middleware.AdminMiddleware)
	studentGroup.Get("/:enrollment_id/progress", progressValidators.GetProgress(), progressControllers.GetStudentProgressAdmin)

	// Certificate management
	certGroup := app.Group("/admin/certificate", middleware.JWTMiddleware, middleware.AdminMiddleware)
	certGroup.Get("/pending", controllers.GetPendingCertificateRequests)
	certGroup.Put("/:id/approve", validators.ApproveCertificate(), controllers.ApproveCertificate)
}
