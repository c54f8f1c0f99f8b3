package progressRoutes

import (
	controllers "sadhaka/controllers/progress"
	"sadhaka/middleware"
	validators "sadhaka/validators/progress"

	"github.com/gofiber/fiber/v2"
)

// SetupProgressRoutes sets up the student progress routes. Every route is
// scoped to one enrollment and checks ownership in the controller.
func SetupProgressRoutes(app *fiber.App) {
	progressGroup := app.Group("/progress", middleware.JWTMiddleware)

	progressGroup.Get("/:enrollment_id", validators.GetProgress(), controllers.GetProgress)
	progressGroup.Post("/:enrollment_id/session/watch", validators.SessionWatch(), controllers.RecordSessionWatch)
	progressGroup.Post("/:enrollment_id/session/complete", validators.SessionComplete(), controllers.RecordSessionCompletion)
	progressGroup.Post("/:enrollment_id/assignment", validators.SubmitAssignment(), controllers.SubmitAssignment)
	progressGroup.Post("/:enrollment_id/rating", validators.SubmitRating(), controllers.SubmitRating)
	progressGroup.Post("/:enrollment_id/testimony", validators.SubmitTestimony(), controllers.SubmitTestimony)
}
