package main

import (
	"sadhaka/config"
	progressController "sadhaka/controllers/progress"
	workshopController "sadhaka/controllers/workshop"
	"sadhaka/database"
	"sadhaka/progress"
	authRoutes "sadhaka/routers/authRoutes"
	progressRoutes "sadhaka/routers/progressRoutes"
	workshopRoutes "sadhaka/routers/workshopRoutes"
	"sadhaka/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"log"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	// Wire the progress engine: GORM-backed store and catalog source behind
	// the engine's interfaces
	store := database.NewProgressStore(database.Database.Db)
	catalogs := database.NewCatalogSource(database.Database.Db)
	aggregator := progress.NewAggregator(
		config.AppConfig.SessionWeight,
		config.AppConfig.AssignmentWeight,
		config.AppConfig.CompletionThreshold,
	)
	engine := progress.NewEngine(store, catalogs, aggregator)

	progressController.Init(engine)
	workshopController.Init(engine, catalogs)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	workshopRoutes.SetupWorkshopRoutes(app)
	workshopRoutes.SetupAdminWorkshopRoutes(app)
	progressRoutes.SetupProgressRoutes(app)

	// Periodic sweep that persists time-gap unlocks
	utils.StartUnlockScheduler(engine)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
