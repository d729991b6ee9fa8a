package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"trackpoint/backend/config"
	"trackpoint/backend/middleware"
	"trackpoint/backend/progression"
	"trackpoint/backend/repository"
	"trackpoint/backend/utils"
)

// NewApp builds the fiber application with middleware and every route
// registered.
func NewApp(store repository.Store, cfg *config.Config, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "trackpoint",
		ErrorHandler: utils.ErrorHandler(logger, cfg.LegacyStatusCodes),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + middleware.RequestIDHeader,
		AllowCredentials: cfg.CORSOrigins != "*",
	}))
	app.Use(middleware.LoggingMiddleware(logger.Named("http")))
	app.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	SetupRoutes(app, store, progression.NewEngine(store, logger), cfg, logger)
	return app
}
