package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"trackpoint/backend/config"
	"trackpoint/backend/controllers"
	"trackpoint/backend/middleware"
	"trackpoint/backend/progression"
	"trackpoint/backend/repository"
)

func SetupRoutes(app *fiber.App, store repository.Store, engine *progression.Engine, cfg *config.Config, logger *zap.Logger) {
	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)

	// User routes
	authController := controllers.NewAuthController(store, cfg, logger)
	userController := controllers.NewUserController(store, cfg, logger)
	users := app.Group("/users")
	users.Post("/register", authController.Register)
	users.Post("/login", authController.Login)
	users.Post("/logout", authController.Logout)
	users.Get("/session", authMiddleware, authController.Session)
	users.Get("/find/:userID", userController.GetUser)
	users.Delete("/:userID", userController.DeleteUser)

	tracksController := controllers.NewTracksController(store, cfg, logger)
	progressController := controllers.NewProgressController(engine, cfg)
	tracks := app.Group("/tracks")

	// Fixed segments first, /:userID and /:trackID would swallow them
	tracks.Post("/suggestion", tracksController.CreateSuggestion)
	tracks.Get("/featured", tracksController.GetFeaturedTracks)
	tracks.Post("/nextCheckpoint/:userID/:trackID", progressController.NextCheckpoint)

	// Progress routes
	tracks.Get("/user/:userID", progressController.GetUserTracks)
	tracks.Get("/user/:userID/overview", progressController.GetProgressOverview)
	tracks.Get("/user/:userID/:trackID", progressController.GetUserTrack)
	tracks.Post("/user/:userID/:trackID/:checkpointID/:taskID", progressController.UpdateTask)

	// Catalog routes
	tracks.Post("/", tracksController.CreateTrack)
	tracks.Get("/", tracksController.GetTracks)
	tracks.Get("/:trackID", tracksController.GetTrack)
	tracks.Put("/:trackID/featured", tracksController.SetFeatured)
	tracks.Post("/:userID", progressController.AssignTrack)
}
