package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"trackpoint/backend/apperrors"
	"trackpoint/backend/config"
	"trackpoint/backend/models"
	"trackpoint/backend/repository"
	"trackpoint/backend/utils"
)

type TracksController struct {
	Store  repository.Store
	Cfg    *config.Config
	Logger *zap.Logger
}

func NewTracksController(store repository.Store, cfg *config.Config, logger *zap.Logger) *TracksController {
	return &TracksController{Store: store, Cfg: cfg, Logger: logger}
}

// CreateTrack godoc
// @Summary Add a catalog track
// @Description Stores a new track template. Checkpoint and task ids are generated by the server.
// @Tags tracks
// @Accept json
// @Produce json
// @Param track body models.Track true "Track with checkpoints and tasks"
// @Success 201 {object} models.Track
// @Failure 400 {object} utils.ErrorResponse
// @Router /tracks [post]
func (tc *TracksController) CreateTrack(c *fiber.Ctx) error {
	var input models.Track
	if err := c.BodyParser(&input); err != nil {
		return apperrors.Validation("Cannot parse JSON")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}

	track := input.Instantiate()
	track.Featured = input.Featured
	if err := tc.Store.CreateTrack(c.UserContext(), &track); err != nil {
		return err
	}

	tc.Logger.Info("catalog track created",
		zap.String("track_id", track.ID),
		zap.String("author", track.Author),
		zap.Int("checkpoints", len(track.Checkpoints)))
	return c.Status(fiber.StatusCreated).JSON(track)
}

// GetTracks godoc
// @Summary List catalog tracks
// @Tags tracks
// @Produce json
// @Param search query string false "Matched against title and description"
// @Param author query string false "Exact author"
// @Param sort query string false "newest|title"
// @Success 200 {array} models.Track
// @Failure 400 {object} utils.ErrorResponse
// @Router /tracks [get]
func (tc *TracksController) GetTracks(c *fiber.Ctx) error {
	sort := c.Query("sort")
	if sort != "" && sort != "newest" && sort != "title" {
		return apperrors.Validation("sort must be one of newest, title")
	}

	tracks, err := tc.Store.ListTracks(c.UserContext(), repository.TrackFilter{
		Search: c.Query("search"),
		Author: c.Query("author"),
		Sort:   sort,
	})
	if err != nil {
		return err
	}
	return c.JSON(tracks)
}

func (tc *TracksController) GetFeaturedTracks(c *fiber.Ctx) error {
	tracks, err := tc.Store.ListTracks(c.UserContext(), repository.TrackFilter{FeaturedOnly: true})
	if err != nil {
		return err
	}
	return c.JSON(tracks)
}

func (tc *TracksController) GetTrack(c *fiber.Ctx) error {
	trackID := c.Params("trackID")
	if err := utils.RequireIDs("trackID", trackID); err != nil {
		return err
	}

	track, err := tc.Store.GetTrack(c.UserContext(), trackID)
	if err != nil {
		return err
	}
	return c.JSON(track)
}

// SetFeatured godoc
// @Summary Toggle the featured flag of a catalog track
// @Tags tracks
// @Accept json
// @Produce json
// @Param trackID path string true "Track id"
// @Success 200 {object} models.Track
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /tracks/{trackID}/featured [put]
func (tc *TracksController) SetFeatured(c *fiber.Ctx) error {
	trackID := c.Params("trackID")
	if err := utils.RequireIDs("trackID", trackID); err != nil {
		return err
	}

	var input struct {
		Featured *bool `json:"featured" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return apperrors.Validation("Cannot parse JSON")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}

	track, err := tc.Store.SetFeatured(c.UserContext(), trackID, *input.Featured)
	if err != nil {
		return err
	}
	return c.JSON(track)
}

// CreateSuggestion godoc
// @Summary Suggest a new track
// @Tags tracks
// @Accept json
// @Produce json
// @Param suggestion body models.Suggestion true "Free text suggestion"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /tracks/suggestion [post]
func (tc *TracksController) CreateSuggestion(c *fiber.Ctx) error {
	var input models.Suggestion
	if err := c.BodyParser(&input); err != nil {
		return apperrors.Validation("Cannot parse JSON")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}

	input.ID = models.NewID()
	if err := tc.Store.CreateSuggestion(c.UserContext(), &input); err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusCreated, "suggestion received", input)
}
