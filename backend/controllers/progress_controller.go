package controllers

import (
	"github.com/gofiber/fiber/v2"

	"trackpoint/backend/apperrors"
	"trackpoint/backend/config"
	"trackpoint/backend/models"
	"trackpoint/backend/progression"
)

type ProgressController struct {
	Engine *progression.Engine
	Cfg    *config.Config
}

func NewProgressController(engine *progression.Engine, cfg *config.Config) *ProgressController {
	return &ProgressController{Engine: engine, Cfg: cfg}
}

// AssignTrack godoc
// @Summary Assign a track to a user
// @Description Appends an independent copy of the track to the user's list. A body holding only
// @Description an _id copies that catalog track.
// @Tags progress
// @Accept json
// @Produce json
// @Param userID path string true "User id"
// @Param track body models.Track true "Track or catalog reference"
// @Success 200 {array} models.Track
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /tracks/{userID} [post]
func (pc *ProgressController) AssignTrack(c *fiber.Ctx) error {
	var input models.Track
	if err := c.BodyParser(&input); err != nil {
		return apperrors.Validation("Cannot parse JSON")
	}

	userID := c.Params("userID")
	if _, err := pc.Engine.AssignTrack(c.UserContext(), userID, input); err != nil {
		return err
	}

	tracks, err := pc.Engine.ListUserTracks(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(tracks)
}

func (pc *ProgressController) GetUserTracks(c *fiber.Ctx) error {
	tracks, err := pc.Engine.ListUserTracks(c.UserContext(), c.Params("userID"))
	if err != nil {
		return err
	}
	return c.JSON(tracks)
}

func (pc *ProgressController) GetUserTrack(c *fiber.Ctx) error {
	track, err := pc.Engine.GetUserTrack(c.UserContext(), c.Params("userID"), c.Params("trackID"))
	if err != nil {
		return err
	}
	return c.JSON(track)
}

// GetProgressOverview godoc
// @Summary Get progress overview
// @Description Returns summary of user's progress across every assigned track
// @Tags progress
// @Produce json
// @Param userID path string true "User id"
// @Success 200 {object} models.ProgressOverview
// @Failure 400 {object} utils.ErrorResponse
// @Router /tracks/user/{userID}/overview [get]
func (pc *ProgressController) GetProgressOverview(c *fiber.Ctx) error {
	overview, err := pc.Engine.Overview(c.UserContext(), c.Params("userID"))
	if err != nil {
		return err
	}
	return c.JSON(overview)
}

// NextCheckpoint godoc
// @Summary Advance to the next checkpoint
// @Description Starts the track, moves to the following checkpoint or finishes the track.
// @Description Answers 409 when another request advanced the same track first.
// @Tags progress
// @Produce json
// @Param userID path string true "User id"
// @Param trackID path string true "Instance id or catalog id"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /tracks/nextCheckpoint/{userID}/{trackID} [post]
func (pc *ProgressController) NextCheckpoint(c *fiber.Ctx) error {
	result, err := pc.Engine.AdvanceCheckpoint(c.UserContext(), c.Params("userID"), c.Params("trackID"))
	if err != nil {
		return err
	}

	message := "success"
	if result.Status == progression.StatusFinished {
		message = "track finished"
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":           message,
		"status":            result.Status,
		"currentCheckpoint": result.Track.CurrentCheckpoint,
		"completed":         result.Track.Completed,
	})
}

// UpdateTask godoc
// @Summary Replace one task
// @Description Overwrites title, description and completed of the addressed task.
// @Tags progress
// @Accept json
// @Produce json
// @Param task body models.Task true "New task fields"
// @Success 201 {object} models.Task
// @Failure 400 {object} utils.ErrorResponse
// @Router /tracks/user/{userID}/{trackID}/{checkpointID}/{taskID} [post]
func (pc *ProgressController) UpdateTask(c *fiber.Ctx) error {
	var input models.Task
	if err := c.BodyParser(&input); err != nil {
		return apperrors.Validation("Cannot parse JSON")
	}

	task, err := pc.Engine.UpdateTask(c.UserContext(), models.TaskRef{
		UserID:       c.Params("userID"),
		TrackID:      c.Params("trackID"),
		CheckpointID: c.Params("checkpointID"),
		TaskID:       c.Params("taskID"),
	}, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}
