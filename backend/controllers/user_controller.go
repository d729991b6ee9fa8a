package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"trackpoint/backend/config"
	"trackpoint/backend/repository"
	"trackpoint/backend/utils"
)

type UserController struct {
	Store  repository.Store
	Cfg    *config.Config
	Logger *zap.Logger
}

func NewUserController(store repository.Store, cfg *config.Config, logger *zap.Logger) *UserController {
	return &UserController{Store: store, Cfg: cfg, Logger: logger}
}

// GetUser godoc
// @Summary Fetch a user
// @Description Returns the user with every assigned track
// @Tags users
// @Produce json
// @Param userID path string true "User id"
// @Success 200 {object} models.User
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /users/find/{userID} [get]
func (uc *UserController) GetUser(c *fiber.Ctx) error {
	userID := c.Params("userID")
	if err := utils.RequireIDs("userID", userID); err != nil {
		return err
	}

	user, err := uc.Store.GetUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Deletes the user together with every track instance it owns
// @Tags users
// @Produce json
// @Param userID path string true "User id"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /users/{userID} [delete]
func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	userID := c.Params("userID")
	if err := utils.RequireIDs("userID", userID); err != nil {
		return err
	}

	if err := uc.Store.DeleteUser(c.UserContext(), userID); err != nil {
		return err
	}

	uc.Logger.Info("user deleted", zap.String("user_id", userID))
	return utils.Success(c, fiber.StatusOK, "user deleted", nil)
}
