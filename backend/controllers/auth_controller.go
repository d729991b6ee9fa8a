package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"trackpoint/backend/apperrors"
	"trackpoint/backend/config"
	"trackpoint/backend/models"
	"trackpoint/backend/repository"
	"trackpoint/backend/utils"
)

const passwordCost = 12

type AuthController struct {
	Store  repository.Store
	Cfg    *config.Config
	Logger *zap.Logger
}

func NewAuthController(store repository.Store, cfg *config.Config, logger *zap.Logger) *AuthController {
	return &AuthController{Store: store, Cfg: cfg, Logger: logger}
}

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// [+] Register godoc
// @Summary Register a new user
// @Description Creates a new user account with an empty track list
// @Tags auth
// @Accept json
// @Produce json
// @Param user body credentials true "User registration data"
// @Success 201 {object} models.User
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /users/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input credentials
	if err := c.BodyParser(&input); err != nil {
		return apperrors.Validation("Cannot parse JSON")
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), passwordCost)
	if err != nil {
		return apperrors.Store("hash password", err)
	}

	user := models.User{
		ID: models.NewID(),
		UserInfo: models.UserInfo{
			Email:    input.Email,
			Password: string(hashedPassword),
			Created:  time.Now().UTC(),
		},
		Tracks: []models.Track{},
	}
	if err := ac.Store.CreateUser(c.UserContext(), &user); err != nil {
		return err
	}

	ac.Logger.Info("user registered", zap.String("user_id", user.ID))
	return c.Status(fiber.StatusCreated).JSON(user)
}

// [+] Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body credentials true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /users/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input credentials
	if err := c.BodyParser(&input); err != nil {
		return apperrors.Validation("Cannot parse JSON")
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || input.Password == "" {
		return apperrors.Validation("Please enter all fields")
	}

	// Find user
	user, err := ac.Store.GetUserByEmail(c.UserContext(), input.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Unauthorized("Invalid credentials")
		}
		return err
	}

	// Check password
	if err := bcrypt.CompareHashAndPassword([]byte(user.UserInfo.Password), []byte(input.Password)); err != nil {
		return apperrors.Unauthorized("Invalid credentials")
	}

	// Generate JWT token
	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return apperrors.Store("sign token", err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout is a no-op for bearer tokens; clients drop the token.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusCreated)
}

// Session answers with the user id carried by the token. Routed behind
// AuthMiddleware.
func (ac *AuthController) Session(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	return c.JSON(fiber.Map{"user_id": userID})
}
