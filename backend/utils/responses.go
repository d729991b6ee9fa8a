package utils

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"trackpoint/backend/apperrors"
)

// SuccessResponse структура для успешных ответов
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse структура для ошибок. Errors keeps the list of
// human-readable messages older clients read.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors"`
}

// Success создает успешный JSON ответ
func Success(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error создает JSON ответ с ошибкой
func Error(c *fiber.Ctx, status int, code string, messages ...string) error {
	response := ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Code:    code,
		Errors:  messages,
	}
	if len(messages) > 0 {
		response.Message = messages[0]
	}
	return c.Status(status).JSON(response)
}

// StatusFor maps an error kind to its HTTP status. With legacy set, a
// missing entity answers 400 like the first version of the API did.
func StatusFor(kind apperrors.Kind, legacy bool) int {
	switch kind {
	case apperrors.KindValidation:
		return fiber.StatusBadRequest
	case apperrors.KindNotFound:
		if legacy {
			return fiber.StatusBadRequest
		}
		return fiber.StatusNotFound
	case apperrors.KindConflict:
		return fiber.StatusConflict
	case apperrors.KindUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler turns errors returned by handlers into ErrorResponse bodies.
func ErrorHandler(logger *zap.Logger, legacy bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return Error(c, fe.Code, "http_error", fe.Message)
		}

		kind := apperrors.KindOf(err)
		status := StatusFor(kind, legacy)
		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("kind", string(kind)),
				zap.Error(err))
		}
		return Error(c, status, string(kind), apperrors.MessagesOf(err)...)
	}
}
