package server

import (
	"errors"
	"log/slog"

	"psocial/internal/models"
	"psocial/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func statusFor(code string) int {
	switch code {
	case models.CodeInvalidCredentials, models.CodeNotLoggedIn:
		return fiber.StatusUnauthorized
	case models.CodeAccountDeactivated, models.CodeNotOwner, models.CodeAdminOnly:
		return fiber.StatusForbidden
	case models.CodeAccountNotFound, models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeUserExists:
		return fiber.StatusConflict
	case models.CodeWrongAnswer, models.CodeValidation:
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// respondWithError writes err with the status its AppError code maps to.
// Errors that are not AppErrors are reported as internal errors.
func respondWithError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}

	status := statusFor(appErr.Code)
	resp := ErrorResponse{Error: appErr.Message, Code: appErr.Code}
	if status == fiber.StatusInternalServerError {
		observability.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	} else if appErr.Err != nil {
		resp.Details = appErr.Err.Error()
	}
	return c.Status(status).JSON(resp)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return respondWithError(c, models.NewValidationError(msg))
}
