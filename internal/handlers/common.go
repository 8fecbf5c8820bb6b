package handlers

import (
	"errors"

	"github.com/ebarcelosf/active-learn-hub-backup/internal/dto"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/scope"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/storage"
	"github.com/gofiber/fiber/v2"
)

func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// storageStatus maps the facade's sentinel errors onto HTTP status codes.
func storageStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, storage.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, storage.ErrInvalidCredentials),
		errors.Is(err, storage.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func writeStorageError(c *fiber.Ctx, err error) error {
	status := storageStatus(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "Internal server error"
	}
	return writeError(c, status, message)
}

// auditMeta builds the metadata map for LogAction from the request context.
// The bearer subject is included when a route guard has verified one.
func auditMeta(c *fiber.Ctx) map[string]any {
	meta := map[string]any{"user_agent": c.Get("User-Agent")}
	if uid, err := scope.UserID(c); err == nil {
		meta["request_user"] = uid.String()
	}
	return meta
}
