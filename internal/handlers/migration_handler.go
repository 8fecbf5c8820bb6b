package handlers

import (
	"errors"

	"github.com/ebarcelosf/active-learn-hub-backup/internal/dto"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/migration"
	"github.com/gofiber/fiber/v2"
)

// MigrationHandler exposes the one-shot local-to-remote import. Only wired
// in remote mode; local mode has nowhere to migrate to.
type MigrationHandler struct {
	mig *migration.Migrator
}

func NewMigrationHandler(mig *migration.Migrator) *MigrationHandler {
	return &MigrationHandler{mig: mig}
}

func (h *MigrationHandler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"completed": h.mig.Completed()})
}

func (h *MigrationHandler) Run(c *fiber.Ctx) error {
	var req dto.MigrateRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	report, err := h.mig.Run(migration.ConfirmFunc(func(string) bool { return req.Confirm }))
	if err != nil {
		switch {
		case errors.Is(err, migration.ErrAlreadyCompleted), errors.Is(err, migration.ErrDeclined):
			return writeError(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, migration.ErrNoSession):
			return writeError(c, fiber.StatusUnauthorized, err.Error())
		default:
			return writeError(c, fiber.StatusInternalServerError, "Migration failed")
		}
	}

	return c.JSON(report)
}

func (h *MigrationHandler) ClearLocal(c *fiber.Ctx) error {
	if err := h.mig.ClearLocal(); err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to clear local data")
	}
	return c.JSON(fiber.Map{"message": "Local data cleared"})
}
