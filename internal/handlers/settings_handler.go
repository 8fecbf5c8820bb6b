package handlers

import (
	"github.com/ebarcelosf/active-learn-hub-backup/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type SettingsHandler struct {
	svc storage.Service
}

func NewSettingsHandler(svc storage.Service) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.svc.Settings()
	if err != nil {
		return writeStorageError(c, err)
	}
	return c.JSON(settings)
}

func (h *SettingsHandler) Save(c *fiber.Ctx) error {
	var req storage.Settings
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.svc.SaveSettings(&req); err != nil {
		return writeStorageError(c, err)
	}
	h.svc.LogAction("settings_saved", "settings", "", auditMeta(c))

	return c.JSON(fiber.Map{"message": "Settings saved"})
}
