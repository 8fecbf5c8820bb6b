package handlers

import (
	"github.com/ebarcelosf/active-learn-hub-backup/internal/dto"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type BadgeHandler struct {
	svc storage.Service
}

func NewBadgeHandler(svc storage.Service) *BadgeHandler {
	return &BadgeHandler{svc: svc}
}

func (h *BadgeHandler) Save(c *fiber.Ctx) error {
	var req storage.Badge
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.ID == "" {
		return writeError(c, fiber.StatusBadRequest, "badge id is required")
	}

	saved, err := h.svc.SaveBadge(&req)
	if err != nil {
		return writeStorageError(c, err)
	}
	h.svc.LogAction("badge_earned", "badge", saved.ID, auditMeta(c))

	return c.Status(fiber.StatusCreated).JSON(saved)
}

func (h *BadgeHandler) List(c *fiber.Ctx) error {
	badges, err := h.svc.Badges()
	if err != nil {
		return writeStorageError(c, err)
	}
	return c.JSON(badges)
}

func (h *BadgeHandler) AddXP(c *fiber.Ctx) error {
	var req dto.XPRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.svc.UpdateUserXP(req.Delta); err != nil {
		return writeStorageError(c, err)
	}
	h.svc.LogAction("xp_granted", "user", "", auditMeta(c))

	return c.JSON(fiber.Map{"message": "XP updated"})
}
