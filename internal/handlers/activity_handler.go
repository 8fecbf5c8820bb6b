package handlers

import (
	"github.com/ebarcelosf/active-learn-hub-backup/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type ActivityHandler struct {
	svc storage.Service
}

func NewActivityHandler(svc storage.Service) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

func (h *ActivityHandler) Save(c *fiber.Ctx) error {
	var req storage.Activity
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	created := req.ID == ""
	saved, err := h.svc.SaveActivity(&req)
	if err != nil {
		return writeStorageError(c, err)
	}
	h.svc.LogAction("activity_saved", "activity", saved.ID, auditMeta(c))

	if created {
		return c.Status(fiber.StatusCreated).JSON(saved)
	}
	return c.JSON(saved)
}

func (h *ActivityHandler) List(c *fiber.Ctx) error {
	activities, err := h.svc.Activities(c.Query("projectId"))
	if err != nil {
		return writeStorageError(c, err)
	}
	return c.JSON(activities)
}
