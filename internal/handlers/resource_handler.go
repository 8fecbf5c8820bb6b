package handlers

import (
	"github.com/ebarcelosf/active-learn-hub-backup/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type ResourceHandler struct {
	svc storage.Service
}

func NewResourceHandler(svc storage.Service) *ResourceHandler {
	return &ResourceHandler{svc: svc}
}

func (h *ResourceHandler) Save(c *fiber.Ctx) error {
	var req storage.Resource
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	created := req.ID == ""
	saved, err := h.svc.SaveResource(&req)
	if err != nil {
		return writeStorageError(c, err)
	}
	h.svc.LogAction("resource_saved", "resource", saved.ID, auditMeta(c))

	if created {
		return c.Status(fiber.StatusCreated).JSON(saved)
	}
	return c.JSON(saved)
}

func (h *ResourceHandler) List(c *fiber.Ctx) error {
	resources, err := h.svc.Resources(c.Query("projectId"))
	if err != nil {
		return writeStorageError(c, err)
	}
	return c.JSON(resources)
}
