package handlers

import (
	"github.com/ebarcelosf/active-learn-hub-backup/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type ProjectHandler struct {
	svc storage.Service
}

func NewProjectHandler(svc storage.Service) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

func (h *ProjectHandler) Save(c *fiber.Ctx) error {
	var req storage.Project
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	created := req.ID == ""
	saved, err := h.svc.SaveProject(&req)
	if err != nil {
		return writeStorageError(c, err)
	}
	h.svc.LogAction("project_saved", "project", saved.ID, auditMeta(c))

	if created {
		return c.Status(fiber.StatusCreated).JSON(saved)
	}
	return c.JSON(saved)
}

func (h *ProjectHandler) List(c *fiber.Ctx) error {
	projects, err := h.svc.Projects()
	if err != nil {
		return writeStorageError(c, err)
	}
	return c.JSON(projects)
}

func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.svc.DeleteProject(id); err != nil {
		return writeStorageError(c, err)
	}
	h.svc.LogAction("project_deleted", "project", id, auditMeta(c))
	return c.JSON(fiber.Map{"message": "Project deleted"})
}
