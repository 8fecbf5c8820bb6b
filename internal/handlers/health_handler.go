package handlers

import (
	"time"

	"github.com/ebarcelosf/active-learn-hub-backup/internal/config"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/database"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	cfg *config.Config
	db  *gorm.DB // nil in local mode
}

func NewHealthHandler(cfg *config.Config, db *gorm.DB) *HealthHandler {
	return &HealthHandler{cfg: cfg, db: db}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	resp := dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Mode:      string(h.cfg.Mode),
	}

	if h.db != nil {
		resp.DB = "up"
		if err := database.Ping(h.db); err != nil {
			resp.Status = "degraded"
			resp.DB = "down"
		}
	}

	status := fiber.StatusOK
	if resp.Status != "ok" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(resp)
}
