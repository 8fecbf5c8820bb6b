package handlers

import (
	"errors"

	"github.com/ebarcelosf/active-learn-hub-backup/internal/auth"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/dto"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	svc      storage.Service
	sessions *auth.SessionContext // nil in local mode
}

func NewAuthHandler(svc storage.Service, sessions *auth.SessionContext) *AuthHandler {
	return &AuthHandler{svc: svc, sessions: sessions}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.svc.Signup(req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return writeError(c, fiber.StatusConflict, err.Error())
		}
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{User: *user, Token: h.token()})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		return writeStorageError(c, err)
	}

	return c.JSON(dto.AuthResponse{User: *user, Token: h.token()})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.svc.Logout(); err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to logout")
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.svc.CurrentUser()
	if err != nil {
		return writeStorageError(c, err)
	}
	if user == nil {
		return writeError(c, fiber.StatusUnauthorized, "Not authenticated")
	}
	return c.JSON(user)
}

func (h *AuthHandler) token() string {
	if h.sessions == nil {
		return ""
	}
	return h.sessions.Token()
}
