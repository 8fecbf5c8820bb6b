package middleware

import (
	"github.com/ebarcelosf/active-learn-hub-backup/internal/config"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JWTProtected guards routes in remote mode. Local mode has no tokens; the
// route table skips this middleware there and the facade enforces the
// stored-user requirement itself.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}
