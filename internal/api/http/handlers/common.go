package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-service/internal/auth"
	"github.com/spec-kit/parking-service/internal/domain"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

func actorFromContext(c *fiber.Ctx) (domain.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return domain.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return principal.Actor(), nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func data(c *fiber.Ctx, status int, payload any) error {
	return c.Status(status).JSON(fiber.Map{"data": payload})
}
