package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/adminforge/adminforge/internal/db/models"
)

// SubjectLocal is the fiber.Locals key holding the authenticated user.
const SubjectLocal = "subject"

// SubjectFromLocals returns the authenticated user stored by the session
// middleware, if any.
func SubjectFromLocals(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(SubjectLocal).(*models.User)
	if !ok || user == nil || user.ID == 0 {
		return nil, false
	}

	return user, true
}

// RequireGlobal creates Fiber middleware that requires a global grant of the
// given action. Used for fixed surfaces (dashboard, settings-style content)
// that are access-controlled without being tied to a content type.
func RequireGlobal(authService *Service, action models.PermissionAction) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := SubjectFromLocals(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		allowed, err := authService.Check(user, action, nil)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", user.ID).Str("action", string(action)).
				Msg("failed to check global permission")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}

		if !allowed {
			log.Warn().Uint64("user_id", user.ID).Str("action", string(action)).
				Msg("user lacks required global permission")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		}

		return c.Next()
	}
}
