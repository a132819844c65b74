package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/adminforge/adminforge/internal/auth"
	"github.com/adminforge/adminforge/internal/web/handler/login"
	"github.com/adminforge/adminforge/internal/web/session"
)

// AuthMiddleware is a Fiber middleware that checks for user authentication.
// Unauthenticated requests get a 401; the login endpoint and the
// infrastructure endpoints stay reachable.
func AuthMiddleware(c *fiber.Ctx) error {
	originalURL := strings.ToLower(c.OriginalURL())

	for _, open := range []string{login.Path, "/logout", "/healthz", "/metrics"} {
		if strings.HasPrefix(originalURL, open) {
			return c.Next()
		}
	}

	// get session cookie
	loginCookie := c.Cookies("session")
	if loginCookie == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	// check session validity
	sessData := new(session.Data)
	if err := sessData.Read(loginCookie); err != nil || sessData.User.ID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	// make the subject available to the handlers
	c.Locals(auth.SubjectLocal, &sessData.User)

	return c.Next()
}
