package resource

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/adminforge/adminforge/internal/admin/adapter"
	"github.com/adminforge/adminforge/internal/admin/runner"
	"github.com/adminforge/adminforge/internal/admin/scope"
)

// respondError maps domain errors to HTTP responses: missing things read as
// 404 without internal detail, bad input reads as 422 with a field-keyed
// error map, and everything else is a logged 500.
func respondError(c *fiber.Ctx, err error) error {
	var verr *runner.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": verr.Fields})
	}

	switch {
	case errors.Is(err, adapter.ErrNotFound),
		errors.Is(err, runner.ErrUnknownAction),
		errors.Is(err, runner.ErrUnknownTask):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})

	case errors.Is(err, adapter.ErrUnknownField), errors.Is(err, adapter.ErrUnsupportedOp):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"errors": map[string]string{"query": err.Error()},
		})

	case errors.Is(err, scope.ErrInvalidToken), errors.Is(err, scope.ErrScopeMismatch):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"errors": map[string]string{"scope_token": "invalid or expired scope token"},
		})

	case errors.Is(err, scope.ErrInvalidScope):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"errors": map[string]string{"scope": err.Error()},
		})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("request failed")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

// respondValidation returns a 422 with the given field-keyed error map.
func respondValidation(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": fields})
}
