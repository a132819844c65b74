// Package resource wires registered descriptors into the per-resource
// endpoint set: list, CRUD, bulk actions with scope tokens, and task status.
// The handlers are pure composition: permission gate, pipeline shape,
// adapter call. All behavior lives in descriptor hooks and the permission
// checker.
package resource

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/adminforge/adminforge/internal/admin/descriptor"
	"github.com/adminforge/adminforge/internal/admin/runner"
	"github.com/adminforge/adminforge/internal/auth"
	"github.com/adminforge/adminforge/internal/config"
	"github.com/adminforge/adminforge/internal/db/models"
	"github.com/adminforge/adminforge/internal/registry"
)

// Service is the resource handler service.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	registry    *registry.Registry
	runner      *runner.Runner
	descriptors map[string]*descriptor.Descriptor
}

// Handler is the resource handler.
var Handler = Service{}

// Init validates the descriptors and registers the endpoint set under
// /{app}/{model}. Descriptor mistakes surface here, at startup, never at
// request time.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service, reg *registry.Registry, run *runner.Runner, descs []*descriptor.Descriptor) error {
	if app == nil || cfg == nil || db == nil || authService == nil || reg == nil || run == nil {
		return errors.New("app, cfg, db, auth service, registry or runner is nil")
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService
	s.registry = reg
	s.runner = run
	s.descriptors = make(map[string]*descriptor.Descriptor, len(descs))

	for _, d := range descs {
		if err := d.Validate(); err != nil {
			return err
		}

		// virtual content types have no storage and no routes
		if d.Resource == nil {
			continue
		}

		if err := checkPipelines(d); err != nil {
			return err
		}

		s.descriptors[d.DottedName()] = d
	}

	group := app.Group("/:app/:model")

	group.Get("/_list", s.List)
	group.Get("/_schema", s.Schema)
	group.Get("/_actions", s.Actions)
	group.Post("/_actions/token", s.ActionToken)
	group.Post("/_actions/preview", s.ActionPreview)
	group.Post("/_actions/:action", s.ActionRun)
	group.Get("/_tasks/:handle", s.TaskStatus)
	group.Post("/", s.Create)
	group.Get("/:pk", s.Retrieve)
	group.Put("/:pk", s.Update)
	group.Patch("/:pk", s.Update)
	group.Delete("/:pk", s.Delete)

	return nil
}

// checkPipelines dry-runs every queryset shape once. Shape building is lazy
// and never touches storage, so a hook returning no queryset fails startup
// here instead of the first request.
func checkPipelines(d *descriptor.Descriptor) error {
	if _, err := d.ListQuery(nil); err != nil {
		return err
	}

	if _, err := d.ObjectQuery(nil); err != nil {
		return err
	}

	if _, err := d.FormQuery(nil); err != nil {
		return err
	}

	return nil
}

// lookup resolves the request's descriptor and content type. Unknown pairs
// read as plain not-found; so does anything the registry has not finalized.
func (s *Service) lookup(c *fiber.Ctx) (*descriptor.Descriptor, *models.ContentType, bool) {
	app := c.Params("app")
	model := c.Params("model")

	d, ok := s.descriptors[app+"."+model]
	if !ok {
		_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		return nil, nil, false
	}

	ct, ok := s.registry.Resolve(app, model)
	if !ok {
		_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		return nil, nil, false
	}

	return d, &ct, true
}

// authorize gates the request on a per-resource permission.
func (s *Service) authorize(c *fiber.Ctx, action models.PermissionAction, contentTypeID uint) (*models.User, bool) {
	user, ok := auth.SubjectFromLocals(c)
	if !ok {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		return nil, false
	}

	allowed, err := s.authService.Check(user, action, &contentTypeID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Str("action", string(action)).
			Msg("failed to check permission")

		_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})

		return nil, false
	}

	if !allowed {
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		return nil, false
	}

	return user, true
}
