// Package dashboard serves the admin landing data. Entry is gated by the
// global view grant; the dashboard also registers a virtual content type so
// it stays addressable in per-resource grants like any other resource.
package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/adminforge/adminforge/internal/auth"
	"github.com/adminforge/adminforge/internal/config"
	"github.com/adminforge/adminforge/internal/db/models"
	"github.com/adminforge/adminforge/internal/registry"
	"github.com/adminforge/adminforge/internal/web/handler"
)

const (
	// Path is the path to the dashboard endpoint.
	Path = "/dashboard"

	// AppLabel and ModelSlug identify the dashboard's virtual content type.
	AppLabel  = "dashboard"
	ModelSlug = "main"
)

// Service is the dashboard handler service.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	registry    *registry.Registry
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service, reg *registry.Registry) {
	if app == nil || cfg == nil || db == nil || authService == nil || reg == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService
	s.registry = reg

	app.Get(Path, auth.RequireGlobal(authService, models.ActionView), s.Get)
}

// Get returns the landing data: the caller's identity and the content types
// the caller may at least view. The global gate sits on the route; here only
// the per-resource visibility of each content type is decided.
func (s *Service) Get(c *fiber.Ctx) error {
	user, ok := auth.SubjectFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	type entry struct {
		DottedName string `json:"dotted_name"`
		AppLabel   string `json:"app_label"`
		ModelSlug  string `json:"model_slug"`
		Virtual    bool   `json:"virtual"`
	}

	visible := make([]entry, 0)

	for _, ct := range s.registry.Entries() {
		ok, err := s.authService.CheckCodename(user, ct.DottedName+".view", s.registry)
		if err != nil {
			log.Error().Err(err).Str("content_type", ct.DottedName).Msg("failed to check view permission")
			continue
		}

		if ok {
			visible = append(visible, entry{
				DottedName: ct.DottedName,
				AppLabel:   ct.AppLabel,
				ModelSlug:  ct.ModelSlug,
				Virtual:    ct.Virtual,
			})
		}
	}

	return c.JSON(fiber.Map{
		"title":         s.cfg.Title,
		"username":      user.Username,
		"superuser":     user.Superuser,
		"content_types": visible,
	})
}
