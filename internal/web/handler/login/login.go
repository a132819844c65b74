package login

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/adminforge/adminforge/internal/config"
	"github.com/adminforge/adminforge/internal/db/models"
	"github.com/adminforge/adminforge/internal/web/handler"
	"github.com/adminforge/adminforge/internal/web/session"
)

const (
	// Path is the path to the login endpoint.
	Path = "/login"
)

// Service is the login handler service.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	validate *validator.Validate
}

// Handler is the login handler.
var Handler = Service{}

var _ handler.Service = (*Service)(nil)

// Request is the login payload.
type Request struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app or db is nil")
	}

	s.db = db
	s.cfg = cfg
	s.validate = validator.New()

	app.Post(Path, s.Post)

	return nil
}

// Post handles the login request and issues a session cookie on success.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(Request)

	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}

	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "username and password are required"})
	}

	// find user in db
	var dbUser models.User
	result := s.db.Where("username = ?", req.Username).First(&dbUser)
	if result.Error != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid username or password"})
	}

	if !dbUser.Active {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "account is inactive"})
	}

	if !dbUser.VerifyPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid username or password"})
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	userSession := &session.Data{
		User: dbUser,
	}

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	// set login cookie
	cookieSettings := &fiber.Cookie{
		Name:     "session",
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)

	log.Info().Str("username", dbUser.Username).Msg("user logged in")

	return c.JSON(fiber.Map{
		"username":  dbUser.Username,
		"superuser": dbUser.Superuser,
	})
}
