// Package web assembles the fiber application: middleware, fixed handlers
// and the generated per-resource endpoints.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/adminforge/adminforge/internal/admin/descriptor"
	"github.com/adminforge/adminforge/internal/admin/runner"
	"github.com/adminforge/adminforge/internal/admin/scope"
	"github.com/adminforge/adminforge/internal/auth"
	"github.com/adminforge/adminforge/internal/config"
	fiberlogger "github.com/adminforge/adminforge/internal/logger/adapter/fiber"
	"github.com/adminforge/adminforge/internal/registry"
	"github.com/adminforge/adminforge/internal/web/handler/dashboard"
	"github.com/adminforge/adminforge/internal/web/handler/login"
	"github.com/adminforge/adminforge/internal/web/handler/logout"
	"github.com/adminforge/adminforge/internal/web/handler/resource"
)

// CheckAlivePath is the health check endpoint.
const CheckAlivePath = "/healthz"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
	runner       *runner.Runner
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so the
	// health check returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration, registry and
// descriptor set. The registry must already be finalized.
func New(cfg *config.Config, db *gorm.DB, reg *registry.Registry, descs []*descriptor.Descriptor) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	if reg == nil {
		panic("registry cannot be nil")
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "AdminForge",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	// access logging
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	// init web service
	service := &Service{
		cfg: cfg,
		App: app,
		db:  db,
	}
	service.alive.Store(true)

	// infrastructure endpoints, outside authentication
	app.Get(CheckAlivePath, service.checkAlive)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// session auth middleware
	app.Use(AuthMiddleware)

	authService := auth.NewService(db)
	service.authService = authService

	codec := scope.NewTokenCodec(
		cfg.Admin.ScopeTokenSecret,
		time.Duration(cfg.Admin.ScopeTokenTTL)*time.Second,
	)
	service.runner = runner.New(codec, cfg.Admin.BatchThreshold, cfg.Admin.BatchSize, runner.NewTaskStore())

	// init handlers (they register their own routes with permission checks)
	if err := login.Handler.Init(app, cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to init login handler")
	}

	logout.Handler.Init(app, cfg)
	dashboard.Handler.Init(app, cfg, db, authService, reg)

	if err := resource.Handler.Init(app, cfg, db, authService, reg, service.runner, descs); err != nil {
		log.Fatal().Err(err).Msg("failed to init resource handlers")
	}

	// redirect root to dashboard
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard")
	})

	return service
}

// checkAlive reports 200 while the service accepts traffic and 503 during
// the graceful shutdown window.
func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("ok")
}
