// Package daemon bootstraps the service: database, migrations, content-type
// registry, built-in descriptors and the web service.
package daemon

import (
	"fmt"

	"github.com/gofiber/storage"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/adminforge/adminforge/internal/config"
	"github.com/adminforge/adminforge/internal/db/dsn"
	"github.com/adminforge/adminforge/internal/db/models"
	"github.com/adminforge/adminforge/internal/registry"
	"github.com/adminforge/adminforge/internal/web"
	"github.com/adminforge/adminforge/internal/web/handler/dashboard"
	"github.com/adminforge/adminforge/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start runs the web service until a shutdown signal arrives.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := gorm.Open(openDialector(cfg), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.UserGroup{},
		&models.ContentType{},
		&models.UserPermission{},
		&models.GroupPermission{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	seed(cfg, db)

	// registry and built-in descriptors
	reg := registry.New()
	descs := builtinDescriptors(db)

	for _, d := range descs {
		if _, err = reg.Register(d.AppLabel, d.ModelSlug, d.DottedName(), false); err != nil {
			log.Fatal().Err(err).Str("content_type", d.DottedName()).Msg("failed to register content type")
			return nil
		}
	}

	// the dashboard is a virtual content type: no storage, but grantable
	if _, err = reg.Register(dashboard.AppLabel, dashboard.ModelSlug,
		dashboard.AppLabel+"."+dashboard.ModelSlug, true); err != nil {
		log.Fatal().Err(err).Msg("failed to register dashboard content type")
		return nil
	}

	if err = reg.Finalize(db); err != nil {
		log.Fatal().Err(err).Msg("failed to finalize content-type registry")
		return nil
	}

	seedGroups(db, reg)

	session.Init(sessionStorage(cfg))

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, reg, descs),
	}
}

// openDialector picks the gorm driver for the configured engine.
func openDialector(cfg *config.Config) gorm.Dialector {
	if cfg.DB.GormEngine == "postgres" {
		return gormpostgres.Open(dsn.Create(cfg))
	}

	return gormmysql.Open(dsn.Create(cfg))
}

// sessionStorage picks the session backend for the configured engine.
func sessionStorage(cfg *config.Config) storage.Storage {
	if cfg.DB.GormEngine == "postgres" {
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "sessions",
		})
	}

	return sessionmysql.New(sessionmysql.Config{
		ConnectionURI: dsn.Create(cfg),
		Table:         "sessions",
	})
}
