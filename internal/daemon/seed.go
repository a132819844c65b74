package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/adminforge/adminforge/internal/config"
	"github.com/adminforge/adminforge/internal/db/controller/grant"
	"github.com/adminforge/adminforge/internal/db/models"
	"github.com/adminforge/adminforge/internal/registry"
)

func seed(_ *config.Config, db *gorm.DB) {
	// Seed initial data if user table is empty

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count == 0 {
		// Create default admin user
		// change the password after first login

		db.Create(
			&models.User{
				Username:  "admin",
				Email:     "admin@localhost",
				Password:  models.HashPassword("changeme"),
				Active:    true,
				Staff:     true,
				Superuser: true,
			},
		)
	}
}

// seedGroups creates the editors starter group with change grants on the
// built-in content types. It runs after registry finalization because grants
// reference persisted content-type IDs.
func seedGroups(db *gorm.DB, reg *registry.Registry) {
	var count int64
	db.Model(&models.Group{}).Count(&count)
	if count != 0 {
		return
	}

	editors := &models.Group{Name: "editors", Description: "May view and change user accounts"}
	if err := db.Create(editors).Error; err != nil {
		log.Error().Err(err).Msg("failed to seed editors group")
		return
	}

	ct, ok := reg.Resolve("auth", "user")
	if !ok {
		log.Error().Msg("auth.user content type missing, skipping editors grants")
		return
	}

	if err := grant.GrantToGroup(db, editors.ID, &ct.ID, models.ActionChange); err != nil {
		log.Error().Err(err).Msg("failed to seed editors grants")
	}
}
