// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"

	"github.com/adminforge/adminforge/internal/config"
)

// Create builds the Data Source Name from the configuration, matching the
// configured gorm engine.
func Create(cfg *config.Config) string {
	if cfg.DB.GormEngine == "postgres" {
		return CreatePostgres(cfg)
	}

	return CreateMySQL(cfg)
}

// CreateMySQL builds a mysql DSN.
func CreateMySQL(cfg *config.Config) string {
	out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.Name,
		cfg.DB.Extras,
	)

	return out
}

// CreatePostgres builds a postgres DSN.
func CreatePostgres(cfg *config.Config) string {
	out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s %s",
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Name,
		cfg.DB.Extras,
	)

	return out
}
