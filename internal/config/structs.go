package config

import (
	"time"

	"github.com/adminforge/adminforge/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Admin     Admin
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool    // disable recover middleware
	Domain         string  // domain name for the webserver
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	Session        Session // session settings
}

// Admin holds the settings of the administration runtime itself.
type Admin struct {
	// BatchThreshold is the largest selection a bulk action runs synchronously.
	// Anything bigger is deferred to a background task.
	BatchThreshold int
	// BatchSize is the chunk size a deferred action processes per step.
	BatchSize int
	// ScopeTokenSecret signs scope tokens (HS256).
	ScopeTokenSecret string
	// ScopeTokenTTL is the scope-token lifetime in seconds.
	ScopeTokenTTL int
}
