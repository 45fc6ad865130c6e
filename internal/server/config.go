package server

import (
	"time"

	"github.com/interera/interera/pkg/constants"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string
	Port int

	// API settings
	PathPrefix string

	// CORS settings
	CORSEnabled bool
	CORSOrigins []string

	// Authentication settings
	AuthEnabled bool
	AuthAPIKey  string
	AuthHeader  string

	// Performance settings
	RateLimit int // Requests per minute per IP (0 to disable)
	CacheTTL  time.Duration

	// HTTP timeouts. WriteTimeout must cover a full generation round trip;
	// SSE streams additionally require it to be 0 (disabled).
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Features
	MetricsEnabled bool
}

// DefaultConfig returns a Config with sensible defaults.
//
// The host and port match the container contract: the service binds all
// interfaces on port 8000.
func DefaultConfig() Config {
	return Config{
		Host:           constants.DefaultHost,
		Port:           constants.DefaultPort,
		PathPrefix:     "/api/v1",
		CORSEnabled:    true,
		CORSOrigins:    []string{},
		AuthEnabled:    false,
		AuthHeader:     "X-API-Key",
		RateLimit:      constants.DefaultRateLimit,
		CacheTTL:       constants.CacheTTL,
		ReadTimeout:    2 * time.Minute,
		WriteTimeout:   0,
		IdleTimeout:    120 * time.Second,
		MetricsEnabled: true,
	}
}
