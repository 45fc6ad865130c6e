// Package constants provides shared constants used throughout the interera codebase.
// This includes timeouts, limits, file permissions, and other configuration values
// that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for outbound HTTP requests
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// GenerateTimeout is the timeout for a single image generation call.
	// Image models routinely take tens of seconds per render.
	GenerateTimeout = 120 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// ShutdownTimeout is how long graceful shutdown may take before forcing exit
	ShutdownTimeout = 5 * time.Second
)

// Session constants define the anonymous browser-session contract
const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "session"

	// SessionTTL is the lifetime of a session cookie and the idle window
	// after which server-side history is pruned
	SessionTTL = 7 * 24 * time.Hour

	// SessionPruneInterval is how often idle sessions are swept
	SessionPruneInterval = 1 * time.Hour

	// MaxHistory is the maximum number of generated images kept per session
	MaxHistory = 10
)

// Media constants define upload and generation limits
const (
	// MaxUploadBytes is the maximum accepted size for a single uploaded image
	MaxUploadBytes = 20 << 20 // 20 MiB

	// MIMEPNG, MIMEJPEG and MIMEWebP are the accepted upload content types
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
	MIMEWebP = "image/webp"

	// MIMEOctetStream is the fallback for unrecognized image data
	MIMEOctetStream = "application/octet-stream"
)

// Server constants define the HTTP listener contract
const (
	// DefaultHost is the default bind address for the HTTP server
	DefaultHost = "0.0.0.0"

	// DefaultPort is the declared network port of the service
	DefaultPort = 8000
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like API keys (rw-------)
	SecureFilePermissions = 0600
)

// Rate limiting constants
const (
	// DefaultRateLimit is the default requests per minute per client IP
	DefaultRateLimit = 60

	// BurstSize is the token bucket burst size for rate limiting
	BurstSize = 10
)

// Cache constants
const (
	// CacheTTL is the default time-to-live for cached HTTP responses
	CacheTTL = 5 * time.Minute

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 10 * time.Minute
)

// Limit constants define various limits and capacities
const (
	// DefaultPageSize is the default number of items per page when listing models
	DefaultPageSize = 100

	// MaxPageSize is the largest page a list request may ask for
	MaxPageSize = 1000

	// MaxOptionalDetailLength caps the free-form user note passed to the
	// inpaint prompt
	MaxOptionalDetailLength = 2048
)

// Default values
const (
	// DefaultModelID is the Gemini model used for image generation when
	// none is configured
	DefaultModelID = "gemini-2.5-flash-image"

	// ProviderID identifies the generation backend in errors and metrics
	ProviderID = "gemini"
)
