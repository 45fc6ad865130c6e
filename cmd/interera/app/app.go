// Package app provides the application context and dependency management
// for the interera CLI. It follows idiomatic Go patterns for CLI applications
// by centralizing configuration, dependency injection, and lifecycle management.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/interera/interera/cmd/application"
	"github.com/interera/interera/internal/gemini"
	"github.com/interera/interera/internal/prompts"
	"github.com/interera/interera/internal/sessions"
	"github.com/interera/interera/pkg/errors"
)

// App represents the interera application with all its dependencies.
// It provides a centralized place for configuration, logging, the session
// store, and the Gemini client, following the dependency injection pattern.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Session image history (created eagerly, shared by all commands)
	store sessions.Store

	// Lazy-initialized singletons
	mu      sync.RWMutex
	genai   application.GenerationClient
	library *prompts.Library
}

// New creates a new App instance with the given version information.
// The app is initialized with default configuration that can be
// customized using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	// Load configuration
	config, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "failed to load configuration", err)
	}
	app.config = config

	// Initialize logger
	logger := NewLogger(config)
	app.logger = &logger

	// Apply any custom options
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.store == nil {
		app.store = sessions.NewMemoryStore(app.config.HistoryLimit)
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format for commands.
func (a *App) OutputFormat() string {
	if a.config.Format == "" {
		return "table"
	}
	return a.config.Format
}

// DebugDir returns the directory uploads are dumped to, or "" when disabled.
func (a *App) DebugDir() string {
	return a.config.DebugDir
}

// Store returns the per-session image history store.
func (a *App) Store() sessions.Store {
	return a.store
}

// GenAI returns the Gemini client, creating it lazily if needed.
// This is thread-safe and ensures only one client is created.
func (a *App) GenAI() (application.GenerationClient, error) {
	a.mu.RLock()
	if a.genai != nil {
		client := a.genai
		a.mu.RUnlock()
		return client, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.genai != nil {
		return a.genai, nil
	}

	client, err := gemini.NewClient(gemini.Config{
		APIKey:  a.config.APIKey,
		Model:   a.config.Model,
		Timeout: a.config.GenerateTimeout,
	})
	if err != nil {
		return nil, err
	}

	a.genai = client
	return client, nil
}

// Prompts returns the embedded style library, loading it lazily if needed.
func (a *App) Prompts() (*prompts.Library, error) {
	a.mu.RLock()
	if a.library != nil {
		library := a.library
		a.mu.RUnlock()
		return library, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.library != nil {
		return a.library, nil
	}

	library, err := prompts.New()
	if err != nil {
		return nil, err
	}

	a.library = library
	return library, nil
}

// Shutdown performs graceful shutdown of the application.
// It releases the Gemini client and cleans up resources.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.RLock()
	client := a.genai
	a.mu.RUnlock()

	if client != nil {
		if err := client.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close Gemini client during shutdown")
		}
	}

	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithStore sets a custom session store (useful for testing).
func WithStore(store sessions.Store) Option {
	return func(a *App) error {
		a.store = store
		return nil
	}
}

// WithGenAI sets a custom generation client (useful for testing).
func WithGenAI(client application.GenerationClient) Option {
	return func(a *App) error {
		a.genai = client
		return nil
	}
}
