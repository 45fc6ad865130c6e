// Package application provides the application interface for Interera commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Design Principles:
//   - Accept interfaces, return structs (Go proverb)
//   - Define interfaces where they're used, not where they're implemented
//   - Keep interfaces small and focused
//
// Usage in Commands:
//
//	import (
//	    "github.com/interera/interera/cmd/application"
//	)
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            library, err := app.Prompts()
//	            if err != nil {
//	                return err
//	            }
//	            // ... use library
//	            return nil
//	        },
//	    }
//	}
//
// Tests implement the interface directly with small fakes; the server tests in
// internal/server show the pattern.
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/interera/interera/internal/gemini"
	"github.com/interera/interera/internal/prompts"
	"github.com/interera/interera/internal/sessions"
)

// GenerationClient is the upstream model surface the application exposes.
// *gemini.Client implements it; tests substitute fakes so no network or API
// key is needed.
type GenerationClient interface {
	// Generate produces image bytes from a prompt and optional input media.
	Generate(ctx context.Context, prompt string, media ...gemini.Media) ([]byte, string, error)

	// ListModels returns the models available upstream.
	ListModels(ctx context.Context) ([]gemini.Model, error)

	// Model returns the configured generation model identifier.
	Model() string

	// Close releases the underlying API client.
	Close() error
}

// Application provides the application interface that commands need.
// The App struct from cmd/interera/app automatically implements this interface,
// providing dependency injection for commands while maintaining testability.
//
// Commands should accept this interface rather than the concrete App type,
// allowing for easier testing with mock implementations.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// GenAI returns the Gemini generation client. The client is created
	// lazily on first use and cached; it fails when no API key is configured.
	GenAI() (GenerationClient, error)

	// Store returns the per-session image history store.
	Store() sessions.Store

	// Prompts returns the embedded style and prompt library.
	Prompts() (*prompts.Library, error)

	// DebugDir returns the directory where request uploads are dumped for
	// debugging, or "" when dumping is disabled.
	DebugDir() string

	// Logger returns the configured logger instance.
	// Commands should use this for all logging operations.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, etc).
	// Commands that support different output formats should use this.
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
