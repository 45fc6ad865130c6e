// Package studio orchestrates interior design image generation.
//
// The studio is the domain service behind the HTTP handlers: it validates
// uploads, composes prompts from the style catalog, calls the Gemini client,
// re-encodes the model output as PNG, appends results to the session history,
// and publishes lifecycle events for the realtime transports.
package studio

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/interera/interera/internal/gemini"
	"github.com/interera/interera/internal/prompts"
	"github.com/interera/interera/internal/server/events"
	"github.com/interera/interera/internal/sessions"
	"github.com/interera/interera/pkg/errors"
)

// Generator produces an image from a prompt and attached media. It is
// satisfied by *gemini.Client and kept narrow so tests can substitute a fake.
type Generator interface {
	Generate(ctx context.Context, prompt string, media ...gemini.Media) ([]byte, string, error)
	Model() string
}

// Publisher receives the studio's lifecycle events.
type Publisher interface {
	Publish(eventType events.EventType, data any)
}

// Upload is a client-submitted image file.
type Upload struct {
	// Data is the raw file content.
	Data []byte

	// ContentType is the media type declared by the client. It may be
	// empty; some callers supply a fallback.
	ContentType string
}

// Result is a finished generation.
type Result struct {
	// Image is the generated image, re-encoded as PNG.
	Image []byte

	// MIMEType is detected from the encoded bytes.
	MIMEType string

	// HistoryCount is the session's history size after the append.
	HistoryCount int
}

// Config holds studio construction parameters.
type Config struct {
	// Generator runs the model calls. Required.
	Generator Generator

	// Store persists per-session histories. Required.
	Store sessions.Store

	// Prompts supplies the furnish and inpaint prompt templates. Required.
	Prompts *prompts.Library

	// Broker receives lifecycle events. Optional; nil disables eventing.
	Broker Publisher

	// DebugDir, when set, receives a .bin dump of every accepted upload.
	DebugDir string

	// Logger for studio operations. Optional.
	Logger *zerolog.Logger
}

// Studio runs the generation workflows.
type Studio struct {
	generator Generator
	store     sessions.Store
	prompts   *prompts.Library
	broker    Publisher
	debugDir  string
	logger    *zerolog.Logger
}

// New creates a studio from config. Required dependencies are validated here
// so wiring mistakes surface at startup.
func New(config Config) (*Studio, error) {
	if config.Generator == nil {
		return nil, errors.NewConfigError("studio", "generator is required", nil)
	}
	if config.Store == nil {
		return nil, errors.NewConfigError("studio", "session store is required", nil)
	}
	if config.Prompts == nil {
		return nil, errors.NewConfigError("studio", "prompt library is required", nil)
	}
	logger := config.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Studio{
		generator: config.Generator,
		store:     config.Store,
		prompts:   config.Prompts,
		broker:    config.Broker,
		debugDir:  config.DebugDir,
		logger:    logger,
	}, nil
}

// Model returns the model id used for generation.
func (s *Studio) Model() string {
	return s.generator.Model()
}

// Styles returns the available style presets in declaration order.
func (s *Studio) Styles() []prompts.Style {
	return s.prompts.Styles()
}

// DefaultStyle returns the id of the preset used when none is requested.
func (s *Studio) DefaultStyle() string {
	return s.prompts.DefaultStyle()
}

// History returns a session's generated images, oldest first. A session with
// no images yields a NotFoundError.
func (s *Studio) History(ctx context.Context, sessionID string) ([]sessions.Image, error) {
	images, err := s.store.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, errors.NewNotFoundError("history", events.ShortSession(sessionID))
	}
	return images, nil
}

// HistoryImage returns the image at index in a session's history, 0 being
// the oldest entry.
func (s *Studio) HistoryImage(ctx context.Context, sessionID string, index int) (sessions.Image, error) {
	return s.store.Image(ctx, sessionID, index)
}

// ClearHistory removes a session's history. Clearing a session that holds
// nothing is not an error; the cleared event fires only when images were
// actually removed.
func (s *Studio) ClearHistory(ctx context.Context, sessionID string) error {
	count, err := s.store.Count(ctx, sessionID)
	if err != nil {
		return err
	}
	existed, err := s.store.Clear(ctx, sessionID)
	if err != nil {
		return err
	}
	if existed && count > 0 {
		s.publish(events.HistoryCleared, events.HistoryData{
			Session: events.ShortSession(sessionID),
			Removed: count,
		})
		s.logger.Info().
			Str("session", events.ShortSession(sessionID)).
			Int("removed", count).
			Msg("Session history cleared")
	}
	return nil
}

// publish forwards an event to the broker when one is wired.
func (s *Studio) publish(eventType events.EventType, data any) {
	if s.broker == nil {
		return
	}
	s.broker.Publish(eventType, data)
}
