// Package handlers provides HTTP request handlers for the Interera API.
package handlers

import (
	"context"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/interera/interera/internal/gemini"
	"github.com/interera/interera/internal/server/cache"
	"github.com/interera/interera/internal/server/events"
	"github.com/interera/interera/internal/server/sse"
	ws "github.com/interera/interera/internal/server/websocket"
	"github.com/interera/interera/internal/sessions"
	"github.com/interera/interera/internal/studio"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	studio         *studio.Studio
	store          sessions.Store
	models         ModelCatalog
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
}

// ModelCatalog lists the models available upstream. Satisfied by
// *gemini.Client.
type ModelCatalog interface {
	ListModels(ctx context.Context) ([]gemini.Model, error)
	Model() string
}

// New creates a new Handlers instance.
func New(
	studio *studio.Studio,
	store sessions.Store,
	models ModelCatalog,
	cache *cache.Cache,
	broker *events.Broker,
	wsHub *ws.Hub,
	sseBroadcaster *sse.Broadcaster,
	upgrader websocket.Upgrader,
	logger *zerolog.Logger,
) *Handlers {
	return &Handlers{
		studio:         studio,
		store:          store,
		models:         models,
		cache:          cache,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader:       upgrader,
		logger:         logger,
	}
}
