// Package server provides the HTTP server implementation for the Interera API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/interera/interera/cmd/application"
	"github.com/interera/interera/internal/metrics"
	"github.com/interera/interera/internal/server/cache"
	"github.com/interera/interera/internal/server/events"
	"github.com/interera/interera/internal/server/events/adapters"
	"github.com/interera/interera/internal/server/sse"
	ws "github.com/interera/interera/internal/server/websocket"
	"github.com/interera/interera/internal/sessions"
	"github.com/interera/interera/internal/studio"
	"github.com/interera/interera/pkg/constants"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	app            application.Application
	studio         *studio.Studio
	store          sessions.Store
	models         application.GenerationClient
	janitor        *sessions.Janitor
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	config         Config
	ctx            context.Context
	cancel         context.CancelFunc
	startTime      time.Time
}

// New creates a new server instance with the given configuration.
func New(app application.Application, cfg Config) (*Server, error) {
	logger := app.Logger()

	logger.Debug().Msg("Creating new server instance")

	// Set defaults
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = constants.CacheTTL
	}

	// Create unified event broker
	logger.Debug().Msg("Creating event broker")
	broker := events.NewBroker(logger)

	// Create transport layers
	logger.Debug().Msg("Creating WebSocket hub")
	wsHub := ws.NewHub(logger)

	logger.Debug().Msg("Creating SSE broadcaster")
	sseBroadcaster := sse.NewBroadcaster(logger)

	// Subscribe transports to the broker before it runs so no event is lost
	logger.Debug().Msg("Subscribing WebSocket transport to event broker")
	broker.Subscribe(adapters.NewWebSocketSubscriber(wsHub))

	logger.Debug().Msg("Subscribing SSE transport to event broker")
	broker.Subscribe(adapters.NewSSESubscriber(sseBroadcaster))

	// Assemble the generation pipeline
	client, err := app.GenAI()
	if err != nil {
		return nil, err
	}

	library, err := app.Prompts()
	if err != nil {
		return nil, err
	}

	store := app.Store()

	st, err := studio.New(studio.Config{
		Generator: client,
		Store:     store,
		Prompts:   library,
		Broker:    broker,
		DebugDir:  app.DebugDir(),
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("model_id", st.Model()).
		Msg("Generation studio wired to event broker")

	// Expose live session counts to Prometheus
	metrics.RegisterSessionStats(
		func() float64 {
			n, err := store.Sessions(context.Background())
			if err != nil {
				return 0
			}
			return float64(n)
		},
		func() float64 {
			n, err := store.Images(context.Background())
			if err != nil {
				return 0
			}
			return float64(n)
		},
	)

	// Create context for managing background services
	ctx, cancel := context.WithCancel(context.Background())

	server := &Server{
		app:            app,
		studio:         st,
		store:          store,
		models:         client,
		janitor:        sessions.NewJanitor(store, constants.SessionTTL, 0),
		cache:          cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true // Allow all origins for WebSocket
			},
		},
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}

	logger.Debug().Msg("Server instance created successfully")
	return server, nil
}

// Start starts background services (broker, WebSocket hub, SSE broadcaster,
// session janitor).
func (s *Server) Start() {
	s.logger.Debug().Msg("Starting background services")

	go s.broker.Run(s.ctx)
	go s.wsHub.Run(s.ctx)
	go s.sseBroadcaster.Run(s.ctx)

	if err := s.janitor.Start(s.ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Session janitor not started")
	}

	s.logger.Debug().Msg("All background services started")
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown gracefully shuts down background services.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")

	s.janitor.Stop()

	// Cancel the context to stop all background services
	s.cancel()

	// The Run loops exit on context cancellation without a completion signal,
	// so give them a moment before declaring shutdown done.
	select {
	case <-ctx.Done():
		s.logger.Warn().Msg("Background services shutdown cut short")
		return ctx.Err()
	case <-time.After(100 * time.Millisecond):
		s.logger.Info().Msg("Background services shut down successfully")
	}

	if err := s.models.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Closing generation client failed")
	}

	return nil
}

// Studio returns the generation studio.
func (s *Server) Studio() *studio.Studio {
	return s.studio
}

// Cache returns the server's cache instance.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// WSHub returns the WebSocket hub.
func (s *Server) WSHub() *ws.Hub {
	return s.wsHub
}

// SSEBroadcaster returns the SSE broadcaster.
func (s *Server) SSEBroadcaster() *sse.Broadcaster {
	return s.sseBroadcaster
}

// Broker returns the event broker for publishing events.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
