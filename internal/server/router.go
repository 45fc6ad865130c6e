package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/interera/interera/internal/metrics"
	"github.com/interera/interera/internal/server/handlers"
	"github.com/interera/interera/internal/server/middleware"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	// Create handlers instance
	h := handlers.New(
		s.studio,
		s.store,
		s.models,
		s.cache,
		s.broker,
		s.wsHub,
		s.sseBroadcaster,
		s.upgrader,
		s.logger,
	)

	// Register routes
	s.registerRoutes(mux, h)

	// Apply middleware chain
	handler := s.applyMiddleware(mux)

	return handler
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	// Favicon handler (return 204 No Content to avoid 404 logs)
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Public health endpoints (no auth required)
	mux.HandleFunc("/healthz", h.HandleHealth)
	mux.HandleFunc("/readyz", h.HandleReady)
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/ready", h.HandleReady)

	// Generation endpoint. The bare path furnishes an empty room; everything
	// else under /interera/ is dispatched below, which also keeps the
	// trailing-slash forms working.
	mux.HandleFunc(prefix+"/interera", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			h.HandleFurnish(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	mux.HandleFunc(prefix+"/interera/", func(w http.ResponseWriter, r *http.Request) {
		parts := splitPath(r.URL.Path[len(prefix+"/interera/"):])

		switch {
		case len(parts) == 0:
			// POST /interera/ (trailing-slash form of the furnish endpoint)
			if r.Method != http.MethodPost {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleFurnish(w, r)
		case len(parts) == 1 && parts[0] == "inpaint":
			if r.Method != http.MethodPost {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleInpaint(w, r)
		case len(parts) == 1 && parts[0] == "history":
			switch r.Method {
			case http.MethodGet:
				h.HandleHistory(w, r)
			case http.MethodDelete:
				h.HandleClearHistory(w, r)
			default:
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			}
		case len(parts) == 2 && parts[0] == "history":
			// GET /interera/history/{index}
			if r.Method != http.MethodGet {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleHistoryImage(w, r, parts[1])
		case len(parts) == 1 && parts[0] == "styles":
			if r.Method != http.MethodGet {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleStyles(w, r)
		case len(parts) == 1 && parts[0] == "ws":
			h.HandleWebSocket(w, r)
		case len(parts) == 1 && parts[0] == "events":
			h.HandleSSE(w, r)
		default:
			http.Error(w, "Not found", http.StatusNotFound)
		}
	})

	// Models endpoints
	mux.HandleFunc(prefix+"/models", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.HandleListModels(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	mux.HandleFunc(prefix+"/models/", func(w http.ResponseWriter, r *http.Request) {
		modelID := extractPathParam(r.URL.Path, prefix+"/models/")
		if modelID != "" && r.Method == http.MethodGet {
			h.HandleGetModel(w, r, modelID)
			return
		}
		http.Error(w, "Not found", http.StatusNotFound)
	})

	// Admin endpoints
	mux.HandleFunc(prefix+"/admin/prune", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			h.HandlePrune(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	mux.HandleFunc(prefix+"/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.HandleStats(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// OpenAPI specification endpoints
	mux.HandleFunc(prefix+"/openapi.json", h.HandleOpenAPIJSON)
	mux.HandleFunc(prefix+"/openapi.yaml", h.HandleOpenAPIYAML)

	// Metrics endpoint (optional)
	if s.config.MetricsEnabled {
		mux.Handle("/metrics", metrics.Handler())
	}
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	// Server context (innermost, needed by the stats handler)
	handler = s.withServerContext(handler)

	// Rate limiting (if enabled)
	if cfg.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, s.logger)
		handler = middleware.RateLimit(rateLimiter)(handler)
	}

	// Authentication (if enabled)
	if cfg.AuthEnabled {
		authConfig := middleware.DefaultAuthConfig()
		authConfig.Enabled = true
		if cfg.AuthAPIKey != "" {
			authConfig.APIKey = cfg.AuthAPIKey
		}
		if cfg.AuthHeader != "" {
			authConfig.HeaderName = cfg.AuthHeader
		}
		handler = middleware.Auth(authConfig, s.logger)(handler)
	}

	// CORS (if enabled)
	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
			corsConfig.AllowAll = false
		}
		handler = middleware.CORS(corsConfig)(handler)
	}

	// HTTP metrics (if enabled)
	if cfg.MetricsEnabled {
		handler = metrics.InstrumentHandler(handler)
	}

	// Logging and recovery (always enabled)
	handler = middleware.Logger(s.logger)(handler)
	handler = middleware.Recovery(s.logger)(handler)

	return handler
}

// withServerContext exposes the server to handlers that report uptime.
func (s *Server) withServerContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), handlers.ServerContextKey, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractPathParam extracts path parameter from URL.
func extractPathParam(path, prefix string) string {
	trimmed := strings.TrimPrefix(path, prefix)
	parts := strings.Split(trimmed, "/")
	if len(parts) > 0 {
		return parts[0]
	}
	return ""
}

// splitPath splits a URL path into parts, removing empty strings.
func splitPath(path string) []string {
	parts := []string{}
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
