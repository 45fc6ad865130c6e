package handlers

import (
	"net/http"

	"github.com/interera/interera/internal/server/response"
)

// HandleHealth handles GET /healthz and GET /api/v1/health.
// @Summary Health check
// @Description Health check endpoint (liveness probe)
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /api/v1/health [get].
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "interera-api",
		"version": "v1",
	})
}

// HandleReady handles GET /readyz and GET /api/v1/ready.
// @Summary Readiness check
// @Description Readiness check including session store and realtime status
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /api/v1/ready [get].
func (h *Handlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	if h.studio == nil {
		response.ServiceUnavailable(w, "Studio not available")
		return
	}

	sessionCount, err := h.store.Sessions(r.Context())
	if err != nil {
		response.ServiceUnavailable(w, "Session store not available")
		return
	}
	imageCount, _ := h.store.Images(r.Context())

	response.OK(w, map[string]any{
		"status": "ready",
		"model":  h.studio.Model(),
		"sessions": map[string]any{
			"active": sessionCount,
			"images": imageCount,
		},
		"cache": map[string]any{
			"items": h.cache.ItemCount(),
		},
		"websocket_clients": h.wsHub.ClientCount(),
		"sse_clients":       h.sseBroadcaster.ClientCount(),
	})
}
