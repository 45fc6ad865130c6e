package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/interera/interera/internal/server/response"
	"github.com/interera/interera/pkg/constants"
)

type contextKey int

// ServerContextKey carries the server into request contexts so stats can
// report uptime.
const ServerContextKey contextKey = iota

// HandleStats handles GET /api/v1/stats.
// @Summary Server statistics
// @Description Get server runtime, session, event, and cache statistics
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Security ApiKeyAuth
// @Router /api/v1/stats [get].
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	sessionCount, _ := h.store.Sessions(r.Context())
	imageCount, _ := h.store.Images(r.Context())

	// Get runtime stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	// Get server from context (if available) for uptime
	uptime := time.Duration(0)
	if srv, ok := r.Context().Value(ServerContextKey).(interface{ StartTime() time.Time }); ok {
		uptime = time.Since(srv.StartTime())
	}

	response.OK(w, map[string]any{
		"runtime": map[string]any{
			"uptime_seconds": int64(uptime.Seconds()),
			"goroutines":     runtime.NumGoroutine(),
			"memory_mb":      memStats.Alloc / 1024 / 1024,
			"memory_sys_mb":  memStats.Sys / 1024 / 1024,
		},
		"sessions": map[string]any{
			"active":       sessionCount,
			"images_total": imageCount,
			"history_cap":  constants.MaxHistory,
		},
		"generation": map[string]any{
			"model": h.studio.Model(),
		},
		"events": map[string]any{
			"published_total": h.broker.EventsPublished(),
			"dropped_total":   h.broker.EventsDropped(),
			"queue_depth":     h.broker.QueueDepth(),
		},
		"realtime": map[string]any{
			"websocket_clients": h.wsHub.ClientCount(),
			"sse_clients":       h.sseBroadcaster.ClientCount(),
		},
		"cache": h.cache.GetStats(),
	})
}

// HandlePrune handles POST /api/v1/admin/prune.
// @Summary Prune idle sessions
// @Description Remove sessions idle longer than the given duration and flush the response cache
// @Tags admin
// @Produce json
// @Param idle query string false "Idle cutoff as a Go duration (default: session TTL)"
// @Success 200 {object} response.Response{data=object}
// @Failure 400 {object} response.Response{error=response.Error}
// @Security ApiKeyAuth
// @Router /api/v1/admin/prune [post].
func (h *Handlers) HandlePrune(w http.ResponseWriter, r *http.Request) {
	idle := constants.SessionTTL
	if raw := r.URL.Query().Get("idle"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, "Invalid idle duration", raw)
			return
		}
		idle = parsed
	}

	removed, err := h.store.PruneIdle(r.Context(), time.Now().Add(-idle))
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	// Cached history entries may reference pruned sessions.
	h.cache.Clear()

	h.logger.Info().
		Int("removed", removed).
		Dur("idle", idle).
		Msg("Idle sessions pruned")

	response.OK(w, map[string]any{
		"status":           "completed",
		"sessions_removed": removed,
		"idle_cutoff":      idle.String(),
		"cache_cleared":    true,
	})
}
