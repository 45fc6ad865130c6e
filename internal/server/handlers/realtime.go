package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/interera/interera/internal/server/events"
	ws "github.com/interera/interera/internal/server/websocket"
)

// HandleWebSocket handles WebSocket connections at /api/v1/interera/ws.
// @Summary WebSocket generation events
// @Description WebSocket connection for real-time generation updates
// @Tags realtime
// @Success 101 "Switching Protocols"
// @Router /api/v1/interera/ws [get].
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	// Create and register client
	clientID := fmt.Sprintf("%s-%d", r.RemoteAddr, time.Now().Unix())
	client := ws.NewClient(clientID, h.wsHub, conn)
	h.wsHub.Register(client)

	h.broker.Publish(events.ClientConnected, map[string]any{
		"transport": "websocket",
		"message":   "Client connected to Interera events",
	})

	// Start client pumps
	go client.WritePump()
	go client.ReadPump()
}

// HandleSSE handles Server-Sent Events at /api/v1/interera/events.
// @Summary SSE generation event stream
// @Description Server-Sent Events stream of generation lifecycle events
// @Tags realtime
// @Produce text/event-stream
// @Success 200 "Event stream"
// @Router /api/v1/interera/events [get].
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.sseBroadcaster.ServeHTTP(w, r)
}
