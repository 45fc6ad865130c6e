// Package events provides a unified event system for real-time generation
// updates.
//
// This package implements a broker pattern that connects the studio's
// generation lifecycle to multiple transport mechanisms (WebSocket, SSE)
// through a common event pipeline, giving a single point for event
// distribution.
package events

import "time"

// EventType represents the type of generation event.
type EventType string

// Event types emitted by the studio.
const (
	// Generation lifecycle events.
	GenerationStarted   EventType = "generation.started"
	GenerationCompleted EventType = "generation.completed"
	GenerationFailed    EventType = "generation.failed"

	// History events.
	HistoryCleared EventType = "history.cleared"

	// Client events (from transport layers).
	ClientConnected EventType = "client.connected"
)

// Event represents a generation event with type, timestamp, and data.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// GenerationData is the payload carried by generation lifecycle events.
// Session identifiers are shortened before broadcast; the full value is the
// session cookie and must not leave the service.
type GenerationData struct {
	Session    string `json:"session"`
	Kind       string `json:"kind"`
	Style      string `json:"style,omitempty"`
	Images     int    `json:"images,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
}

// HistoryData is the payload carried by history events.
type HistoryData struct {
	Session string `json:"session"`
	Removed int    `json:"removed"`
}

// ShortSession shortens a session id for broadcast payloads.
func ShortSession(sessionID string) string {
	if len(sessionID) <= 8 {
		return sessionID
	}
	return sessionID[:8]
}
