// Package sessions provides per-session history storage for generated images.
//
// Each browser session, identified by an opaque cookie value, holds a capped
// history of the images generated for it. The default implementation is an
// in-memory store pruned by a background janitor; the Store interface keeps
// the persistence swappable.
package sessions

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Kind labels how an image in a history was produced.
type Kind string

// Image kinds.
const (
	KindFurnish Kind = "furnish"
	KindInpaint Kind = "inpaint"
)

// Image is a generated image retained in a session's history.
type Image struct {
	Data      []byte
	MIMEType  string
	Kind      Kind
	CreatedAt time.Time
}

// Store persists per-session image histories. Implementations must be safe
// for concurrent use.
type Store interface {
	// Append adds an image to a session's history, creating the session on
	// first use. Histories are capped; the oldest images are dropped first.
	Append(ctx context.Context, sessionID string, img Image) error

	// History returns a session's images, oldest first. An unknown session
	// yields an empty history, not an error.
	History(ctx context.Context, sessionID string) ([]Image, error)

	// Image returns the image at index in a session's history (0 = oldest).
	Image(ctx context.Context, sessionID string, index int) (Image, error)

	// Count returns the number of images in a session's history.
	Count(ctx context.Context, sessionID string) (int, error)

	// Clear removes a session and its history, reporting whether it existed.
	Clear(ctx context.Context, sessionID string) (bool, error)

	// Sessions returns the number of sessions currently held.
	Sessions(ctx context.Context) (int, error)

	// Images returns the total number of images retained across all
	// sessions.
	Images(ctx context.Context) (int, error)

	// PruneIdle removes sessions whose last write is before cutoff and
	// returns how many were removed.
	PruneIdle(ctx context.Context, cutoff time.Time) (int, error)
}

// NewID returns a fresh session identifier: 32 lowercase hex characters.
func NewID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
