package sessions

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/interera/interera/pkg/constants"
	"github.com/interera/interera/pkg/errors"
)

// MemoryStore is an in-memory Store guarded by a read-write mutex.
type MemoryStore struct {
	mu         sync.RWMutex
	maxHistory int
	sessions   map[string]*session
}

type session struct {
	images   []Image
	lastSeen time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store. A maxHistory of zero or
// less falls back to the default cap.
func NewMemoryStore(maxHistory int) *MemoryStore {
	if maxHistory <= 0 {
		maxHistory = constants.MaxHistory
	}
	return &MemoryStore{
		maxHistory: maxHistory,
		sessions:   make(map[string]*session),
	}
}

// Append adds an image to a session's history, dropping the oldest images
// once the cap is exceeded.
func (m *MemoryStore) Append(ctx context.Context, sessionID string, img Image) error {
	if sessionID == "" {
		return errors.NewSessionError("session id is empty")
	}
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		s = &session{}
		m.sessions[sessionID] = s
	}

	s.images = append(s.images, img)
	if len(s.images) > m.maxHistory {
		// Reallocate so dropped images are released.
		s.images = append([]Image(nil), s.images[len(s.images)-m.maxHistory:]...)
	}
	s.lastSeen = time.Now().UTC()
	return nil
}

// History returns a copy of a session's images, oldest first.
func (m *MemoryStore) History(ctx context.Context, sessionID string) ([]Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return append([]Image(nil), s.images...), nil
}

// Image returns the image at index in a session's history.
func (m *MemoryStore) Image(ctx context.Context, sessionID string, index int) (Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok || index < 0 || index >= len(s.images) {
		return Image{}, errors.NewNotFoundError("history image", strconv.Itoa(index))
	}
	return s.images[index], nil
}

// Count returns the number of images in a session's history.
func (m *MemoryStore) Count(ctx context.Context, sessionID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return 0, nil
	}
	return len(s.images), nil
}

// Clear removes a session and its history.
func (m *MemoryStore) Clear(ctx context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	return ok, nil
}

// Sessions returns the number of sessions currently held.
func (m *MemoryStore) Sessions(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}

// Images returns the total number of images retained across all sessions.
func (m *MemoryStore) Images(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, s := range m.sessions {
		total += len(s.images)
	}
	return total, nil
}

// PruneIdle removes sessions whose last write is before cutoff.
func (m *MemoryStore) PruneIdle(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}
