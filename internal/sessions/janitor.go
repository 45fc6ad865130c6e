package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/interera/interera/pkg/constants"
	"github.com/interera/interera/pkg/errors"
	"github.com/interera/interera/pkg/logging"
)

// Janitor prunes idle sessions from a Store in the background. Without it the
// store grows without bound as browser sessions come and go.
type Janitor struct {
	store    Store
	ttl      time.Duration
	interval time.Duration

	mu     sync.Mutex
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewJanitor creates a janitor that removes sessions idle for longer than ttl,
// checking every interval. Zero values fall back to the defaults.
func NewJanitor(store Store, ttl, interval time.Duration) *Janitor {
	if ttl <= 0 {
		ttl = constants.SessionTTL
	}
	if interval <= 0 {
		interval = constants.SessionPruneInterval
	}
	return &Janitor{
		store:    store,
		ttl:      ttl,
		interval: interval,
	}
}

// Start launches the background pruning loop. It returns an error if the
// janitor is already running.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.stopCh != nil {
		return errors.NewConfigError("sessions", "janitor already running", nil)
	}
	j.stopCh = make(chan struct{})

	j.wg.Add(1)
	go j.run(ctx, j.stopCh)

	logging.Debug().
		Dur("ttl", j.ttl).
		Dur("interval", j.interval).
		Msg("Session janitor started")
	return nil
}

// Stop halts the pruning loop and waits for it to exit. Stopping a janitor
// that is not running is a no-op.
func (j *Janitor) Stop() {
	j.mu.Lock()
	if j.stopCh == nil {
		j.mu.Unlock()
		return
	}
	close(j.stopCh)
	j.stopCh = nil
	j.mu.Unlock()

	j.wg.Wait()
}

func (j *Janitor) run(ctx context.Context, stopCh <-chan struct{}) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			j.prune(ctx)
		}
	}
}

func (j *Janitor) prune(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-j.ttl)

	removed, err := j.store.PruneIdle(ctx, cutoff)
	if err != nil {
		logging.Error().Err(err).Msg("Session pruning failed")
		return
	}
	if removed > 0 {
		logging.Info().Int("sessions", removed).Msg("Pruned idle sessions")
	}
}
