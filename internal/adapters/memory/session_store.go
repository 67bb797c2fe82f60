package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
	"github.com/samirrijal/pinmeasure/internal/pkg/metrics"
)

type entry struct {
	session   domain.Session
	expiresAt time.Time
}

// SessionStore implements ports.SessionStore in process memory.
// It serves single-instance deployments and tests.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{entries: make(map[string]entry), now: time.Now}
}

// Get returns a copy of the session, or domain.ErrSessionNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok || !s.now().Before(e.expiresAt) {
		metrics.CacheMisses.WithLabelValues("memory").Inc()
		return nil, domain.ErrSessionNotFound
	}
	metrics.CacheHits.WithLabelValues("memory").Inc()

	sess := e.session
	sess.Points = append([]domain.GeoPoint(nil), e.session.Points...)
	return &sess, nil
}

// Save stores a copy of the session, refreshing its expiry.
func (s *SessionStore) Save(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	cp := *session
	cp.Points = append([]domain.GeoPoint(nil), session.Points...)

	s.mu.Lock()
	s.entries[session.ID] = entry{session: cp, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Delete removes a session. Unknown ids are ignored.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	now := s.now()
	removed := 0

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("expired sessions swept", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
