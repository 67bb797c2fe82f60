package valkey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
	"github.com/samirrijal/pinmeasure/internal/core/ports"
	"github.com/samirrijal/pinmeasure/internal/pkg/metrics"
)

const keyPrefix = "pinmeasure:session:"

// SessionStore implements ports.SessionStore on top of a CacheService, so
// several API instances can serve the same session.
type SessionStore struct {
	cache ports.CacheService
}

// NewSessionStore wraps a cache.
func NewSessionStore(cache ports.CacheService) *SessionStore {
	return &SessionStore{cache: cache}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := s.cache.Get(ctx, keyPrefix+id)
	if errors.Is(err, ports.ErrCacheMiss) {
		metrics.CacheMisses.WithLabelValues("valkey").Inc()
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	metrics.CacheHits.WithLabelValues("valkey").Inc()

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	seconds := int(math.Ceil(ttl.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return s.cache.Set(ctx, keyPrefix+session.ID, data, seconds)
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, keyPrefix+id)
}
