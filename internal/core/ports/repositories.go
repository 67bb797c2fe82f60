package ports

import (
	"context"
	"time"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
)

// SessionStore keeps live session snapshots for their idle lifetime.
// Get returns domain.ErrSessionNotFound for unknown or expired ids.
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
