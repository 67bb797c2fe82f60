package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
)

// EventPublisher publishes session snapshots to a message broker.
type EventPublisher interface {
	PublishSession(ctx context.Context, session *domain.Session) error
}

// EventSubscriber delivers snapshots of one session published elsewhere.
// The returned func cancels the subscription.
type EventSubscriber interface {
	SubscribeSession(ctx context.Context, id string, handler func(data []byte)) (func(), error)
}

// CacheService provides keyed byte storage with expiry.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// ErrCacheMiss is returned by CacheService.Get when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")
