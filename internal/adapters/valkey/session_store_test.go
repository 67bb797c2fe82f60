package valkey

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
	"github.com/samirrijal/pinmeasure/internal/core/ports"
)

// --- Mock CacheService ---

type mockCache struct {
	data   map[string][]byte
	ttls   map[string]int
	getErr error
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	b, ok := m.data[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return b, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.data[key] = value
	m.ttls[key] = ttlSeconds
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestSessionStore_RoundTrip(t *testing.T) {
	cache := newMockCache()
	store := NewSessionStore(cache)
	ctx := context.Background()

	sess := &domain.Session{
		ID:     "abc",
		Mode:   domain.ModeArea,
		Points: []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 0, Lon: 0}},
		State:  domain.AppState{BaseLayer: domain.BaseLayerTerrain},
	}
	if err := store.Save(ctx, sess, 90*time.Second); err != nil {
		t.Fatalf("save: %v", err)
	}
	if cache.ttls[keyPrefix+"abc"] != 90 {
		t.Errorf("expected ttl 90s, got %d", cache.ttls[keyPrefix+"abc"])
	}

	got, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Mode != domain.ModeArea || len(got.Points) != 4 || got.State.BaseLayer != domain.BaseLayerTerrain {
		t.Errorf("unexpected session %+v", got)
	}
}

func TestSessionStore_Miss(t *testing.T) {
	store := NewSessionStore(newMockCache())
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStore_BackendError(t *testing.T) {
	cache := newMockCache()
	cache.getErr = errors.New("connection refused")
	store := NewSessionStore(cache)

	_, err := store.Get(context.Background(), "abc")
	if err == nil || errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected backend error, got %v", err)
	}
}
