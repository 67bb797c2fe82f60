package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
)

func TestSessionStore_SaveGetDelete(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	sess := &domain.Session{ID: "s1", Mode: domain.ModePath, Points: []domain.GeoPoint{{Lat: 1, Lon: 2}}}
	if err := store.Save(ctx, sess, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}

	// mutating the caller's copy must not leak into the store
	sess.Points[0].Lat = 50

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Points[0].Lat != 1 {
		t.Errorf("expected stored lat 1, got %v", got.Points[0].Lat)
	}

	_ = store.Delete(ctx, "s1")
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStore_Expiry(t *testing.T) {
	store := NewSessionStore()
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_ = store.Save(ctx, &domain.Session{ID: "old"}, time.Minute)
	_ = store.Save(ctx, &domain.Session{ID: "fresh"}, time.Hour)

	now = now.Add(2 * time.Minute)

	if _, err := store.Get(ctx, "old"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected expired session to be gone, got %v", err)
	}
	if n := store.Sweep(); n != 1 {
		t.Errorf("expected 1 swept session, got %d", n)
	}
	if _, err := store.Get(ctx, "fresh"); err != nil {
		t.Errorf("fresh session: %v", err)
	}
}
