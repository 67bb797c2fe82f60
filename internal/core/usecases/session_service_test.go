package usecases_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
	"github.com/samirrijal/pinmeasure/internal/core/usecases"
)

// --- Mock SessionStore ---

type mockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	saveFn   func(ctx context.Context, s *domain.Session) error
}

func newMockStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]domain.Session)}
}

func (m *mockSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s.Points = append([]domain.GeoPoint(nil), s.Points...)
	return &s, nil
}

func (m *mockSessionStore) Save(ctx context.Context, s *domain.Session, ttl time.Duration) error {
	if m.saveFn != nil {
		if err := m.saveFn(ctx, s); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *mockSessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu        sync.Mutex
	published []domain.Session
	err       error
}

func (m *mockPublisher) PublishSession(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, *s)
	return m.err
}

func point(lat, lon float64) *domain.GeoPoint { return &domain.GeoPoint{Lat: lat, Lon: lon} }
func index(i int) *int                         { return &i }

// --- Tests ---

func TestSessionService_Create(t *testing.T) {
	store := newMockStore()
	svc := usecases.NewSessionService(store, nil, time.Hour)

	sess, err := svc.Create(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("expected a session id")
	}
	if sess.Mode != domain.ModePath {
		t.Errorf("expected distance mode, got %s", sess.Mode)
	}
	if sess.State.BaseLayer != domain.BaseLayerStreets {
		t.Errorf("expected streets base layer, got %s", sess.State.BaseLayer)
	}
	if _, ok := store.sessions[sess.ID]; !ok {
		t.Error("session was not saved")
	}
}

func TestSessionService_Create_UnknownMode(t *testing.T) {
	svc := usecases.NewSessionService(newMockStore(), nil, time.Hour)
	_, err := svc.Create(context.Background(), "volume")
	if !errors.Is(err, domain.ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}

func TestSessionService_DispatchSequence(t *testing.T) {
	pub := &mockPublisher{}
	svc := usecases.NewSessionService(newMockStore(), pub, time.Hour)
	ctx := context.Background()

	sess, _ := svc.Create(ctx, domain.ModeArea)

	cmds := []domain.Command{
		{Type: domain.CmdAddPoint, Point: point(0, 0)},
		{Type: domain.CmdAddPoint, Point: point(0, 1)},
		{Type: domain.CmdAddPoint, Point: point(1, 1)},
	}
	var got *domain.Session
	var err error
	for _, cmd := range cmds {
		got, err = svc.Dispatch(ctx, sess.ID, cmd)
		if err != nil {
			t.Fatalf("dispatch %s: %v", cmd.Type, err)
		}
	}

	if len(got.Points) != 4 {
		t.Fatalf("expected closed ring of 4 points, got %d", len(got.Points))
	}
	if got.Measurement.Value != 619570.00 {
		t.Errorf("expected 619570.00 ha, got %v", got.Measurement.Value)
	}
	if got.Version != 3 {
		t.Errorf("expected version 3, got %d", got.Version)
	}
	if len(pub.published) != 3 {
		t.Errorf("expected 3 published snapshots, got %d", len(pub.published))
	}

	got, err = svc.Dispatch(ctx, sess.ID, domain.Command{Type: domain.CmdSetMode, Mode: domain.ModePath})
	if err != nil {
		t.Fatalf("set mode: %v", err)
	}
	if len(got.Points) != 3 || got.Mode != domain.ModePath {
		t.Errorf("expected closing point stripped in distance mode, got %d in %s", len(got.Points), got.Mode)
	}
}

func TestSessionService_Dispatch_InvalidIndexLeavesStateUnchanged(t *testing.T) {
	store := newMockStore()
	svc := usecases.NewSessionService(store, nil, time.Hour)
	ctx := context.Background()

	sess, _ := svc.Create(ctx, domain.ModePath)
	_, _ = svc.Dispatch(ctx, sess.ID, domain.Command{Type: domain.CmdAddPoint, Point: point(1, 1)})

	_, err := svc.Dispatch(ctx, sess.ID, domain.Command{Type: domain.CmdRemovePoint, Index: index(5)})
	if !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}

	after, _ := svc.Get(ctx, sess.ID)
	if len(after.Points) != 1 || after.Version != 1 {
		t.Errorf("session changed after rejected command: %+v", after)
	}
}

func TestSessionService_Dispatch_Validation(t *testing.T) {
	svc := usecases.NewSessionService(newMockStore(), nil, time.Hour)
	ctx := context.Background()
	sess, _ := svc.Create(ctx, "")

	tests := []struct {
		name string
		cmd  domain.Command
		want error
	}{
		{"missing point", domain.Command{Type: domain.CmdAddPoint}, domain.ErrInvalidCommand},
		{"bad latitude", domain.Command{Type: domain.CmdAddPoint, Point: point(100, 0)}, domain.ErrInvalidCoordinate},
		{"missing index", domain.Command{Type: domain.CmdMovePoint, Point: point(1, 1)}, domain.ErrInvalidCommand},
		{"unknown mode", domain.Command{Type: domain.CmdSetMode, Mode: "volume"}, domain.ErrUnknownMode},
		{"unknown layer", domain.Command{Type: domain.CmdSetBaseLayer, BaseLayer: "night"}, domain.ErrInvalidCommand},
		{"unknown type", domain.Command{Type: "undo"}, domain.ErrInvalidCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Dispatch(ctx, sess.ID, tt.cmd)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSessionService_Dispatch_UnknownSession(t *testing.T) {
	svc := usecases.NewSessionService(newMockStore(), nil, time.Hour)
	_, err := svc.Dispatch(context.Background(), "missing", domain.Command{Type: domain.CmdClear})
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionService_PresentationCommands(t *testing.T) {
	svc := usecases.NewSessionService(newMockStore(), nil, time.Hour)
	ctx := context.Background()
	sess, _ := svc.Create(ctx, "")

	got, err := svc.Dispatch(ctx, sess.ID, domain.Command{Type: domain.CmdToggleSidebar})
	if err != nil {
		t.Fatal(err)
	}
	if !got.State.SidebarOpen {
		t.Error("expected sidebar open")
	}

	got, err = svc.Dispatch(ctx, sess.ID, domain.Command{Type: domain.CmdSetBaseLayer, BaseLayer: domain.BaseLayerSatellite})
	if err != nil {
		t.Fatal(err)
	}
	if got.State.BaseLayer != domain.BaseLayerSatellite {
		t.Errorf("expected satellite, got %s", got.State.BaseLayer)
	}
	if got.Measurement.Value != 0 || len(got.Points) != 0 {
		t.Error("presentation commands must not touch the measurement")
	}
}

func TestSessionService_DispatchAll(t *testing.T) {
	pub := &mockPublisher{}
	svc := usecases.NewSessionService(newMockStore(), pub, time.Hour)
	ctx := context.Background()
	sess, _ := svc.Create(ctx, "")

	got, err := svc.DispatchAll(ctx, sess.ID,
		domain.Command{Type: domain.CmdSetBaseLayer, BaseLayer: domain.BaseLayerSatellite},
		domain.Command{Type: domain.CmdToggleSidebar},
	)
	if err != nil {
		t.Fatal(err)
	}
	if got.State.BaseLayer != domain.BaseLayerSatellite || !got.State.SidebarOpen {
		t.Errorf("unexpected state %+v", got.State)
	}
	if got.Version != sess.Version+1 {
		t.Errorf("expected a single version bump, got %d -> %d", sess.Version, got.Version)
	}
	if len(pub.published) != 1 {
		t.Errorf("expected one published snapshot, got %d", len(pub.published))
	}

	// the second command fails, so the toggle must not be kept either
	_, err = svc.DispatchAll(ctx, sess.ID,
		domain.Command{Type: domain.CmdToggleSidebar},
		domain.Command{Type: domain.CmdRemovePoint, Index: index(0)},
	)
	if !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	stored, _ := svc.Get(ctx, sess.ID)
	if !stored.State.SidebarOpen || stored.Version != got.Version {
		t.Errorf("failed batch must leave the session unchanged: %+v", stored)
	}

	if _, err := svc.DispatchAll(ctx, sess.ID); !errors.Is(err, domain.ErrInvalidCommand) {
		t.Errorf("expected ErrInvalidCommand for an empty batch, got %v", err)
	}
}

func TestSessionService_PublishFailureIsNotFatal(t *testing.T) {
	pub := &mockPublisher{err: errors.New("nats down")}
	svc := usecases.NewSessionService(newMockStore(), pub, time.Hour)
	ctx := context.Background()
	sess, _ := svc.Create(ctx, "")

	if _, err := svc.Dispatch(ctx, sess.ID, domain.Command{Type: domain.CmdAddPoint, Point: point(1, 1)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSessionService_SaveFailure(t *testing.T) {
	store := newMockStore()
	svc := usecases.NewSessionService(store, nil, time.Hour)
	ctx := context.Background()
	sess, _ := svc.Create(ctx, "")

	store.saveFn = func(ctx context.Context, s *domain.Session) error { return errors.New("valkey down") }
	if _, err := svc.Dispatch(ctx, sess.ID, domain.Command{Type: domain.CmdClear}); err == nil {
		t.Error("expected save error")
	}
}

func TestSessionService_ConcurrentDispatchIsSerialised(t *testing.T) {
	svc := usecases.NewSessionService(newMockStore(), nil, time.Hour)
	ctx := context.Background()
	sess, _ := svc.Create(ctx, "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = svc.Dispatch(ctx, sess.ID, domain.Command{Type: domain.CmdAddPoint, Point: point(float64(i)/100, 0)})
		}(i)
	}
	wg.Wait()

	got, _ := svc.Get(ctx, sess.ID)
	if len(got.Points) != 50 {
		t.Errorf("expected 50 points, got %d", len(got.Points))
	}
	if got.Version != 50 {
		t.Errorf("expected version 50, got %d", got.Version)
	}
}

func TestSessionService_Delete(t *testing.T) {
	svc := usecases.NewSessionService(newMockStore(), nil, time.Hour)
	ctx := context.Background()
	sess, _ := svc.Create(ctx, "")

	if err := svc.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(ctx, sess.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, sess.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestSessionService_Measure(t *testing.T) {
	svc := usecases.NewSessionService(newMockStore(), nil, time.Hour)

	m, pts, err := svc.Measure(context.Background(), domain.ModeArea, []domain.GeoPoint{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Value != 619570.00 || m.Unit != "ha" {
		t.Errorf("unexpected measurement %+v", m)
	}
	if len(pts) != 4 {
		t.Errorf("expected closed ring, got %d points", len(pts))
	}

	// an input ring that is already closed must not gain a second closing point
	m, pts, err = svc.Measure(context.Background(), domain.ModeArea, []domain.GeoPoint{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 0, Lon: 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pts) != 4 || m.Value != 619570.00 {
		t.Errorf("expected 4 points measuring 619570.00 ha, got %d points %v", len(pts), m.Value)
	}

	if _, _, err := svc.Measure(context.Background(), domain.ModePath, []domain.GeoPoint{{Lat: 0, Lon: 999}}); !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestSessionService_GeoJSON(t *testing.T) {
	svc := usecases.NewSessionService(newMockStore(), nil, time.Hour)
	ctx := context.Background()
	sess, _ := svc.Create(ctx, "")
	_, _ = svc.Dispatch(ctx, sess.ID, domain.Command{Type: domain.CmdAddPoint, Point: point(0, 0)})
	_, _ = svc.Dispatch(ctx, sess.ID, domain.Command{Type: domain.CmdAddPoint, Point: point(0, 1)})

	fc, err := svc.GeoJSON(ctx, sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fc.Features) != 3 {
		t.Errorf("expected 2 pins and a line, got %d features", len(fc.Features))
	}
}
