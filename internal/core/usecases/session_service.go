package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
	"github.com/samirrijal/pinmeasure/internal/core/measure"
	"github.com/samirrijal/pinmeasure/internal/core/ports"
	"github.com/samirrijal/pinmeasure/internal/pkg/geospatial"
	"github.com/samirrijal/pinmeasure/internal/pkg/metrics"
	"github.com/samirrijal/pinmeasure/internal/pkg/telemetry"
)

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 2 * time.Hour

// SessionService hosts one measurement engine per browser session and applies
// command messages to it, one at a time per session.
type SessionService struct {
	store     ports.SessionStore
	publisher ports.EventPublisher
	ttl       time.Duration
	locks     *sessionLocks
	tracer    trace.Tracer
	now       func() time.Time
}

// NewSessionService creates a new SessionService. publisher may be nil.
func NewSessionService(store ports.SessionStore, publisher ports.EventPublisher, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		store:     store,
		publisher: publisher,
		ttl:       ttl,
		locks:     newSessionLocks(),
		tracer:    otel.Tracer(telemetry.TracerName),
		now:       time.Now,
	}
}

// Create starts an empty session in the given mode ("" means distance).
func (s *SessionService) Create(ctx context.Context, mode domain.Mode) (*domain.Session, error) {
	ctx, span := s.tracer.Start(ctx, telemetry.SpanSessionCreate)
	defer span.End()

	if mode == "" {
		mode = domain.ModePath
	}
	mode, err := domain.ParseMode(string(mode))
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sess := &domain.Session{
		ID:          uuid.NewString(),
		Mode:        mode,
		Points:      []domain.GeoPoint{},
		Measurement: domain.NewMeasurement(mode, 0),
		State:       domain.DefaultAppState(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Save(ctx, sess, s.ttl); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("save session: %w", err)
	}

	metrics.SessionsCreated.Inc()
	span.SetAttributes(attribute.String("session.id", sess.ID))
	return sess, nil
}

// Get returns the current snapshot of a session.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}
	return s.store.Get(ctx, id)
}

// Delete discards a session.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, telemetry.SpanSessionDelete,
		trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	unlock := s.locks.lock(id)
	defer unlock()

	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	metrics.SessionsDeleted.Inc()
	return nil
}

// Dispatch applies one command to a session and returns the new snapshot.
// A rejected command leaves the session unchanged.
func (s *SessionService) Dispatch(ctx context.Context, id string, cmd domain.Command) (*domain.Session, error) {
	return s.DispatchAll(ctx, id, cmd)
}

// DispatchAll applies cmds in order as a single change: one version bump, one
// save and one published snapshot. If any command is rejected none of them
// take effect.
func (s *SessionService) DispatchAll(ctx context.Context, id string, cmds ...domain.Command) (*domain.Session, error) {
	types := make([]string, len(cmds))
	for i, cmd := range cmds {
		types[i] = string(cmd.Type)
	}
	ctx, span := s.tracer.Start(ctx, telemetry.SpanSessionDispatch, trace.WithAttributes(
		attribute.String("session.id", id),
		attribute.StringSlice("command.type", types),
	))
	defer span.End()

	sess, failed, err := s.dispatch(ctx, id, cmds)
	if err != nil {
		metrics.CommandErrors.WithLabelValues(string(failed)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	for _, t := range types {
		metrics.CommandsTotal.WithLabelValues(t).Inc()
	}
	metrics.SessionPoints.WithLabelValues(string(sess.Mode)).Observe(float64(len(sess.Points)))
	return sess, nil
}

// dispatch reports the type of the command that failed alongside the error.
func (s *SessionService) dispatch(ctx context.Context, id string, cmds []domain.Command) (*domain.Session, domain.CommandType, error) {
	if len(cmds) == 0 {
		return nil, "", fmt.Errorf("%w: no commands", domain.ErrInvalidCommand)
	}
	for _, cmd := range cmds {
		if err := cmd.Validate(); err != nil {
			return nil, cmd.Type, err
		}
	}

	unlock := s.locks.lock(id)
	defer unlock()

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, cmds[0].Type, err
	}

	engine, err := measure.Restore(current.Mode, current.Points)
	if err != nil {
		return nil, cmds[0].Type, fmt.Errorf("load session %s: %w", id, err)
	}

	state := current.State
	m := current.Measurement
	for _, cmd := range cmds {
		if m, err = apply(engine, &state, cmd); err != nil {
			return nil, cmd.Type, fmt.Errorf("%s: %w", cmd.Type, err)
		}
	}

	next := *current
	next.Mode = engine.Mode()
	next.Points = engine.Points()
	next.Measurement = m
	next.State = state
	next.Version++
	next.UpdatedAt = s.now().UTC()

	if err := s.store.Save(ctx, &next, s.ttl); err != nil {
		return nil, cmds[len(cmds)-1].Type, fmt.Errorf("save session: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishSession(ctx, &next); err != nil {
			slog.WarnContext(ctx, "publish session snapshot", "session_id", id, "error", err)
		}
	}

	return &next, "", nil
}

func apply(engine *measure.Engine, state *domain.AppState, cmd domain.Command) (domain.Measurement, error) {
	switch cmd.Type {
	case domain.CmdAddPoint:
		return engine.AddPoint(*cmd.Point)
	case domain.CmdMovePoint:
		return engine.MovePoint(*cmd.Index, *cmd.Point)
	case domain.CmdRemovePoint:
		return engine.RemovePoint(*cmd.Index)
	case domain.CmdSetMode:
		mode, err := domain.ParseMode(string(cmd.Mode))
		if err != nil {
			return domain.Measurement{}, err
		}
		return engine.SetMode(mode)
	case domain.CmdClear:
		return engine.Clear(), nil
	case domain.CmdSetBaseLayer:
		state.BaseLayer = cmd.BaseLayer
		return engine.Measure(), nil
	case domain.CmdToggleSidebar:
		state.SidebarOpen = !state.SidebarOpen
		return engine.Measure(), nil
	}
	return domain.Measurement{}, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidCommand, cmd.Type)
}

// Measure runs a one-off measurement without a session. Points go through the
// engine one by one, so ring closure applies exactly as for a session.
func (s *SessionService) Measure(ctx context.Context, mode domain.Mode, points []domain.GeoPoint) (domain.Measurement, []domain.GeoPoint, error) {
	_, span := s.tracer.Start(ctx, telemetry.SpanMeasure)
	defer span.End()

	if mode == "" {
		mode = domain.ModePath
	}
	mode, err := domain.ParseMode(string(mode))
	if err != nil {
		return domain.Measurement{}, nil, err
	}

	engine, m, err := measure.FromPoints(mode, points)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return domain.Measurement{}, nil, err
	}
	return m, engine.Points(), nil
}

// GeoJSON renders a session's pins and shape.
func (s *SessionService) GeoJSON(ctx context.Context, id string) (*geojson.FeatureCollection, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return geospatial.FeatureCollection(sess.Mode, sess.Points, sess.Measurement), nil
}
