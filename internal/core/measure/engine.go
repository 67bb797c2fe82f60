// Package measure holds the point-set measurement engine: an ordered sequence of
// pins interpreted either as an open path (length in km) or as a closed ring
// (area in hectares).
//
// An Engine is not safe for concurrent use. Callers serialise access to it.
package measure

import (
	"fmt"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
	"github.com/samirrijal/pinmeasure/internal/pkg/geospatial"
)

// Engine owns the point sequence and the mode it is measured under.
type Engine struct {
	mode   domain.Mode
	points []domain.GeoPoint
}

// NewEngine returns an empty engine in distance mode.
func NewEngine() *Engine {
	return &Engine{mode: domain.ModePath}
}

// Restore rebuilds an engine from a stored mode and point sequence.
// In area mode an open ring of three or more points is closed.
func Restore(mode domain.Mode, points []domain.GeoPoint) (*Engine, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("restore engine: %w: %q", domain.ErrUnknownMode, mode)
	}
	for i, p := range points {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("restore engine: point %d: %w", i, err)
		}
	}
	e := &Engine{mode: mode, points: append([]domain.GeoPoint(nil), points...)}
	e.closeRing()
	return e, nil
}

// FromPoints builds an engine in mode by adding points one at a time, so the
// closure rules of interactive editing apply. In area mode a trailing point
// equal to the first is the closing vertex of an already closed ring (as in
// GeoJSON) and is not added again.
func FromPoints(mode domain.Mode, points []domain.GeoPoint) (*Engine, domain.Measurement, error) {
	e := NewEngine()
	m, err := e.SetMode(mode)
	if err != nil {
		return nil, domain.Measurement{}, err
	}

	if mode == domain.ModeArea && len(points) > 3 && points[0] == points[len(points)-1] {
		points = points[:len(points)-1]
	}
	for i, p := range points {
		if m, err = e.AddPoint(p); err != nil {
			return nil, domain.Measurement{}, fmt.Errorf("point %d: %w", i, err)
		}
	}
	return e, m, nil
}

// Mode returns the current measurement mode.
func (e *Engine) Mode() domain.Mode { return e.mode }

// Len returns the number of points, including a closing duplicate.
func (e *Engine) Len() int { return len(e.points) }

// Points returns a copy of the point sequence.
func (e *Engine) Points() []domain.GeoPoint {
	out := make([]domain.GeoPoint, len(e.points))
	copy(out, e.points)
	return out
}

// Closed reports whether the sequence is a closed ring: three or more points
// with the last equal to the first.
func (e *Engine) Closed() bool {
	n := len(e.points)
	return n >= 3 && e.points[0] == e.points[n-1]
}

// AddPoint appends p. In area mode a closed ring grows by inserting p before the
// closing duplicate, so the ring stays closed.
func (e *Engine) AddPoint(p domain.GeoPoint) (domain.Measurement, error) {
	if err := p.Validate(); err != nil {
		return domain.Measurement{}, fmt.Errorf("add point: %w", err)
	}

	if e.mode == domain.ModeArea && e.Closed() {
		last := len(e.points) - 1
		e.points = append(e.points[:last], p, e.points[last])
	} else {
		e.points = append(e.points, p)
	}
	e.closeRing()

	return e.Measure(), nil
}

// MovePoint replaces the point at index. In area mode with more than two points,
// the first and last positions move together.
func (e *Engine) MovePoint(index int, p domain.GeoPoint) (domain.Measurement, error) {
	if err := e.checkIndex(index); err != nil {
		return domain.Measurement{}, fmt.Errorf("move point: %w", err)
	}
	if err := p.Validate(); err != nil {
		return domain.Measurement{}, fmt.Errorf("move point: %w", err)
	}

	last := len(e.points) - 1
	e.points[index] = p
	if e.mode == domain.ModeArea && len(e.points) > 2 {
		switch index {
		case 0:
			e.points[last] = p
		case last:
			e.points[0] = p
		}
	}

	return e.Measure(), nil
}

// RemovePoint deletes the point at index and returns the measurement for the
// active mode. In a closed ring, index 0 and the closing index are the same
// vertex; removing either removes that vertex and re-closes on the new first.
func (e *Engine) RemovePoint(index int) (domain.Measurement, error) {
	if err := e.checkIndex(index); err != nil {
		return domain.Measurement{}, fmt.Errorf("remove point: %w", err)
	}

	if e.mode == domain.ModeArea && e.Closed() {
		last := len(e.points) - 1
		vertices := append([]domain.GeoPoint(nil), e.points[:last]...)
		if index == last {
			index = 0
		}
		vertices = append(vertices[:index], vertices[index+1:]...)
		e.points = vertices
		e.closeRing()
		return e.Measure(), nil
	}

	e.points = append(e.points[:index], e.points[index+1:]...)
	e.closeRing()
	return e.Measure(), nil
}

// SetMode switches interpretation. Entering area mode closes an open ring of
// three or more points; entering distance mode strips the closing duplicate of
// a ring longer than three points.
func (e *Engine) SetMode(mode domain.Mode) (domain.Measurement, error) {
	if !mode.Valid() {
		return domain.Measurement{}, fmt.Errorf("set mode: %w: %q", domain.ErrUnknownMode, mode)
	}

	e.mode = mode
	switch mode {
	case domain.ModeArea:
		e.closeRing()
	case domain.ModePath:
		if len(e.points) > 3 && e.Closed() {
			e.points = e.points[:len(e.points)-1]
		}
	}

	return e.Measure(), nil
}

// Measure computes the result for the current mode and points.
func (e *Engine) Measure() domain.Measurement {
	if e.mode == domain.ModeArea {
		return domain.NewMeasurement(domain.ModeArea, geospatial.AreaHectares(e.points))
	}
	return domain.NewMeasurement(domain.ModePath, geospatial.PathLengthKm(e.points))
}

// Clear drops every point. The mode is kept.
func (e *Engine) Clear() domain.Measurement {
	e.points = nil
	return e.Measure()
}

func (e *Engine) checkIndex(index int) error {
	if index < 0 || index >= len(e.points) {
		return fmt.Errorf("%w: %d not in [0, %d)", domain.ErrIndexOutOfRange, index, len(e.points))
	}
	return nil
}

// closeRing enforces ring closure in area mode.
func (e *Engine) closeRing() {
	if e.mode != domain.ModeArea || len(e.points) < 3 || e.Closed() {
		return
	}
	e.points = append(e.points, e.points[0])
}
