package domain

import (
	"fmt"
	"strings"
)

// Mode selects how the point sequence is interpreted.
type Mode string

const (
	// ModePath treats the points as an open polyline and reports its length.
	ModePath Mode = "distance"
	// ModeArea treats the points as a closed ring and reports its enclosed area.
	ModeArea Mode = "area"
)

// ParseMode accepts the wire names ("distance", "area") and the alias "path".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "distance", "path":
		return ModePath, nil
	case "area":
		return ModeArea, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == ModePath || m == ModeArea
}

// Unit returns the unit the measurement is reported in.
func (m Mode) Unit() string {
	if m == ModeArea {
		return "ha"
	}
	return "km"
}

// Measurement is the derived result of a point sequence under a mode.
type Measurement struct {
	Mode  Mode    `json:"mode"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
	Label string  `json:"label"`
}

// NewMeasurement builds a Measurement with its unit and display label.
func NewMeasurement(mode Mode, value float64) Measurement {
	var label string
	if mode == ModeArea {
		label = fmt.Sprintf("Total Area: %.2f hectares", value)
	} else {
		label = fmt.Sprintf("Total Distance: %.2f km", value)
	}
	return Measurement{Mode: mode, Value: value, Unit: mode.Unit(), Label: label}
}
