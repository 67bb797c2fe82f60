package domain

import "time"

// BaseLayer is the tile style shown under the pins.
type BaseLayer string

const (
	BaseLayerStreets   BaseLayer = "streets"
	BaseLayerSatellite BaseLayer = "satellite"
	BaseLayerTerrain   BaseLayer = "terrain"
)

// Valid reports whether l is a known base layer.
func (l BaseLayer) Valid() bool {
	switch l {
	case BaseLayerStreets, BaseLayerSatellite, BaseLayerTerrain:
		return true
	}
	return false
}

// AppState is presentation state owned by a session. It never affects measurement.
type AppState struct {
	SidebarOpen bool      `json:"sidebar_open"`
	BaseLayer   BaseLayer `json:"base_layer"`
}

// DefaultAppState is the state a new session starts with.
func DefaultAppState() AppState {
	return AppState{SidebarOpen: false, BaseLayer: BaseLayerStreets}
}

// Session is the snapshot of one browser session's measurement.
type Session struct {
	ID          string      `json:"id"`
	Mode        Mode        `json:"mode"`
	Points      []GeoPoint  `json:"points"`
	Measurement Measurement `json:"measurement"`
	State       AppState    `json:"state"`
	Version     int64       `json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
