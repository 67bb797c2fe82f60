package geospatial

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want, delta            float64
	}{
		{"same point", 43.263, -2.935, 43.263, -2.935, 0, 1e-9},
		{"one degree of latitude", 0, 0, 1, 0, 111194.93, 0.01},
		{"abando to moyua", 43.2614, -2.9276, 43.2630, -2.9350, 625.07, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2), tt.delta)
		})
	}
}

func TestPathLengthKm_Degenerate(t *testing.T) {
	assert.Zero(t, PathLengthKm(nil))
	assert.Zero(t, PathLengthKm([]domain.GeoPoint{{Lat: 1, Lon: 1}}))
}

func TestRingAreaSquareMeters(t *testing.T) {
	open := []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}}
	closed := append(append([]domain.GeoPoint(nil), open...), open[0])

	assert.InDelta(t, 6195699951.04, RingAreaSquareMeters(open), 1)
	assert.InDelta(t, RingAreaSquareMeters(open), RingAreaSquareMeters(closed), 1e-6)

	// winding does not change the magnitude
	reversed := []domain.GeoPoint{open[2], open[1], open[0]}
	assert.InDelta(t, RingAreaSquareMeters(open), RingAreaSquareMeters(reversed), 1e-6)

	assert.Zero(t, RingAreaSquareMeters(open[:2]))
}

func TestRing_ClosesOnce(t *testing.T) {
	r := Ring([]domain.GeoPoint{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}, {Lat: 5, Lon: 6}})
	assert.Len(t, r, 4)
	assert.Equal(t, r[0], r[3])
	assert.Equal(t, 2.0, r[0][0], "orb points are lon, lat")

	assert.Len(t, Ring([]domain.GeoPoint{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}, {Lat: 1, Lon: 2}}), 3)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 619570.0, Round2(619569.9951035551))
	assert.Equal(t, 1.23, Round2(1.2349))
	assert.Equal(t, 1.24, Round2(1.235001))
	assert.Equal(t, 0.0, Round2(0))
}

func TestBounds(t *testing.T) {
	b := Bounds([]domain.GeoPoint{{Lat: 43.2, Lon: -2.9}, {Lat: 43.3, Lon: -3.0}, {Lat: 43.25, Lon: -2.95}})
	assert.Equal(t, domain.Bounds{MinLat: 43.2, MinLon: -3.0, MaxLat: 43.3, MaxLon: -2.9}, b)
	assert.Equal(t, domain.Bounds{}, Bounds(nil))
}

func TestFeatureCollection(t *testing.T) {
	pts := []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}}

	fc := FeatureCollection(domain.ModePath, pts, domain.NewMeasurement(domain.ModePath, 12.5))
	assert.Len(t, fc.Features, 4)
	assert.Equal(t, "LineString", fc.Features[3].Geometry.GeoJSONType())
	assert.Equal(t, 12.5, fc.Features[3].Properties["length_km"])

	fc = FeatureCollection(domain.ModeArea, pts, domain.NewMeasurement(domain.ModeArea, 3))
	assert.Equal(t, "Polygon", fc.Features[3].Geometry.GeoJSONType())

	fc = FeatureCollection(domain.ModeArea, pts[:2], domain.Measurement{})
	assert.Len(t, fc.Features, 2, "no polygon below three pins")
}

func TestPointsFromGeoJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []domain.GeoPoint
	}{
		{
			name:  "line string geometry",
			input: `{"type":"LineString","coordinates":[[-2.93,43.26],[-2.94,43.27]]}`,
			want:  []domain.GeoPoint{{Lat: 43.26, Lon: -2.93}, {Lat: 43.27, Lon: -2.94}},
		},
		{
			name:  "polygon feature",
			input: `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}`,
			want:  []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 0, Lon: 0}},
		},
		{
			name: "point collection",
			input: `{"type":"FeatureCollection","features":[
				{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[5,6]}},
				{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[7,8]}}]}`,
			want: []domain.GeoPoint{{Lat: 6, Lon: 5}, {Lat: 8, Lon: 7}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PointsFromGeoJSON([]byte(tt.input))
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := PointsFromGeoJSON([]byte(`not json`))
	assert.Error(t, err)
}
