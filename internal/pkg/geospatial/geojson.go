package geospatial

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
)

// FeatureCollection renders a point sequence the way the map draws it: one
// Point feature per pin, then a LineString (distance mode, two or more pins)
// or a Polygon (area mode, three or more pins).
func FeatureCollection(mode domain.Mode, points []domain.GeoPoint, m domain.Measurement) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for i, p := range points {
		f := geojson.NewFeature(orb.Point{p.Lon, p.Lat})
		f.Properties["kind"] = "pin"
		f.Properties["index"] = i
		fc.Append(f)
	}

	switch {
	case mode == domain.ModePath && len(points) >= 2:
		ls := make(orb.LineString, len(points))
		for i, p := range points {
			ls[i] = orb.Point{p.Lon, p.Lat}
		}
		f := geojson.NewFeature(ls)
		f.Properties["kind"] = "path"
		f.Properties["length_km"] = m.Value
		fc.Append(f)
	case mode == domain.ModeArea && len(points) >= 3:
		f := geojson.NewFeature(orb.Polygon{Ring(points)})
		f.Properties["kind"] = "area"
		f.Properties["area_ha"] = m.Value
		fc.Append(f)
	}

	return fc
}

// PointsFromGeoJSON extracts an ordered point sequence from a GeoJSON
// FeatureCollection, Feature or bare geometry. Polygons contribute their outer
// ring; every other geometry contributes its vertices in order.
func PointsFromGeoJSON(data []byte) ([]domain.GeoPoint, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}

	var geoms []orb.Geometry
	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse feature collection: %w", err)
		}
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("parse feature: %w", err)
		}
		geoms = append(geoms, f.Geometry)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("parse geometry: %w", err)
		}
		geoms = append(geoms, g.Geometry())
	}

	var points []domain.GeoPoint
	for _, g := range geoms {
		points = appendGeometry(points, g)
	}
	return points, nil
}

func appendGeometry(points []domain.GeoPoint, g orb.Geometry) []domain.GeoPoint {
	add := func(pts ...orb.Point) {
		for _, p := range pts {
			points = append(points, domain.GeoPoint{Lat: p.Lat(), Lon: p.Lon()})
		}
	}

	switch g := g.(type) {
	case orb.Point:
		add(g)
	case orb.MultiPoint:
		add(g...)
	case orb.LineString:
		add(g...)
	case orb.Ring:
		add(g...)
	case orb.Polygon:
		if len(g) > 0 {
			add(g[0]...)
		}
	}
	return points
}
