package geospatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
)

const squareMetersPerHectare = 10000.0

// Ring converts points to an orb.Ring (lon, lat order), closing it if needed.
func Ring(points []domain.GeoPoint) orb.Ring {
	ring := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		ring = append(ring, orb.Point{p.Lon, p.Lat})
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// RingAreaSquareMeters returns the spherical area enclosed by points.
// Fewer than three points enclose nothing.
func RingAreaSquareMeters(points []domain.GeoPoint) float64 {
	if len(points) < 3 {
		return 0
	}
	return math.Abs(geo.Area(Ring(points)))
}

// SquareMetersToHectares converts m² to ha.
func SquareMetersToHectares(m2 float64) float64 {
	return m2 / squareMetersPerHectare
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AreaHectares is the enclosed area of points in hectares, rounded to 2 dp.
func AreaHectares(points []domain.GeoPoint) float64 {
	return Round2(SquareMetersToHectares(RingAreaSquareMeters(points)))
}

// Bounds returns the bounding box of points, or the zero box when empty.
func Bounds(points []domain.GeoPoint) domain.Bounds {
	if len(points) == 0 {
		return domain.Bounds{}
	}
	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		mp[i] = orb.Point{p.Lon, p.Lat}
	}
	b := mp.Bound()
	return domain.Bounds{
		MinLat: b.Min.Lat(),
		MinLon: b.Min.Lon(),
		MaxLat: b.Max.Lat(),
		MaxLon: b.Max.Lon(),
	}
}
