package geospatial

import (
	"math"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
)

// earthRadiusKm matches the sphere the map surface measures pin distances on.
const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// PathLengthKm sums the great-circle distances between consecutive points.
func PathLengthKm(points []domain.GeoPoint) float64 {
	if len(points) < 2 {
		return 0
	}
	var meters float64
	for i := 0; i < len(points)-1; i++ {
		a, b := points[i], points[i+1]
		meters += Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
	}
	return meters / 1000
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
