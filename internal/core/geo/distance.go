package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for Haversine distances.
const EarthRadiusMeters = 6371008.8

// HaversineMeters returns the great-circle distance between two points in metres.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// WithinCylinder reports whether a point lies inside a vertical cylinder centred
// on (cLat, cLng) with the given radius (metres) and ceiling altitude (metres).
// A non-positive ceiling means the cylinder has no upper bound.
func WithinCylinder(lat, lng, alt, cLat, cLng, radius, ceiling float64) bool {
	if ceiling > 0 && alt > ceiling {
		return false
	}
	return HaversineMeters(lat, lng, cLat, cLng) <= radius
}
