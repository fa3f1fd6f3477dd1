package geo

import "math"

// EarthRadiusKM is the mean radius of Earth used for Haversine distance.
const EarthRadiusKM = 6371.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// DistanceKM returns the great-circle distance in kilometers between two points
// specified by latitude and longitude in degrees.
func DistanceKM(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a outside [0,1] for antipodal points.
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKM * c
}

// Distance returns the great-circle distance in kilometers between p and q.
func (p Point) Distance(q Point) float64 {
	return DistanceKM(p.Latitude, p.Longitude, q.Latitude, q.Longitude)
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
