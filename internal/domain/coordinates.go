package domain

import "math"

const earthRadiusKm = 6371.0

// Immutable geographic coordinates (latitude, longitude) in decimal degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Finite reports whether both components are real numbers.
func (c Coordinates) Finite() bool {
	return !math.IsNaN(c.Lat) && !math.IsInf(c.Lat, 0) && !math.IsNaN(c.Lon) && !math.IsInf(c.Lon, 0)
}

// Great-circle distance in kilometers.
func (c Coordinates) DistanceKm(to Coordinates) float64 {
	dLat := (to.Lat - c.Lat) * math.Pi / 180
	dLon := (to.Lon - c.Lon) * math.Pi / 180
	la1 := c.Lat * math.Pi / 180
	la2 := to.Lat * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Initial bearing from c to the given point, in degrees [0, 360).
func (c Coordinates) BearingTo(to Coordinates) float64 {
	la1 := c.Lat * math.Pi / 180
	la2 := to.Lat * math.Pi / 180
	dLon := (to.Lon - c.Lon) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(la2)
	x := math.Cos(la1)*math.Sin(la2) - math.Sin(la1)*math.Cos(la2)*math.Cos(dLon)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Lerp interpolates linearly in degree space. Segments between waypoints are
// short enough that the planar approximation stays well under GPS accuracy.
func (c Coordinates) Lerp(to Coordinates, t float64) Coordinates {
	return Coordinates{
		Lat: c.Lat + (to.Lat-c.Lat)*t,
		Lon: c.Lon + (to.Lon-c.Lon)*t,
	}
}
