// Package geo provides range geometry and the external lookup clients
// (reverse geocoding, elevation) used when reviewing range submissions.
package geo

import "math"

const earthRadiusM = 6371000.0

// Point is a position on the earth. AltitudeM may be nil when unknown.
type Point struct {
	Lat       float64
	Lon       float64
	AltitudeM *float64
}

// Geometry holds the derived measurements between a firing position and
// a target. Vertical components are nil unless both altitudes are known.
type Geometry struct {
	DistanceM         float64
	AzimuthDeg        float64
	ElevationAngleDeg *float64
	Distance3DM       *float64
}

// Compute derives ground distance, azimuth and (when altitudes are
// available) elevation angle and 3D distance from start to end.
func Compute(start, end Point) Geometry {
	g := Geometry{
		DistanceM:  HaversineDistanceM(start.Lat, start.Lon, end.Lat, end.Lon),
		AzimuthDeg: InitialBearingDeg(start.Lat, start.Lon, end.Lat, end.Lon),
	}
	if start.AltitudeM != nil && end.AltitudeM != nil {
		dh := *end.AltitudeM - *start.AltitudeM
		angle := math.Atan2(dh, g.DistanceM) * 180 / math.Pi
		d3 := math.Sqrt(g.DistanceM*g.DistanceM + dh*dh)
		g.ElevationAngleDeg = &angle
		g.Distance3DM = &d3
	}
	return g
}

// HaversineDistanceM returns the great-circle distance between two
// lat/lon points in meters.
func HaversineDistanceM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// InitialBearingDeg returns the initial bearing from the first point to
// the second, in compass degrees [0, 360).
func InitialBearingDeg(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}
