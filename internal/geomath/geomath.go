// Package geomath provides the pure geodesic helpers used by the proximity
// filter and the map components.
package geomath

import (
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// EarthRadiusMeters is the IUGG mean Earth radius.
const EarthRadiusMeters = 6371008.8

// DistanceMeters returns the great-circle distance between two WGS84
// coordinates using the haversine formula. Callers must validate the inputs
// with ValidCoordinate first.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// FormatDistance renders a distance for display: whole meters below 1 km,
// kilometers to one decimal from 1 km upward.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// ValidCoordinate reports whether lat/lng are finite and within WGS84 range.
func ValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// WebMercator projects a WGS84 coordinate to EPSG:3857, the projection the
// map surface works in.
func WebMercator(lat, lng float64) geom.XY {
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ := f(lng, lat, 0)
	return geom.XY{X: x, Y: y}
}

// FromWebMercator inverts WebMercator, returning lat/lng.
func FromWebMercator(p geom.XY) (lat, lng float64) {
	f := wgs84.EPSG().Transform(3857, 4326)
	lng, lat, _ = f(p.X, p.Y, 0)
	return lat, lng
}
