// Package geometry wraps the orb point type with the lat/lon helpers used by
// the graph and the search heuristics.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Point is stored as orb does it: [lon, lat].
type Point = orb.Point

// Create a new point from latitude and longitude
func MakePoint(lat, lon float64) Point {
	return Point{lon, lat}
}

// Create a new point pointer from latitude and longitude
func NewPoint(lat, lon float64) *Point {
	p := MakePoint(lat, lon)
	return &p
}

// Great-circle distance in metres
func Haversine(a, b Point) float64 {
	return geo.DistanceHaversine(a, b)
}

// Planar distance in degrees. Used for grid graphs where lat/lon are cell coordinates.
func Euclidean(a, b Point) float64 {
	return math.Hypot(a.Lon()-b.Lon(), a.Lat()-b.Lat())
}

// Manhattan distance in degrees
func Manhattan(a, b Point) float64 {
	return math.Abs(a.Lat()-b.Lat()) + math.Abs(a.Lon()-b.Lon())
}

// Returns true if both coordinates of the point are whole numbers
func IsIntegral(p Point) bool {
	return p.Lat() == math.Trunc(p.Lat()) && p.Lon() == math.Trunc(p.Lon())
}
