package openapi_server

import (
	"fmt"

	"github.com/natevvv/osm-path-visualizer/pkg/geometry"
)

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func makePoint(p geometry.Point) Point {
	return Point{Lat: p.Lat(), Lon: p.Lon()}
}

func (p Point) geometry() geometry.Point {
	return geometry.MakePoint(p.Lat, p.Lon)
}

// AssertPointRequired checks that the point is a valid position
func AssertPointRequired(obj Point) error {
	if obj.Lat < -90 || obj.Lat > 90 {
		return &ParsingError{Err: fmt.Errorf("latitude %v out of range", obj.Lat)}
	}
	if obj.Lon < -180 || obj.Lon > 180 {
		return &ParsingError{Err: fmt.Errorf("longitude %v out of range", obj.Lon)}
	}
	return nil
}
