package path

import (
	"github.com/natevvv/osm-path-visualizer/pkg/geometry"
	"github.com/natevvv/osm-path-visualizer/pkg/graph"
)

// Heuristic estimates the remaining cost between two positions.
// For optimal results it has to be admissible and consistent w.r.t. the edge weights.
type Heuristic func(a, b geometry.Point) float64

var (
	// great-circle distance in meters, matches the default edge weights
	HaversineHeuristic Heuristic = geometry.Haversine
	// planar distance, for graphs whose weights are given in coordinate units (e.g. grids)
	EuclideanHeuristic Heuristic = geometry.Euclidean
	ManhattanHeuristic Heuristic = geometry.Manhattan
	ZeroHeuristic      Heuristic = func(a, b geometry.Point) float64 { return 0 }
)

// Return the heuristic value between origin and destination, 0 if no heuristic is used
func heuristicValue(h Heuristic, g *graph.Graph, origin, destination graph.NodeId) float64 {
	if h == nil || destination == graph.NoNode {
		return 0
	}
	return h(g.GetNode(origin).Point, g.GetNode(destination).Point)
}
