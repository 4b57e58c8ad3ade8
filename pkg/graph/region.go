package graph

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/natevvv/osm-path-visualizer/pkg/geometry"
)

// Return a bound which covers a circle with the given radius (in meters) around the point
func BoundAround(p geometry.Point, radius float64) orb.Bound {
	return geo.NewBoundAroundPoint(p, radius)
}

// Extract the sub-graph of nodes inside the bound which are reachable from seed without leaving the bound.
// External ids and edge weights are kept. The returned graph has fresh search state.
// If the seed itself is outside the bound, the result only contains the seed.
func Region(g *Graph, bound orb.Bound, seed NodeId) *Graph {
	region := NewGraph()
	if seed < 0 || seed >= g.NodeCount() {
		return region
	}

	mapping := make(map[NodeId]NodeId)
	seedNode := g.GetNode(seed)
	mapping[seed] = region.AddNode(seedNode.ExternalId, seedNode.Point)

	queue := []NodeId{seed}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, nb := range g.GetNode(current).Neighbors {
			neighbor := g.GetNode(nb.Node)
			if !bound.Contains(neighbor.Point) {
				continue
			}
			if _, ok := mapping[nb.Node]; !ok {
				mapping[nb.Node] = region.AddNode(neighbor.ExternalId, neighbor.Point)
				queue = append(queue, nb.Node)
			}
			region.AddEdge(mapping[current], mapping[nb.Node], g.GetEdge(nb.Edge).Weight)
		}
	}
	return region
}

// Return the node closest (haversine) to the given point, or NoNode for an empty graph
func (g *Graph) NearestNode(p geometry.Point) NodeId {
	nearest := NoNode
	minDistance := math.Inf(1)
	for _, node := range g.nodes {
		if distance := geometry.Haversine(p, node.Point); distance < minDistance {
			minDistance = distance
			nearest = node.Id
		}
	}
	return nearest
}
