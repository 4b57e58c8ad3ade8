package path

import (
	"math"

	"github.com/natevvv/osm-path-visualizer/pkg/graph"
	"github.com/natevvv/osm-path-visualizer/pkg/queue"
	"github.com/natevvv/osm-path-visualizer/pkg/slice"
)

// Dijkstra is the plain, non-stepwise Dijkstra. It doesn't touch the search state of the graph,
// so it can be used as reference for the stepwise algorithms.
type Dijkstra struct {
	g        *graph.Graph
	dist     []float64
	parent   []graph.NodeId
	settled  []bool
	openList *queue.MinHeap[graph.NodeId]

	searchKPIs SearchKPIs
}

func NewDijkstra(g *graph.Graph) *Dijkstra {
	d := &Dijkstra{g: g}
	d.openList = queue.NewMinHeap(func(a, b graph.NodeId) bool {
		if d.dist[a] != d.dist[b] {
			return d.dist[a] < d.dist[b]
		}
		return a < b
	})
	return d
}

// Compute the shortest path from the origin to the destination.
// It returns the length of the found path, -1 if there is none.
func (d *Dijkstra) ComputeShortestPath(origin, destination graph.NodeId) float64 {
	n := d.g.NodeCount()
	d.dist = make([]float64, n)
	d.parent = make([]graph.NodeId, n)
	d.settled = make([]bool, n)
	for i := range d.dist {
		d.dist[i] = math.Inf(1)
		d.parent[i] = graph.NoNode
	}
	d.openList.Clear()
	d.searchKPIs.Reset()

	d.dist[origin] = 0
	d.openList.Push(origin)
	d.searchKPIs.PqUpdates++

	for d.openList.Len() > 0 {
		current := d.openList.Pop()
		d.settled[current] = true
		d.searchKPIs.PqPops++
		d.searchKPIs.NumSettledNodes++

		if current == destination {
			break
		}

		for _, nb := range d.g.GetNode(current).Neighbors {
			d.searchKPIs.RelaxationAttempts++
			if d.settled[nb.Node] {
				continue
			}
			if distance := d.dist[current] + d.g.GetEdge(nb.Edge).Weight; distance < d.dist[nb.Node] {
				d.dist[nb.Node] = distance
				d.parent[nb.Node] = current
				d.openList.Push(nb.Node)
				d.searchKPIs.PqUpdates++
				d.searchKPIs.RelaxedEdges++
			}
		}
	}

	if math.IsInf(d.dist[destination], 1) {
		return -1 // no path
	}
	return d.dist[destination]
}

// Return the path found by the last ComputeShortestPath, empty if there is none
func (d *Dijkstra) GetPath(origin, destination graph.NodeId) []graph.NodeId {
	path := make([]graph.NodeId, 0)
	if d.dist == nil || math.IsInf(d.dist[destination], 1) {
		return path
	}
	for nodeId := destination; nodeId != graph.NoNode; nodeId = d.parent[nodeId] {
		path = append(path, nodeId)
	}
	slice.ReverseInPlace(path)
	return path
}

func (d *Dijkstra) GetKPIs() SearchKPIs    { return d.searchKPIs }
func (d *Dijkstra) GetGraph() *graph.Graph { return d.g }
