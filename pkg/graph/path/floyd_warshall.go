package path

import (
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/natevvv/osm-path-visualizer/pkg/graph"
	"github.com/natevvv/osm-path-visualizer/pkg/slice"
)

// Upper bound for the node count, the matrices need n^2 memory
const MaxFloydWarshallNodes = 2000

// FloydWarshall computes all pairs shortest paths. Each step processes one intermediate node k for all pairs.
type FloydWarshall struct {
	g *graph.Graph

	n         int
	distances *mat.Dense
	next      [][]graph.NodeId // next hop on the shortest path from i to j
	k         int
	updated   slice.FixedSizeSlice

	origin      graph.NodeId
	destination graph.NodeId
	finished    bool

	searchKPIs SearchKPIs
	debugLevel int // debug level for logging purpose
}

func NewFloydWarshall(g *graph.Graph) *FloydWarshall {
	return &FloydWarshall{g: g, origin: graph.NoNode, destination: graph.NoNode}
}

func (fw *FloydWarshall) Start(origin, destination graph.NodeId) error {
	if err := validateEndpoints(fw.g, origin, destination); err != nil {
		return err
	}
	if fw.g.NodeCount() > MaxFloydWarshallNodes {
		return fmt.Errorf("%v nodes, at most %v are supported: %w", fw.g.NodeCount(), MaxFloydWarshallNodes, ErrGraphTooLarge)
	}

	fw.g.ResetSearchState()
	fw.origin = origin
	fw.destination = destination
	fw.k = 0
	fw.finished = false
	fw.searchKPIs.Reset()

	fw.n = fw.g.NodeCount()
	fw.distances = mat.NewDense(fw.n, fw.n, nil)
	fw.next = make([][]graph.NodeId, fw.n)
	fw.updated = slice.MakeFixedSizeSlice(fw.n)
	for i := 0; i < fw.n; i++ {
		fw.next[i] = make([]graph.NodeId, fw.n)
		for j := 0; j < fw.n; j++ {
			fw.distances.Set(i, j, math.Inf(1))
			fw.next[i][j] = graph.NoNode
		}
		fw.distances.Set(i, i, 0)
		fw.next[i][i] = i
	}
	for _, edge := range fw.g.GetEdges() {
		if edge.Weight < fw.distances.At(edge.From, edge.To) {
			fw.distances.Set(edge.From, edge.To, edge.Weight)
			fw.distances.Set(edge.To, edge.From, edge.Weight)
			fw.next[edge.From][edge.To] = edge.To
			fw.next[edge.To][edge.From] = edge.From
		}
	}

	if fw.debugLevel >= 1 {
		log.Printf("New Floyd-Warshall search: %v -> %v, %v nodes\n", origin, destination, fw.n)
	}
	return nil
}

// Process the intermediate node k for all pairs. Returns the endpoints of every improved pair.
func (fw *FloydWarshall) NextStep() []graph.NodeId {
	if fw.finished || fw.origin == graph.NoNode {
		return []graph.NodeId{}
	}
	fw.searchKPIs.Steps++

	k := fw.k
	fw.updated.Reset()
	updated := make([]graph.NodeId, 0)
	for i := 0; i < fw.n; i++ {
		dik := fw.distances.At(i, k)
		if math.IsInf(dik, 1) {
			continue
		}
		for j := 0; j < fw.n; j++ {
			fw.searchKPIs.RelaxationAttempts++
			if distance := dik + fw.distances.At(k, j); distance < fw.distances.At(i, j) {
				fw.distances.Set(i, j, distance)
				fw.next[i][j] = fw.next[i][k]
				fw.searchKPIs.RelaxedEdges++
				if fw.updated.Add(i) > 0 {
					updated = append(updated, i)
				}
				if fw.updated.Add(j) > 0 {
					updated = append(updated, j)
				}
			}
		}
	}
	for _, nodeId := range updated {
		fw.g.GetNode(nodeId).Referer = k
	}

	fw.k++
	if fw.debugLevel >= 2 {
		log.Printf("Layer %v: updated %v nodes\n", k, len(updated))
	}
	if fw.k >= fw.n {
		fw.finished = true
		fw.writeParents()
	}
	return updated
}

// Write the shortest path origin -> destination into the parent links and distances of the nodes
func (fw *FloydWarshall) writeParents() {
	for i := 0; i < fw.n; i++ {
		fw.g.GetNode(i).DistanceFromStart = fw.distances.At(fw.origin, i)
	}
	path := fw.pathBetween(fw.origin, fw.destination)
	for i := 1; i < len(path); i++ {
		fw.g.GetNode(path[i]).Parent = path[i-1]
	}
	if fw.debugLevel >= 1 {
		log.Printf("Finished Floyd-Warshall, distance %v -> %v: %v\n", fw.origin, fw.destination, fw.distances.At(fw.origin, fw.destination))
	}
}

func (fw *FloydWarshall) pathBetween(a, b graph.NodeId) []graph.NodeId {
	path := make([]graph.NodeId, 0)
	if fw.next[a][b] == graph.NoNode {
		return path
	}
	path = append(path, a)
	for current := a; current != b; {
		current = fw.next[current][b]
		path = append(path, current)
		if len(path) > fw.n {
			return make([]graph.NodeId, 0)
		}
	}
	return path
}

// Return the shortest path between any two nodes. Only valid once the search is finished.
func (fw *FloydWarshall) GetPathBetween(a, b graph.NodeId) ([]graph.NodeId, error) {
	if !fw.finished {
		return nil, ErrSearchNotFinished
	}
	if err := validateEndpoints(fw.g, a, b); err != nil {
		return nil, err
	}
	return fw.pathBetween(a, b), nil
}

// Return the shortest distance between any two nodes (+Inf if they are not connected). Only valid once the search is finished.
func (fw *FloydWarshall) GetDistance(a, b graph.NodeId) (float64, error) {
	if !fw.finished {
		return 0, ErrSearchNotFinished
	}
	if err := validateEndpoints(fw.g, a, b); err != nil {
		return 0, err
	}
	return fw.distances.At(a, b), nil
}

// Return the distance matrix. Only valid once the search is finished.
func (fw *FloydWarshall) Distances() (mat.Matrix, error) {
	if !fw.finished {
		return nil, ErrSearchNotFinished
	}
	return fw.distances, nil
}

func (fw *FloydWarshall) Finished() bool { return fw.finished }

func (fw *FloydWarshall) GetPath() []graph.NodeId {
	if !fw.finished {
		return []graph.NodeId{}
	}
	return fw.pathBetween(fw.origin, fw.destination)
}

func (fw *FloydWarshall) GetKPIs() SearchKPIs { return fw.searchKPIs }

func (fw *FloydWarshall) SetDebugLevel(level int) {
	fw.debugLevel = level
}
