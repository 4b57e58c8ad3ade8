package path

import (
	"fmt"
	"log"

	"github.com/natevvv/osm-path-visualizer/pkg/graph"
	"github.com/natevvv/osm-path-visualizer/pkg/queue"
	"github.com/natevvv/osm-path-visualizer/pkg/slice"
)

// BestFirst implements Dijkstra, Greedy and A*, which only differ in the priority of a node.
// Dijkstra: f = g, Greedy: f = h, A*: f = g + h
type BestFirst struct {
	g         *graph.Graph
	kind      Kind
	heuristic Heuristic

	openList *queue.MinHeap[graph.NodeId] // frontier, ordered by f and discovery order
	closed   slice.FixedSizeSlice         // settled nodes
	order    []int                        // discovery sequence of each node, breaks ties in the open list
	sequence int

	origin      graph.NodeId
	destination graph.NodeId
	finished    bool
	found       bool

	searchKPIs SearchKPIs
	debugLevel int // debug level for logging purpose
}

// Create a new best-first search of the given kind (DIJKSTRA, GREEDY or ASTAR)
func NewBestFirst(g *graph.Graph, kind Kind, heuristic Heuristic) *BestFirst {
	if kind != DIJKSTRA && kind != GREEDY && kind != ASTAR {
		panic(fmt.Sprintf("%v is not a best-first kind", kind))
	}
	if kind == DIJKSTRA {
		heuristic = nil
	} else if heuristic == nil {
		heuristic = HaversineHeuristic
	}
	b := &BestFirst{g: g, kind: kind, heuristic: heuristic, origin: graph.NoNode, destination: graph.NoNode}
	b.openList = queue.NewMinHeap(b.less)
	return b
}

func (b *BestFirst) less(x, y graph.NodeId) bool {
	fx, fy := b.g.GetNode(x).F, b.g.GetNode(y).F
	if fx != fy {
		return fx < fy
	}
	return b.order[x] < b.order[y]
}

func (b *BestFirst) priority(g, h float64) float64 {
	switch b.kind {
	case DIJKSTRA:
		return g
	case GREEDY:
		return h
	default:
		return g + h
	}
}

func (b *BestFirst) Start(origin, destination graph.NodeId) error {
	if err := validateEndpoints(b.g, origin, destination); err != nil {
		return err
	}
	if b.debugLevel >= 1 {
		log.Printf("New %v search: %v -> %v\n", b.kind, origin, destination)
	}

	b.g.ResetSearchState()
	b.openList.Clear()
	b.closed = slice.MakeFixedSizeSlice(b.g.NodeCount())
	b.order = make([]int, b.g.NodeCount())
	b.sequence = 0
	b.origin = origin
	b.destination = destination
	b.finished = false
	b.found = false
	b.searchKPIs.Reset()

	start := b.g.GetNode(origin)
	start.G = 0
	start.H = heuristicValue(b.heuristic, b.g, origin, destination)
	start.F = b.priority(start.G, start.H)
	b.push(origin)
	return nil
}

func (b *BestFirst) push(nodeId graph.NodeId) {
	if !b.openList.Contains(nodeId) {
		b.sequence++
		b.order[nodeId] = b.sequence
	}
	b.openList.Push(nodeId)
	b.searchKPIs.PqUpdates++
}

func (b *BestFirst) NextStep() []graph.NodeId {
	if b.finished || b.origin == graph.NoNode {
		return []graph.NodeId{}
	}
	b.searchKPIs.Steps++

	if b.openList.Len() == 0 {
		if b.debugLevel >= 1 {
			log.Printf("Open list exhausted, no path %v -> %v\n", b.origin, b.destination)
		}
		b.finished = true
		return []graph.NodeId{}
	}

	currentId := b.openList.Pop()
	b.searchKPIs.PqPops++
	b.closed.Add(currentId)
	b.searchKPIs.NumSettledNodes++
	current := b.g.GetNode(currentId)
	if b.debugLevel >= 2 {
		log.Printf("Settling node %v, g: %v, f: %v\n", currentId, current.G, current.F)
	}

	if currentId == b.destination {
		if b.debugLevel >= 1 {
			log.Printf("Found path %v -> %v with distance %v\n", b.origin, b.destination, current.G)
		}
		b.finished = true
		b.found = true
		return []graph.NodeId{currentId}
	}

	updated := []graph.NodeId{currentId}
	for _, nb := range current.Neighbors {
		if b.closed.Has(nb.Node) {
			continue
		}
		b.searchKPIs.RelaxationAttempts++
		tentativeG := current.G + b.g.GetEdge(nb.Edge).Weight
		neighbor := b.g.GetNode(nb.Node)
		if b.openList.Contains(nb.Node) && tentativeG >= neighbor.G {
			continue
		}

		neighbor.Parent = currentId
		neighbor.Referer = currentId
		neighbor.G = tentativeG
		neighbor.H = heuristicValue(b.heuristic, b.g, nb.Node, b.destination)
		neighbor.F = b.priority(neighbor.G, neighbor.H)
		b.push(nb.Node)
		b.searchKPIs.RelaxedEdges++
		updated = append(updated, nb.Node)
	}
	return updated
}

func (b *BestFirst) Finished() bool { return b.finished }

func (b *BestFirst) GetPath() []graph.NodeId {
	if !b.found {
		return []graph.NodeId{}
	}
	return b.g.PathTo(b.origin, b.destination)
}

// Return the cost of the found path, or -1 if there is none
func (b *BestFirst) GetPathLength() float64 {
	if !b.found {
		return -1
	}
	return b.g.GetNode(b.destination).G
}

func (b *BestFirst) GetKPIs() SearchKPIs { return b.searchKPIs }
func (b *BestFirst) Kind() Kind          { return b.kind }

// Return the nodes which are currently in the open list
func (b *BestFirst) Frontier() []graph.NodeId { return b.openList.Items() }

func (b *BestFirst) SetDebugLevel(level int) {
	b.debugLevel = level
}
