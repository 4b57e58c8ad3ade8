package path

import (
	"log"
	"math"

	"github.com/natevvv/osm-path-visualizer/pkg/graph"
	"github.com/natevvv/osm-path-visualizer/pkg/queue"
	"github.com/natevvv/osm-path-visualizer/pkg/slice"
)

type Direction bool

const (
	FORWARD  Direction = false
	BACKWARD Direction = true
)

func (d Direction) String() string {
	if d == FORWARD {
		return "FORWARD"
	}
	if d == BACKWARD {
		return "BACKWARD"
	}
	return "INVALID"
}

// frontier of one search direction
type frontier struct {
	direction Direction
	target    graph.NodeId // heuristic target
	openList  *queue.MinHeap[graph.NodeId]
	closed    slice.FixedSizeSlice
	g         []float64
	f         []float64
	parent    []graph.NodeId
	order     []int
}

// Describes the connection of a bidirectional search
type BidirectionalConnection struct {
	nodeId   graph.NodeId // the node id of the connecting node
	distance float64      // the whole distance (in both directions)
}

// Reset/invalidate the connection
func (con *BidirectionalConnection) Reset() {
	con.nodeId = graph.NoNode
	con.distance = math.Inf(1)
}

// Bidirectional runs an A* search from both endpoints.
// Each step expands one node of the frontier with the lower minimal f (ties favor the forward frontier).
type Bidirectional struct {
	g         *graph.Graph
	heuristic Heuristic

	forward  frontier
	backward frontier
	sequence int

	connection BidirectionalConnection // best connection between both frontiers found so far

	origin      graph.NodeId
	destination graph.NodeId
	finished    bool

	searchKPIs SearchKPIs
	debugLevel int // debug level for logging purpose
}

// Create a new bidirectional search, the heuristic is used in both directions
func NewBidirectional(g *graph.Graph, heuristic Heuristic) *Bidirectional {
	if heuristic == nil {
		heuristic = HaversineHeuristic
	}
	b := &Bidirectional{g: g, heuristic: heuristic, origin: graph.NoNode, destination: graph.NoNode}
	b.forward = b.newFrontier(FORWARD)
	b.backward = b.newFrontier(BACKWARD)
	b.connection.Reset()
	return b
}

func (b *Bidirectional) newFrontier(direction Direction) frontier {
	fr := frontier{direction: direction}
	// the heap compares through the frontier stored in b, so it always sees the current slices
	fr.openList = queue.NewMinHeap(func(x, y graph.NodeId) bool {
		f, _ := alignWithSearchDirection(direction, &b.forward, &b.backward)
		if f.f[x] != f.f[y] {
			return f.f[x] < f.f[y]
		}
		return f.order[x] < f.order[y]
	})
	return fr
}

func (fr *frontier) reset(size int, root, target graph.NodeId) {
	fr.openList.Clear()
	fr.closed = slice.MakeFixedSizeSlice(size)
	fr.g = make([]float64, size)
	fr.f = make([]float64, size)
	fr.parent = make([]graph.NodeId, size)
	fr.order = make([]int, size)
	for i := 0; i < size; i++ {
		fr.g[i] = math.Inf(1)
		fr.f[i] = math.Inf(1)
		fr.parent[i] = graph.NoNode
	}
	fr.target = target
}

func (fr *frontier) reached(nodeId graph.NodeId) bool {
	return !math.IsInf(fr.g[nodeId], 1)
}

func (b *Bidirectional) Start(origin, destination graph.NodeId) error {
	if err := validateEndpoints(b.g, origin, destination); err != nil {
		return err
	}
	if b.debugLevel >= 1 {
		log.Printf("New bidirectional search: %v -> %v\n", origin, destination)
	}

	b.g.ResetSearchState()
	size := b.g.NodeCount()
	b.forward.reset(size, origin, destination)
	b.backward.reset(size, destination, origin)
	b.sequence = 0
	b.connection.Reset()
	b.origin = origin
	b.destination = destination
	b.finished = false
	b.searchKPIs.Reset()

	b.reach(&b.forward, origin, graph.NoNode, 0)
	b.reach(&b.backward, destination, graph.NoNode, 0)
	return nil
}

// Record that fr reached nodeId via predecessor with cost g and push it into the open list
func (b *Bidirectional) reach(fr *frontier, nodeId, predecessor graph.NodeId, g float64) {
	if !fr.openList.Contains(nodeId) {
		b.sequence++
		fr.order[nodeId] = b.sequence
	}
	h := heuristicValue(b.heuristic, b.g, nodeId, fr.target)
	fr.g[nodeId] = g
	fr.f[nodeId] = g + h
	fr.parent[nodeId] = predecessor
	fr.openList.Push(nodeId)
	b.searchKPIs.PqUpdates++

	node := b.g.GetNode(nodeId)
	node.G = g
	node.H = h
	node.F = g + h
	node.Referer = predecessor
	if fr.direction == FORWARD {
		node.Parent = predecessor
	}

	_, other := alignWithSearchDirection(fr.direction, &b.forward, &b.backward)
	if other.reached(nodeId) {
		if distance := g + other.g[nodeId]; distance < b.connection.distance {
			b.connection.nodeId = nodeId
			b.connection.distance = distance
			if b.debugLevel >= 2 {
				log.Printf("New connection at %v with distance %v\n", nodeId, distance)
			}
		}
	}
}

func (b *Bidirectional) NextStep() []graph.NodeId {
	if b.finished || b.origin == graph.NoNode {
		return []graph.NodeId{}
	}
	b.searchKPIs.Steps++

	if b.forward.openList.Len() == 0 || b.backward.openList.Len() == 0 {
		// one side explored its whole component, the best connection (if any) is optimal
		return b.finish()
	}

	fr := &b.forward
	if b.backward.f[b.backward.openList.Peek()] < b.forward.f[b.forward.openList.Peek()] {
		fr = &b.backward
	}

	currentId := fr.openList.Pop()
	b.searchKPIs.PqPops++
	if fr.f[currentId] >= b.connection.distance {
		// every path which is not found yet costs at least f
		return b.finish()
	}

	fr.closed.Add(currentId)
	b.searchKPIs.NumSettledNodes++
	if b.debugLevel >= 2 {
		log.Printf("Settling node %v, direction: %v, distance %v\n", currentId, fr.direction, fr.g[currentId])
	}

	updated := []graph.NodeId{currentId}
	for _, nb := range b.g.GetNode(currentId).Neighbors {
		if fr.closed.Has(nb.Node) {
			continue
		}
		b.searchKPIs.RelaxationAttempts++
		tentativeG := fr.g[currentId] + b.g.GetEdge(nb.Edge).Weight
		if fr.openList.Contains(nb.Node) && tentativeG >= fr.g[nb.Node] {
			continue
		}
		b.reach(fr, nb.Node, currentId, tentativeG)
		b.searchKPIs.RelaxedEdges++
		updated = append(updated, nb.Node)
	}
	return updated
}

// Terminate the search. If a connection exists, the path gets stitched and the meeting node is returned.
func (b *Bidirectional) finish() []graph.NodeId {
	b.finished = true
	meeting := b.connection.nodeId
	if meeting == graph.NoNode {
		if b.debugLevel >= 1 {
			log.Printf("No connection found %v -> %v\n", b.origin, b.destination)
		}
		return []graph.NodeId{}
	}
	if b.debugLevel >= 1 {
		log.Printf("Finished search, meeting node %v, distance: %v\n", meeting, b.connection.distance)
	}

	// forward chain: meeting -> origin
	path := make([]graph.NodeId, 0)
	for nodeId := meeting; nodeId != graph.NoNode; nodeId = b.forward.parent[nodeId] {
		path = append(path, nodeId)
	}
	slice.ReverseInPlace(path)
	// backward chain: meeting -> destination
	for nodeId := b.backward.parent[meeting]; nodeId != graph.NoNode; nodeId = b.backward.parent[nodeId] {
		path = append(path, nodeId)
	}

	b.g.GetNode(meeting).PrevParent = b.backward.parent[meeting]
	// rewrite the parents along the stitched path, so the destination leads back to the origin
	for i, nodeId := range path {
		if i == 0 {
			b.g.GetNode(nodeId).Parent = graph.NoNode
		} else {
			b.g.GetNode(nodeId).Parent = path[i-1]
		}
	}
	b.g.GetNode(b.destination).G = b.connection.distance
	return []graph.NodeId{meeting}
}

func (b *Bidirectional) Finished() bool { return b.finished }

func (b *Bidirectional) GetPath() []graph.NodeId {
	if !b.finished || b.connection.nodeId == graph.NoNode {
		return []graph.NodeId{}
	}
	return b.g.PathTo(b.origin, b.destination)
}

// Return the meeting node of both frontiers, NoNode if there is none (yet)
func (b *Bidirectional) MeetingNode() graph.NodeId { return b.connection.nodeId }

// Return the cost of the found path, or -1 if there is none
func (b *Bidirectional) GetPathLength() float64 {
	if !b.finished || b.connection.nodeId == graph.NoNode {
		return -1
	}
	return b.connection.distance
}

func (b *Bidirectional) GetKPIs() SearchKPIs { return b.searchKPIs }

func (b *Bidirectional) SetDebugLevel(level int) {
	b.debugLevel = level
}

// Return a and b in the order of the search direction (own side first)
func alignWithSearchDirection[T any](searchDirection Direction, a, b T) (T, T) {
	if searchDirection == FORWARD {
		return a, b
	} else if searchDirection == BACKWARD {
		return b, a
	}
	panic("Search direction not supported")
}
