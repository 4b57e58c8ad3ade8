package path

import (
	"log"

	"github.com/natevvv/osm-path-visualizer/pkg/graph"
	"github.com/natevvv/osm-path-visualizer/pkg/slice"
)

// BellmanFord relaxes every edge of the origin's connected component once per step.
// Edges are relaxed in both directions. After |V|-1 rounds the search is finished.
// Negative weights are not supported, so no negative cycle detection is done.
type BellmanFord struct {
	g *graph.Graph

	nodes   []graph.NodeId // connected component of the origin, in BFS order
	edges   []graph.EdgeId // edges of the component, in order of their first occurrence
	updated slice.FixedSizeSlice
	round   int

	origin      graph.NodeId
	destination graph.NodeId
	finished    bool

	searchKPIs SearchKPIs
	debugLevel int // debug level for logging purpose
}

func NewBellmanFord(g *graph.Graph) *BellmanFord {
	return &BellmanFord{g: g, origin: graph.NoNode, destination: graph.NoNode}
}

func (b *BellmanFord) Start(origin, destination graph.NodeId) error {
	if err := validateEndpoints(b.g, origin, destination); err != nil {
		return err
	}

	b.g.ResetSearchState()
	b.origin = origin
	b.destination = destination
	b.round = 0
	b.finished = false
	b.searchKPIs.Reset()
	b.updated = slice.MakeFixedSizeSlice(b.g.NodeCount())
	b.collectComponent(origin)

	b.g.GetNode(origin).DistanceFromStart = 0
	if b.debugLevel >= 1 {
		log.Printf("New Bellman-Ford search: %v -> %v, %v nodes, %v edges\n", origin, destination, len(b.nodes), len(b.edges))
	}
	return nil
}

func (b *BellmanFord) collectComponent(origin graph.NodeId) {
	visited := slice.MakeFixedSizeSlice(b.g.NodeCount())
	seenEdges := slice.MakeFixedSizeSlice(b.g.EdgeCount())
	b.nodes = []graph.NodeId{origin}
	b.edges = make([]graph.EdgeId, 0)
	visited.Add(origin)
	for i := 0; i < len(b.nodes); i++ {
		for _, nb := range b.g.GetNode(b.nodes[i]).Neighbors {
			if seenEdges.Add(nb.Edge) > 0 {
				b.edges = append(b.edges, nb.Edge)
			}
			if visited.Add(nb.Node) > 0 {
				b.nodes = append(b.nodes, nb.Node)
			}
		}
	}
}

// Return the number of rounds until the search is finished
func (b *BellmanFord) Rounds() int {
	return len(b.nodes) - 1
}

// Return the number of performed rounds
func (b *BellmanFord) Round() int {
	return b.round
}

func (b *BellmanFord) NextStep() []graph.NodeId {
	if b.finished || b.origin == graph.NoNode {
		return []graph.NodeId{}
	}
	if b.round >= b.Rounds() {
		b.finished = true
		return []graph.NodeId{}
	}

	b.searchKPIs.Steps++
	updated := b.RelaxRound()
	b.round++
	if b.debugLevel >= 2 {
		log.Printf("Round %v: updated %v nodes\n", b.round, len(updated))
	}
	if b.round >= b.Rounds() {
		if b.debugLevel >= 1 {
			log.Printf("Finished after %v rounds, distance to %v: %v\n", b.round, b.destination, b.g.GetNode(b.destination).DistanceFromStart)
		}
		b.finished = true
	}
	return updated
}

// Relax every edge of the component in both directions once.
// Returns the updated nodes in the order of their first update. The round counter is not changed.
func (b *BellmanFord) RelaxRound() []graph.NodeId {
	b.updated.Reset()
	updated := make([]graph.NodeId, 0)
	for _, edgeId := range b.edges {
		edge := b.g.GetEdge(edgeId)
		for _, d := range []Direction{FORWARD, BACKWARD} {
			from, to := alignWithSearchDirection(d, edge.From, edge.To)
			b.searchKPIs.RelaxationAttempts++
			fromNode, toNode := b.g.GetNode(from), b.g.GetNode(to)
			if distance := fromNode.DistanceFromStart + edge.Weight; distance < toNode.DistanceFromStart {
				toNode.DistanceFromStart = distance
				toNode.G = distance
				toNode.Parent = from
				toNode.Referer = from
				edge.Visited = true
				b.searchKPIs.RelaxedEdges++
				if b.updated.Add(to) > 0 {
					updated = append(updated, to)
				}
			}
		}
	}
	return updated
}

func (b *BellmanFord) Finished() bool { return b.finished }

func (b *BellmanFord) GetPath() []graph.NodeId {
	if !b.finished {
		return []graph.NodeId{}
	}
	return b.g.PathTo(b.origin, b.destination)
}

func (b *BellmanFord) GetKPIs() SearchKPIs { return b.searchKPIs }

func (b *BellmanFord) SetDebugLevel(level int) {
	b.debugLevel = level
}
