package path

import (
	"errors"
	"fmt"

	"github.com/natevvv/osm-path-visualizer/pkg/graph"
)

var (
	ErrNodeNotInGraph    = errors.New("node is not contained in the graph")
	ErrNotGridGraph      = errors.New("graph is not an 8-connected grid")
	ErrGraphTooLarge     = errors.New("graph is too large for this algorithm")
	ErrSearchNotFinished = errors.New("search is not finished")
)

// Algorithm is a search which advances one unit of work per NextStep call.
// The returned nodes of a step are the nodes whose search state changed in that step.
type Algorithm interface {
	Start(origin, destination graph.NodeId) error // Initialize a new search. Resets the search state of the graph
	NextStep() []graph.NodeId                      // Perform one step. Returns an empty slice once the search is finished
	Finished() bool                                // True once the search terminated (with or without a path)
	GetPath() []graph.NodeId                       // The path from origin to destination, empty if none was found (yet)
	GetKPIs() SearchKPIs                           // Statistics of the current search
}

type Kind int

const (
	ASTAR Kind = iota
	DIJKSTRA
	GREEDY
	BIDIRECTIONAL
	BELLMAN_FORD
	FLOYD_WARSHALL
	JUMP_POINT
)

const DefaultKind = ASTAR

var kindNames = []string{
	ASTAR:          "astar",
	DIJKSTRA:       "dijkstra",
	GREEDY:         "greedy",
	BIDIRECTIONAL:  "bidirectional",
	BELLMAN_FORD:   "bellmanford",
	FLOYD_WARSHALL: "floydwarshall",
	JUMP_POINT:     "jump",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "INVALID"
	}
	return kindNames[k]
}

// Experimental kinds are only available by name, they are not part of the menu
func (k Kind) Experimental() bool {
	return k == JUMP_POINT
}

// Return the kind for the given name
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return -1, false
}

// Return all kinds
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kindNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Return the kinds which are offered to a user
func Menu() []Kind {
	menu := make([]Kind, 0, len(kindNames))
	for _, k := range Kinds() {
		if !k.Experimental() {
			menu = append(menu, k)
		}
	}
	return menu
}

type options struct {
	heuristic  Heuristic
	debugLevel int
}

type Option func(*options)

// Use the given heuristic instead of the great-circle distance.
// Only the best-first variants and the bidirectional search use a heuristic.
func WithHeuristic(h Heuristic) Option {
	return func(o *options) { o.heuristic = h }
}

func WithDebugLevel(level int) Option {
	return func(o *options) { o.debugLevel = level }
}

// Create a new algorithm of the given kind which works on g
func New(kind Kind, g *graph.Graph, opts ...Option) (Algorithm, error) {
	o := options{heuristic: HaversineHeuristic}
	for _, opt := range opts {
		opt(&o)
	}

	var algorithm Algorithm
	switch kind {
	case ASTAR, DIJKSTRA, GREEDY:
		b := NewBestFirst(g, kind, o.heuristic)
		b.SetDebugLevel(o.debugLevel)
		algorithm = b
	case BIDIRECTIONAL:
		b := NewBidirectional(g, o.heuristic)
		b.SetDebugLevel(o.debugLevel)
		algorithm = b
	case BELLMAN_FORD:
		b := NewBellmanFord(g)
		b.SetDebugLevel(o.debugLevel)
		algorithm = b
	case FLOYD_WARSHALL:
		f := NewFloydWarshall(g)
		f.SetDebugLevel(o.debugLevel)
		algorithm = f
	case JUMP_POINT:
		j := NewJumpPointSearch(g)
		j.SetDebugLevel(o.debugLevel)
		algorithm = j
	default:
		return nil, fmt.Errorf("unknown algorithm kind %d", kind)
	}
	return algorithm, nil
}

func validateEndpoints(g *graph.Graph, origin, destination graph.NodeId) error {
	if origin < 0 || origin >= g.NodeCount() {
		return fmt.Errorf("origin %d: %w", origin, ErrNodeNotInGraph)
	}
	if destination < 0 || destination >= g.NodeCount() {
		return fmt.Errorf("destination %d: %w", destination, ErrNodeNotInGraph)
	}
	return nil
}
