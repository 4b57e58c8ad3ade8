package routing

import (
	"fmt"
	"log"

	"github.com/natevvv/osm-path-visualizer/pkg/geometry"
	"github.com/natevvv/osm-path-visualizer/pkg/graph"
	"github.com/natevvv/osm-path-visualizer/pkg/graph/path"
)

// Result of a finished search
type Route struct {
	Origin      geometry.Point   // position of the start node
	Destination geometry.Point   // position of the end node
	Exists      bool             // true if a path was found
	Nodes       []graph.NodeId   // nodes on the path
	Waypoints   []geometry.Point // positions of the nodes on the path
	Length      float64          // sum of the edge weights (meters for OSM graphs)
}

// Router owns a graph, the endpoints of the search and the active algorithm.
// It is not safe for concurrent use. Exactly one algorithm is active at a time.
type Router struct {
	graph     *graph.Graph
	startNode graph.NodeId
	endNode   graph.NodeId

	algorithm path.Algorithm // nil until Start
	kind      path.Kind
	finished  bool

	options    []path.Option
	debugLevel int
}

// Create a new router. The options are passed to every created algorithm.
func NewRouter(options ...path.Option) *Router {
	return &Router{startNode: graph.NoNode, endNode: graph.NoNode, options: options}
}

// Bind the graph. Endpoints and the active algorithm are dropped.
func (r *Router) SetGraph(g *graph.Graph) {
	r.Reset()
	r.graph = g
	r.startNode = graph.NoNode
	r.endNode = graph.NoNode
}

func (r *Router) Graph() *graph.Graph { return r.graph }

func (r *Router) checkNode(op string, id graph.NodeId) error {
	if r.graph == nil {
		return precondition(op, ErrNoGraph)
	}
	if id < 0 || id >= r.graph.NodeCount() {
		return precondition(op, fmt.Errorf("node %d: %w", id, ErrNodeNotFound))
	}
	return nil
}

// Set the start node by its id in the graph
func (r *Router) SetStartNode(id graph.NodeId) error {
	if err := r.checkNode("set start node", id); err != nil {
		return err
	}
	r.startNode = id
	return nil
}

// Set the end node by its id in the graph
func (r *Router) SetEndNode(id graph.NodeId) error {
	if err := r.checkNode("set end node", id); err != nil {
		return err
	}
	r.endNode = id
	return nil
}

func (r *Router) lookup(op string, externalId int64) (graph.NodeId, error) {
	if r.graph == nil {
		return graph.NoNode, precondition(op, ErrNoGraph)
	}
	id, ok := r.graph.Lookup(externalId)
	if !ok {
		return graph.NoNode, precondition(op, fmt.Errorf("external id %d: %w", externalId, ErrNodeNotFound))
	}
	return id, nil
}

// Set the start node by the id the graph provider assigned
func (r *Router) SetStartByExternalId(externalId int64) error {
	id, err := r.lookup("set start node", externalId)
	if err != nil {
		return err
	}
	r.startNode = id
	return nil
}

// Set the end node by the id the graph provider assigned
func (r *Router) SetEndByExternalId(externalId int64) error {
	id, err := r.lookup("set end node", externalId)
	if err != nil {
		return err
	}
	r.endNode = id
	return nil
}

func (r *Router) StartNode() graph.NodeId { return r.startNode }
func (r *Router) EndNode() graph.NodeId   { return r.endNode }

// Create the algorithm with the given name and start it from the start to the end node.
// The search state of the graph is reset, so starting the same algorithm again reproduces the same steps.
func (r *Router) Start(name string) error {
	kind, ok := path.ParseKind(name)
	if !ok {
		return &ConfigurationError{Name: name}
	}
	if r.graph == nil {
		return precondition("start", ErrNoGraph)
	}
	if r.startNode == graph.NoNode {
		return precondition("start", ErrNoStartNode)
	}
	if r.endNode == graph.NoNode {
		return precondition("start", ErrNoEndNode)
	}

	r.Reset()
	algorithm, err := path.New(kind, r.graph, r.options...)
	if err != nil {
		return &ConfigurationError{Name: name}
	}
	if err := algorithm.Start(r.startNode, r.endNode); err != nil {
		return precondition("start", err)
	}
	if r.debugLevel >= 1 {
		log.Printf("Started %v: %v -> %v\n", kind, r.startNode, r.endNode)
	}
	r.algorithm = algorithm
	r.kind = kind
	return nil
}

// Perform one step of the active algorithm. Returns the changed nodes, nil once the search is finished.
func (r *Router) NextStep() ([]graph.NodeId, error) {
	if r.algorithm == nil {
		return nil, precondition("next step", ErrNoAlgorithm)
	}
	if r.finished {
		return nil, nil
	}
	updated := r.algorithm.NextStep()
	r.finished = r.algorithm.Finished()
	if r.finished && r.debugLevel >= 1 {
		log.Printf("%v finished, path found: %v\n", r.kind, len(r.algorithm.GetPath()) > 0)
	}
	return updated, nil
}

// Drop the active algorithm. The graph and the endpoints are kept.
func (r *Router) Reset() {
	r.algorithm = nil
	r.finished = false
}

// Return the node with the given external id. O(1)
func (r *Router) GetNode(externalId int64) (*graph.Node, bool) {
	if r.graph == nil {
		return nil, false
	}
	id, ok := r.graph.Lookup(externalId)
	if !ok {
		return nil, false
	}
	return r.graph.GetNode(id), true
}

func (r *Router) Finished() bool { return r.finished }

// Return the kind of the active algorithm
func (r *Router) Kind() (path.Kind, bool) {
	return r.kind, r.algorithm != nil
}

// Return the path of the active algorithm, empty if there is none (yet)
func (r *Router) Path() []graph.NodeId {
	if r.algorithm == nil {
		return []graph.NodeId{}
	}
	return r.algorithm.GetPath()
}

func (r *Router) KPIs() path.SearchKPIs {
	if r.algorithm == nil {
		return path.SearchKPIs{}
	}
	return r.algorithm.GetKPIs()
}

// Return the route of the active algorithm
func (r *Router) Route() Route {
	route := Route{Nodes: []graph.NodeId{}, Waypoints: []geometry.Point{}}
	if r.graph == nil {
		return route
	}
	if r.startNode != graph.NoNode {
		route.Origin = r.graph.GetNode(r.startNode).Point
	}
	if r.endNode != graph.NoNode {
		route.Destination = r.graph.GetNode(r.endNode).Point
	}

	nodes := r.Path()
	if len(nodes) == 0 {
		return route
	}
	length, ok := r.graph.PathWeight(nodes)
	if !ok {
		return route
	}
	route.Exists = true
	route.Nodes = nodes
	route.Waypoints = r.buildWaypoints(nodes)
	route.Length = length
	return route
}

// Return the node which is closest to the given point
func (r *Router) FindNearestNode(p geometry.Point) (graph.NodeId, error) {
	if r.graph == nil {
		return graph.NoNode, precondition("find nearest node", ErrNoGraph)
	}
	nearest := r.graph.NearestNode(p)
	if nearest == graph.NoNode {
		return graph.NoNode, precondition("find nearest node", ErrNodeNotFound)
	}
	return nearest, nil
}

func (r *Router) buildWaypoints(nodes []graph.NodeId) []geometry.Point {
	waypoints := make([]geometry.Point, 0, len(nodes))
	for _, nodeId := range nodes {
		waypoints = append(waypoints, r.graph.GetNode(nodeId).Point)
	}
	return waypoints
}

func (r *Router) SetDebugLevel(level int) {
	r.debugLevel = level
}
