package graph

import (
	"fmt"
	"math"
	"strings"

	"github.com/natevvv/osm-path-visualizer/pkg/geometry"
	"github.com/natevvv/osm-path-visualizer/pkg/slice"
)

// NodeId is the position of a node in the graph's node arena
type NodeId = int

// EdgeId is the position of an edge in the graph's edge arena
type EdgeId = int

// NoNode marks an unset back-reference (parent, referer, prevParent)
const NoNode NodeId = -1

// Neighbor pairs an adjacent node with the edge connecting to it
type Neighbor struct {
	Node NodeId
	Edge EdgeId
}

// SearchState is the per-node metadata which the search algorithms mutate during a run.
// Parent, Referer and PrevParent are lookup-only references into the node arena.
type SearchState struct {
	G                 float64 // best known cost from the start
	H                 float64 // heuristic estimate to the goal
	F                 float64 // priority key
	Parent            NodeId  // predecessor on the best known path
	Referer           NodeId  // node which caused the discovery in the latest step (trail attribution)
	PrevParent        NodeId  // bidirectional: backward parent of the meeting node
	DistanceFromStart float64 // relaxation algorithms
}

// Node of the graph
type Node struct {
	Id         NodeId         // index in the arena
	ExternalId int64          // id assigned by the graph provider
	Point      geometry.Point // position of the node
	Neighbors  []Neighbor     // adjacent nodes, in insertion order
	SearchState
}

func (n *Node) Lat() float64 { return n.Point.Lat() }
func (n *Node) Lon() float64 { return n.Point.Lon() }

// Edge is undirected, it is referenced from the neighbor lists of both endpoints
type Edge struct {
	Id      EdgeId
	From    NodeId
	To      NodeId
	Weight  float64 // non-negative
	Visited bool    // set by relaxation rounds
}

// Returns the endpoint which is not the given node
func (e *Edge) Other(id NodeId) NodeId {
	if e.From == id {
		return e.To
	}
	return e.From
}

// Graph holds the nodes and edges in arenas and indexes the nodes by their external id
type Graph struct {
	nodes    []*Node
	edges    []*Edge
	external map[int64]NodeId
}

// Create a new, empty graph
// Edge weight for providers without a weight, AddEdge uses the haversine distance instead
const UnknownWeight = -1.0

func NewGraph() *Graph {
	return &Graph{
		nodes:    make([]*Node, 0),
		edges:    make([]*Edge, 0),
		external: make(map[int64]NodeId),
	}
}

// Add a node to the graph and return its id.
// If the external id is already known, the existing node id is returned.
func (g *Graph) AddNode(externalId int64, p geometry.Point) NodeId {
	if id, ok := g.external[externalId]; ok {
		return id
	}
	id := len(g.nodes)
	n := &Node{Id: id, ExternalId: externalId, Point: p, Neighbors: make([]Neighbor, 0)}
	n.resetSearchState()
	g.nodes = append(g.nodes, n)
	g.external[externalId] = id
	return id
}

// Add an undirected edge between from and to.
// A negative weight (UnknownWeight) or NaN is replaced by the haversine distance between the endpoints.
// If the nodes are already connected, the smaller weight is kept and false is returned.
func (g *Graph) AddEdge(from, to NodeId, weight float64) bool {
	if from < 0 || from >= g.NodeCount() || to < 0 || to >= g.NodeCount() {
		panic(fmt.Sprintf("Edge out of range %v - %v", from, to))
	}
	if from == to {
		return false
	}
	if weight < 0 || math.IsNaN(weight) {
		weight = geometry.Haversine(g.nodes[from].Point, g.nodes[to].Point)
	}

	for _, nb := range g.nodes[from].Neighbors {
		if nb.Node == to {
			edge := g.edges[nb.Edge]
			if weight < edge.Weight {
				edge.Weight = weight
			}
			return false
		}
	}

	id := len(g.edges)
	g.edges = append(g.edges, &Edge{Id: id, From: from, To: to, Weight: weight})
	g.nodes[from].Neighbors = append(g.nodes[from].Neighbors, Neighbor{Node: to, Edge: id})
	g.nodes[to].Neighbors = append(g.nodes[to].Neighbors, Neighbor{Node: from, Edge: id})
	return true
}

// Return the node for the given id
func (g *Graph) GetNode(id NodeId) *Node {
	if id < 0 || id >= g.NodeCount() {
		panic(fmt.Sprintf("NodeId %d is not contained in the graph.", id))
	}
	return g.nodes[id]
}

// Return the edge for the given id
func (g *Graph) GetEdge(id EdgeId) *Edge {
	if id < 0 || id >= g.EdgeCount() {
		panic(fmt.Sprintf("EdgeId %d is not contained in the graph.", id))
	}
	return g.edges[id]
}

// Return all nodes of the graph
func (g *Graph) GetNodes() []*Node {
	return g.nodes
}

// Return all edges of the graph
func (g *Graph) GetEdges() []*Edge {
	return g.edges
}

// Lookup the node id for the given external id
func (g *Graph) Lookup(externalId int64) (NodeId, bool) {
	id, ok := g.external[externalId]
	return id, ok
}

// Return the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// Return the number of (undirected) edges
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Restore the search metadata of every node and reset the visited flags of the edges
func (g *Graph) ResetSearchState() {
	for _, n := range g.nodes {
		n.resetSearchState()
	}
	for _, e := range g.edges {
		e.Visited = false
	}
}

func (n *Node) resetSearchState() {
	n.SearchState = SearchState{
		G:                 math.Inf(1),
		H:                 0,
		F:                 math.Inf(1),
		Parent:            NoNode,
		Referer:           NoNode,
		PrevParent:        NoNode,
		DistanceFromStart: math.Inf(1),
	}
}

// Walk the parent links from end back to start.
// Returns the path from start to end, or an empty slice if the chain doesn't reach start.
// The walk is bounded by the node count, so a corrupt chain cannot loop forever.
func (g *Graph) PathTo(start, end NodeId) []NodeId {
	path := make([]NodeId, 0)
	if start < 0 || end < 0 {
		return path
	}
	for nodeId := end; nodeId != NoNode; nodeId = g.nodes[nodeId].Parent {
		path = append(path, nodeId)
		if nodeId == start {
			slice.ReverseInPlace(path)
			return path
		}
		if len(path) > g.NodeCount() {
			break
		}
	}
	return make([]NodeId, 0)
}

// Return the weight of the edge connecting a and b
func (g *Graph) EdgeWeight(a, b NodeId) (float64, bool) {
	for _, nb := range g.nodes[a].Neighbors {
		if nb.Node == b {
			return g.edges[nb.Edge].Weight, true
		}
	}
	return 0, false
}

// Sum up the edge weights along the path. Returns false if two consecutive nodes are not connected.
func (g *Graph) PathWeight(path []NodeId) (float64, bool) {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		w, ok := g.EdgeWeight(path[i], path[i+1])
		if !ok {
			return 0, false
		}
		total += w
	}
	return total, true
}

// Return a human readable string of the graph
func (g *Graph) AsString() string {
	return GraphAsString(g)
}

// Write the graph in the fmi format.
// Each undirected edge is listed in both directions, structured as "fromId targetId weight".
func GraphAsString(g *Graph) string {
	var sb strings.Builder

	// write number of nodes and number of arcs
	sb.WriteString(fmt.Sprintf("%v\n", g.NodeCount()))
	sb.WriteString(fmt.Sprintf("%v\n", 2*g.EdgeCount()))

	sb.WriteString("#Nodes\n")
	// list all nodes structured as "id lat lon"
	for _, node := range g.nodes {
		sb.WriteString(fmt.Sprintf("%v %v %v\n", node.ExternalId, node.Lat(), node.Lon()))
	}

	sb.WriteString("#Edges\n")
	for _, node := range g.nodes {
		for _, nb := range node.Neighbors {
			sb.WriteString(fmt.Sprintf("%v %v %v\n", node.ExternalId, g.nodes[nb.Node].ExternalId, g.edges[nb.Edge].Weight))
		}
	}
	return sb.String()
}
