package path

import (
	"fmt"
	"log"
	"math"

	"github.com/natevvv/osm-path-visualizer/pkg/graph"
	"github.com/natevvv/osm-path-visualizer/pkg/queue"
	"github.com/natevvv/osm-path-visualizer/pkg/slice"
)

// JumpPointSearch is an A* variant for 8-connected grids which skips over symmetric straight runs.
// The graph must be a grid: integral coordinates (x = lon, y = lat), one node per cell,
// and every two adjacent cells (including diagonals) connected. Missing cells are obstacles.
// Costs are straight-line distances between the cells.
type JumpPointSearch struct {
	g     *graph.Graph
	cells map[graph.Cell]graph.NodeId

	openList *queue.MinHeap[graph.NodeId]
	closed   slice.FixedSizeSlice
	order    []int
	sequence int

	origin      graph.NodeId
	destination graph.NodeId
	finished    bool
	found       bool

	searchKPIs SearchKPIs
	debugLevel int // debug level for logging purpose
}

func NewJumpPointSearch(g *graph.Graph) *JumpPointSearch {
	j := &JumpPointSearch{g: g, origin: graph.NoNode, destination: graph.NoNode}
	j.openList = queue.NewMinHeap(func(x, y graph.NodeId) bool {
		fx, fy := j.g.GetNode(x).F, j.g.GetNode(y).F
		if fx != fy {
			return fx < fy
		}
		return j.order[x] < j.order[y]
	})
	return j
}

var gridOffsets = []graph.Cell{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1}}

// Index the cells of the graph and check that it is an 8-connected grid
func (j *JumpPointSearch) indexGrid() error {
	cells := make(map[graph.Cell]graph.NodeId, j.g.NodeCount())
	for _, node := range j.g.GetNodes() {
		cell, ok := graph.CellOf(node)
		if !ok {
			return fmt.Errorf("node %v has non-integral coordinates: %w", node.ExternalId, ErrNotGridGraph)
		}
		if _, ok := cells[cell]; ok {
			return fmt.Errorf("cell %v is occupied twice: %w", cell, ErrNotGridGraph)
		}
		cells[cell] = node.Id
	}

	for _, node := range j.g.GetNodes() {
		cell, _ := graph.CellOf(node)
		neighbors := make(map[graph.NodeId]bool, len(node.Neighbors))
		for _, nb := range node.Neighbors {
			other, _ := graph.CellOf(j.g.GetNode(nb.Node))
			if abs(other.X-cell.X) > 1 || abs(other.Y-cell.Y) > 1 {
				return fmt.Errorf("edge %v - %v is longer than one cell: %w", node.ExternalId, j.g.GetNode(nb.Node).ExternalId, ErrNotGridGraph)
			}
			neighbors[nb.Node] = true
		}
		for _, o := range gridOffsets {
			if other, ok := cells[graph.Cell{X: cell.X + o.X, Y: cell.Y + o.Y}]; ok && !neighbors[other] {
				return fmt.Errorf("adjacent cells %v and %v are not connected: %w", node.ExternalId, j.g.GetNode(other).ExternalId, ErrNotGridGraph)
			}
		}
	}
	j.cells = cells
	return nil
}

func (j *JumpPointSearch) Start(origin, destination graph.NodeId) error {
	if err := validateEndpoints(j.g, origin, destination); err != nil {
		return err
	}
	if err := j.indexGrid(); err != nil {
		return err
	}
	if j.debugLevel >= 1 {
		log.Printf("New jump point search: %v -> %v\n", origin, destination)
	}

	j.g.ResetSearchState()
	j.openList.Clear()
	j.closed = slice.MakeFixedSizeSlice(j.g.NodeCount())
	j.order = make([]int, j.g.NodeCount())
	j.sequence = 0
	j.origin = origin
	j.destination = destination
	j.finished = false
	j.found = false
	j.searchKPIs.Reset()

	start := j.g.GetNode(origin)
	start.G = 0
	start.H = j.distance(origin, destination)
	start.F = start.H
	j.push(origin)
	return nil
}

func (j *JumpPointSearch) push(nodeId graph.NodeId) {
	if !j.openList.Contains(nodeId) {
		j.sequence++
		j.order[nodeId] = j.sequence
	}
	j.openList.Push(nodeId)
	j.searchKPIs.PqUpdates++
}

func (j *JumpPointSearch) NextStep() []graph.NodeId {
	if j.finished || j.origin == graph.NoNode {
		return []graph.NodeId{}
	}
	j.searchKPIs.Steps++

	if j.openList.Len() == 0 {
		j.finished = true
		return []graph.NodeId{}
	}

	currentId := j.openList.Pop()
	j.searchKPIs.PqPops++
	j.closed.Add(currentId)
	j.searchKPIs.NumSettledNodes++
	current := j.g.GetNode(currentId)

	if currentId == j.destination {
		if j.debugLevel >= 1 {
			log.Printf("Found path %v -> %v with distance %v\n", j.origin, j.destination, current.G)
		}
		j.finished = true
		j.found = true
		j.expandParents()
		return []graph.NodeId{currentId}
	}

	updated := []graph.NodeId{currentId}
	for _, successor := range j.identifySuccessors(currentId) {
		if j.closed.Has(successor) {
			continue
		}
		j.searchKPIs.RelaxationAttempts++
		tentativeG := current.G + j.distance(currentId, successor)
		node := j.g.GetNode(successor)
		if j.openList.Contains(successor) && tentativeG >= node.G {
			continue
		}
		node.Parent = currentId
		node.Referer = currentId
		node.G = tentativeG
		node.H = j.distance(successor, j.destination)
		node.F = node.G + node.H
		j.push(successor)
		j.searchKPIs.RelaxedEdges++
		updated = append(updated, successor)
	}
	return updated
}

func (j *JumpPointSearch) identifySuccessors(nodeId graph.NodeId) []graph.NodeId {
	cell, _ := graph.CellOf(j.g.GetNode(nodeId))
	successors := make([]graph.NodeId, 0)
	for _, neighbor := range j.pruneNeighbors(nodeId) {
		if jumpPoint, ok := j.jump(neighbor.X, neighbor.Y, cell.X, cell.Y); ok {
			successors = append(successors, jumpPoint)
		}
	}
	return successors
}

// Return the neighbor cells which have to be considered when arriving at the node from its parent
func (j *JumpPointSearch) pruneNeighbors(nodeId graph.NodeId) []graph.Cell {
	node := j.g.GetNode(nodeId)
	c, _ := graph.CellOf(node)
	x, y := c.X, c.Y
	neighbors := make([]graph.Cell, 0, 8)

	if node.Parent == graph.NoNode {
		for _, o := range gridOffsets {
			if j.walkable(x+o.X, y+o.Y) {
				neighbors = append(neighbors, graph.Cell{X: x + o.X, Y: y + o.Y})
			}
		}
		return neighbors
	}

	p, _ := graph.CellOf(j.g.GetNode(node.Parent))
	dx, dy := sign(x-p.X), sign(y-p.Y)
	add := func(x, y int) { neighbors = append(neighbors, graph.Cell{X: x, Y: y}) }

	if dx != 0 && dy != 0 {
		if j.walkable(x, y+dy) {
			add(x, y+dy)
		}
		if j.walkable(x+dx, y) {
			add(x+dx, y)
		}
		if j.walkable(x+dx, y+dy) {
			add(x+dx, y+dy)
		}
		if !j.walkable(x-dx, y) {
			add(x-dx, y+dy)
		}
		if !j.walkable(x, y-dy) {
			add(x+dx, y-dy)
		}
	} else if dx == 0 {
		if j.walkable(x, y+dy) {
			add(x, y+dy)
		}
		if !j.walkable(x+1, y) {
			add(x+1, y+dy)
		}
		if !j.walkable(x-1, y) {
			add(x-1, y+dy)
		}
	} else {
		if j.walkable(x+dx, y) {
			add(x+dx, y)
		}
		if !j.walkable(x, y+1) {
			add(x+dx, y+1)
		}
		if !j.walkable(x, y-1) {
			add(x+dx, y-1)
		}
	}
	return neighbors
}

// Move from (px, py) to (x, y) and keep going in that direction until the goal, a forced neighbor or an obstacle.
// Returns the jump point, false if the run ends at an obstacle.
func (j *JumpPointSearch) jump(x, y, px, py int) (graph.NodeId, bool) {
	nodeId, ok := j.cells[graph.Cell{X: x, Y: y}]
	if !ok {
		return graph.NoNode, false
	}
	if nodeId == j.destination {
		return nodeId, true
	}

	dx, dy := x-px, y-py
	if dx != 0 && dy != 0 {
		if (j.walkable(x-dx, y+dy) && !j.walkable(x-dx, y)) ||
			(j.walkable(x+dx, y-dy) && !j.walkable(x, y-dy)) {
			return nodeId, true
		}
		// a diagonal cell is a jump point if a straight run from it finds one
		if _, ok := j.jump(x+dx, y, x, y); ok {
			return nodeId, true
		}
		if _, ok := j.jump(x, y+dy, x, y); ok {
			return nodeId, true
		}
	} else if dx != 0 {
		if (j.walkable(x+dx, y+1) && !j.walkable(x, y+1)) ||
			(j.walkable(x+dx, y-1) && !j.walkable(x, y-1)) {
			return nodeId, true
		}
	} else {
		if (j.walkable(x+1, y+dy) && !j.walkable(x+1, y)) ||
			(j.walkable(x-1, y+dy) && !j.walkable(x-1, y)) {
			return nodeId, true
		}
	}
	return j.jump(x+dx, y+dy, x, y)
}

func (j *JumpPointSearch) walkable(x, y int) bool {
	_, ok := j.cells[graph.Cell{X: x, Y: y}]
	return ok
}

func (j *JumpPointSearch) distance(a, b graph.NodeId) float64 {
	p, q := j.g.GetNode(a).Point, j.g.GetNode(b).Point
	return math.Hypot(p.Lon()-q.Lon(), p.Lat()-q.Lat())
}

// Fill in the cells between consecutive jump points, so the parent chain is a walk over adjacent cells
func (j *JumpPointSearch) expandParents() {
	jumpPoints := j.g.PathTo(j.origin, j.destination)
	for i := 1; i < len(jumpPoints); i++ {
		from, _ := graph.CellOf(j.g.GetNode(jumpPoints[i-1]))
		to, _ := graph.CellOf(j.g.GetNode(jumpPoints[i]))
		dx, dy := sign(to.X-from.X), sign(to.Y-from.Y)
		previous := jumpPoints[i-1]
		for c := (graph.Cell{X: from.X + dx, Y: from.Y + dy}); ; c = (graph.Cell{X: c.X + dx, Y: c.Y + dy}) {
			nodeId := j.cells[c]
			j.g.GetNode(nodeId).Parent = previous
			previous = nodeId
			if c == to {
				break
			}
		}
	}
}

func (j *JumpPointSearch) Finished() bool { return j.finished }

func (j *JumpPointSearch) GetPath() []graph.NodeId {
	if !j.found {
		return []graph.NodeId{}
	}
	return j.g.PathTo(j.origin, j.destination)
}

func (j *JumpPointSearch) GetKPIs() SearchKPIs { return j.searchKPIs }

func (j *JumpPointSearch) SetDebugLevel(level int) {
	j.debugLevel = level
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}
