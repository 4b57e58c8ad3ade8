package graph

import (
	"math"

	"github.com/natevvv/osm-path-visualizer/pkg/geometry"
)

// Cell of a grid graph
type Cell struct {
	X, Y int
}

// Return the external id of the cell in a grid of the given width
func (c Cell) ExternalId(width int) int64 {
	return int64(c.Y*width + c.X)
}

// Create an 8-connected grid graph with width x height cells.
// A cell is a node at lon = x, lat = y. Blocked cells get no node.
// Straight moves cost 1, diagonal moves cost sqrt(2). Diagonal moves are allowed between any two free cells.
func NewGrid(width, height int, blocked []Cell) *Graph {
	g := NewGraph()
	isBlocked := make(map[Cell]bool, len(blocked))
	for _, c := range blocked {
		isBlocked[c] = true
	}

	cells := make(map[Cell]NodeId)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := Cell{X: x, Y: y}
			if isBlocked[c] {
				continue
			}
			cells[c] = g.AddNode(c.ExternalId(width), geometry.MakePoint(float64(y), float64(x)))
		}
	}

	// connect every cell to its east, north and both north diagonals, which covers all 8 directions
	offsets := []Cell{{1, 0}, {0, 1}, {1, 1}, {-1, 1}}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			from, ok := cells[Cell{X: x, Y: y}]
			if !ok {
				continue
			}
			for _, o := range offsets {
				to, ok := cells[Cell{X: x + o.X, Y: y + o.Y}]
				if !ok {
					continue
				}
				g.AddEdge(from, to, math.Hypot(float64(o.X), float64(o.Y)))
			}
		}
	}
	return g
}

// Return the cell of a node if its coordinates are integral
func CellOf(n *Node) (Cell, bool) {
	if !geometry.IsIntegral(n.Point) {
		return Cell{}, false
	}
	return Cell{X: int(n.Lon()), Y: int(n.Lat())}, true
}
