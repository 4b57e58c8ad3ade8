package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/natevvv/osm-path-visualizer/pkg/geometry"
)

// fmi parse states
const (
	PARSE_NODE_COUNT = iota
	PARSE_EDGE_COUNT = iota
	PARSE_NODES      = iota
	PARSE_EDGES      = iota
)

// Write the graph to the given file in the fmi format
func WriteFmi(g *Graph, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create fmi file: %w", err)
	}
	if err := writeFmi(g, file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close fmi file: %w", err)
	}
	return nil
}

func writeFmi(g *Graph, w io.Writer) error {
	writer := bufio.NewWriter(w)
	if _, err := writer.WriteString(g.AsString()); err != nil {
		return fmt.Errorf("write fmi file: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("write fmi file: %w", err)
	}
	return nil
}

// Parse a graph from an fmi string
func NewGraphFromFmiString(fmi string) (*Graph, error) {
	return ReadFmi(strings.NewReader(fmi))
}

// Parse a graph from an fmi file
func NewGraphFromFmiFile(filename string) (*Graph, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open fmi file: %w", err)
	}
	defer file.Close()
	return ReadFmi(file)
}

// Read a graph in the fmi format.
// Edges refer to the external node ids. Edges are undirected, so the reverse line of an edge is merged into the same edge.
func ReadFmi(r io.Reader) (*Graph, error) {
	scanner := bufio.NewScanner(r)

	numNodes := 0
	numParsedNodes := 0
	g := NewGraph()

	parseState := PARSE_NODE_COUNT
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if len(line) < 1 {
			// skip empty lines
			continue
		} else if line[0] == '#' {
			// skip comments
			continue
		}

		switch parseState {
		case PARSE_NODE_COUNT:
			val, err := strconv.Atoi(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid node count: %w", lineNumber, err)
			}
			numNodes = val
			parseState = PARSE_EDGE_COUNT
		case PARSE_EDGE_COUNT:
			if _, err := strconv.Atoi(line); err != nil {
				return nil, fmt.Errorf("line %d: invalid edge count: %w", lineNumber, err)
			}
			parseState = PARSE_NODES
			if numNodes == 0 {
				parseState = PARSE_EDGES
			}
		case PARSE_NODES:
			var id int64
			var lat, lon float64
			if _, err := fmt.Sscanf(line, "%d %g %g", &id, &lat, &lon); err != nil {
				return nil, fmt.Errorf("line %d: invalid node: %w", lineNumber, err)
			}
			g.AddNode(id, geometry.MakePoint(lat, lon))
			numParsedNodes++
			if numParsedNodes == numNodes {
				parseState = PARSE_EDGES
			}
		case PARSE_EDGES:
			var from, to int64
			var weight float64
			if _, err := fmt.Sscanf(line, "%d %d %g", &from, &to, &weight); err != nil {
				return nil, fmt.Errorf("line %d: invalid edge: %w", lineNumber, err)
			}
			fromId, ok := g.Lookup(from)
			if !ok {
				return nil, fmt.Errorf("line %d: unknown node %d", lineNumber, from)
			}
			toId, ok := g.Lookup(to)
			if !ok {
				return nil, fmt.Errorf("line %d: unknown node %d", lineNumber, to)
			}
			g.AddEdge(fromId, toId, weight)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if g.NodeCount() != numNodes {
		// cannot check edge count because files may contain both directions or duplicates, which are merged during import
		return nil, fmt.Errorf("invalid parsing result: expected %d nodes, got %d", numNodes, g.NodeCount())
	}

	return g, nil
}
