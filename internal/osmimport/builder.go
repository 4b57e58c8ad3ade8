package osmimport

import (
	"encoding/json"
	"os"

	"github.com/natevvv/osm-path-visualizer/pkg/graph"
	"github.com/natevvv/osm-path-visualizer/pkg/road"
)

// Create a graph with one node per osm node and an undirected edge between consecutive nodes of a segment.
// The osm node id is kept as external id, edge weights are haversine distances.
func BuildGraph(segments []*road.Segment) *graph.Graph {
	g := graph.NewGraph()
	for _, segment := range segments {
		previous := graph.NoNode
		for i, nodeID := range segment.NodeIDs {
			current := g.AddNode(nodeID, segment.Points[i])
			if previous != graph.NoNode {
				g.AddEdge(previous, current, graph.UnknownWeight)
			}
			previous = current
		}
	}
	return g
}

func ExportRoadJson(roads []*road.Segment, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewEncoder(file).Encode(roads)
}

func LoadRoadJson(filename string) ([]*road.Segment, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var roads []*road.Segment
	if err := json.Unmarshal(bytes, &roads); err != nil {
		return nil, err
	}
	return roads, nil
}
