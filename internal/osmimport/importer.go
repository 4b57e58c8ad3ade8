package osmimport

import (
	"github.com/paulmach/orb"

	"github.com/natevvv/osm-path-visualizer/pkg/geometry"
	"github.com/natevvv/osm-path-visualizer/pkg/road"
)

// Importer reads the highways of an osm file into road segments
type Importer interface {
	Import() error
	Roads() []*road.Segment
}

type Options struct {
	// only nodes inside the bound are imported, nil imports everything
	Bound *orb.Bound
	// road types which are imported, empty means all known types
	RoadTypes []road.RoadType
}

// way as it is read from the file, before the node positions are known
type way struct {
	id      int64
	tags    map[string]string
	nodeIDs []int64
}

// collector holds the state which is shared between the pbf and the xml importer
type collector struct {
	options Options
	allowed map[road.RoadType]bool
	nodes   map[int64]geometry.Point
	roads   []*road.Segment
}

func newCollector(options Options) *collector {
	allowed := make(map[road.RoadType]bool)
	for _, t := range options.RoadTypes {
		allowed[t] = true
	}
	return &collector{
		options: options,
		allowed: allowed,
		nodes:   make(map[int64]geometry.Point),
		roads:   make([]*road.Segment, 0),
	}
}

func (c *collector) addNode(id int64, lat, lon float64) {
	p := geometry.MakePoint(lat, lon)
	if c.options.Bound != nil && !c.options.Bound.Contains(p) {
		return
	}
	c.nodes[id] = p
}

// Return the road type of the way, Unknown if it is no (selected) road
func (c *collector) roadType(tags map[string]string) road.RoadType {
	highway, ok := tags["highway"]
	if !ok {
		return road.Unknown
	}
	roadType := road.ParseHighway(highway)
	if len(c.allowed) > 0 && !c.allowed[roadType] {
		return road.Unknown
	}
	return roadType
}

// Create the segments of a way. The way is split where a node is missing (outside of the bound or not in the file).
func (c *collector) segments(w way) []*road.Segment {
	roadType := c.roadType(w.tags)
	if roadType == road.Unknown {
		return nil
	}

	segments := make([]*road.Segment, 0, 1)
	current := road.NewSegment(w.id, roadType, w.tags)
	for _, nodeID := range w.nodeIDs {
		point, ok := c.nodes[nodeID]
		if !ok {
			if current.Len() >= 2 {
				segments = append(segments, current)
			}
			current = road.NewSegment(w.id, roadType, w.tags)
			continue
		}
		current.Append(nodeID, point)
	}
	if current.Len() >= 2 {
		segments = append(segments, current)
	}
	return segments
}
