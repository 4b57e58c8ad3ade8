package routing

import (
	"math"

	"github.com/natevvv/osm-path-visualizer/pkg/geometry"
	"github.com/natevvv/osm-path-visualizer/pkg/graph"
)

type SegmentKind string

const (
	SEARCH SegmentKind = "search"
	ROUTE  SegmentKind = "route"
)

// Animation time per degree of planar distance
const DefaultTrailScale = 50000

// TrailSegment is a line which is drawn between two timestamps
type TrailSegment struct {
	Kind       SegmentKind       `json:"kind"`
	Path       [2]geometry.Point `json:"path"`
	Timestamps [2]float64        `json:"timestamps"`
}

// TrailBuilder turns step results into animation segments.
// The time advances with every segment proportionally to its length.
type TrailBuilder struct {
	g     *graph.Graph
	scale float64
	time  float64
}

func NewTrailBuilder(g *graph.Graph, scale float64) *TrailBuilder {
	if scale <= 0 {
		scale = DefaultTrailScale
	}
	return &TrailBuilder{g: g, scale: scale}
}

func (t *TrailBuilder) segment(kind SegmentKind, from, to graph.NodeId, multiplier float64) TrailSegment {
	a, b := t.g.GetNode(from).Point, t.g.GetNode(to).Point
	duration := geometry.Euclidean(a, b) * t.scale * multiplier
	s := TrailSegment{Kind: kind, Path: [2]geometry.Point{a, b}, Timestamps: [2]float64{t.time, t.time + duration}}
	t.time += duration
	return s
}

// Create a segment from the referer to the node for every updated node which has a referer
func (t *TrailBuilder) Search(updated []graph.NodeId) []TrailSegment {
	segments := make([]TrailSegment, 0, len(updated))
	for _, nodeId := range updated {
		referer := t.g.GetNode(nodeId).Referer
		if referer == graph.NoNode || referer == nodeId {
			continue
		}
		segments = append(segments, t.segment(SEARCH, referer, nodeId, 1))
	}
	return segments
}

// Create the segments along the path. Their duration is stretched by log2(speed), at least by 1.
func (t *TrailBuilder) Route(nodes []graph.NodeId, speed int) []TrailSegment {
	multiplier := math.Max(math.Log2(float64(speed)), 1)
	segments := make([]TrailSegment, 0, len(nodes))
	for i := 1; i < len(nodes); i++ {
		segments = append(segments, t.segment(ROUTE, nodes[i-1], nodes[i], multiplier))
	}
	return segments
}

// Return the end time of the last segment
func (t *TrailBuilder) Time() float64 { return t.time }

func (t *TrailBuilder) Reset() { t.time = 0 }
