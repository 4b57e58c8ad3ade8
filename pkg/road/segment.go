package road

import (
	"strconv"
	"strings"

	"github.com/natevvv/osm-path-visualizer/pkg/geometry"
)

type RoadType int

const (
	Unknown RoadType = iota
	Motorway
	Trunk
	Primary
	Secondary
	Tertiary
	Unclassified
	Residential
	LivingStreet
	Service
)

var roadTypeNames = []string{"Unknown", "Motorway", "Trunk", "Primary", "Secondary", "Tertiary", "Unclassified", "Residential", "LivingStreet", "Service"}

// osm highway values, links are treated like the road they belong to
var highwayTypes = map[string]RoadType{
	"motorway":      Motorway,
	"trunk":         Trunk,
	"primary":       Primary,
	"secondary":     Secondary,
	"tertiary":      Tertiary,
	"unclassified":  Unclassified,
	"residential":   Residential,
	"living_street": LivingStreet,
	"service":       Service,
}

func (r RoadType) String() string {
	if r < 0 || int(r) >= len(roadTypeNames) {
		return roadTypeNames[Unknown]
	}
	return roadTypeNames[r]
}

// Return the road type of an osm highway tag value
func ParseHighway(highway string) RoadType {
	if t, ok := highwayTypes[strings.TrimSuffix(highway, "_link")]; ok {
		return t
	}
	return Unknown
}

// Segment is a part of an osm way. Consecutive nodes are connected.
type Segment struct {
	ID       int64
	Type     RoadType
	NodeIDs  []int64          // osm node ids, parallel to Points
	Points   []geometry.Point // positions of the nodes
	Tags     map[string]string
	OneWay   bool
	MaxSpeed int // km/h, 0 if unknown
}

// Create a segment from the tags of a way. Points are added with Append.
func NewSegment(id int64, roadType RoadType, tags map[string]string) *Segment {
	return &Segment{
		ID:       id,
		Type:     roadType,
		NodeIDs:  make([]int64, 0),
		Points:   make([]geometry.Point, 0),
		Tags:     tags,
		OneWay:   tags["oneway"] == "yes",
		MaxSpeed: parseMaxSpeed(tags["maxspeed"]),
	}
}

func (s *Segment) Append(nodeID int64, p geometry.Point) {
	s.NodeIDs = append(s.NodeIDs, nodeID)
	s.Points = append(s.Points, p)
}

func (s *Segment) Len() int { return len(s.NodeIDs) }

// maxspeed is given in km/h, or with a "mph" suffix
func parseMaxSpeed(value string) int {
	value = strings.TrimSpace(value)
	factor := 1.0
	if strings.HasSuffix(value, "mph") {
		factor = 1.609344
		value = strings.TrimSpace(strings.TrimSuffix(value, "mph"))
	}
	speed, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return int(float64(speed)*factor + 0.5)
}
