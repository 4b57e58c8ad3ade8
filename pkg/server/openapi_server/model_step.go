package openapi_server

import (
	"github.com/natevvv/osm-path-visualizer/pkg/graph/path"
	"github.com/natevvv/osm-path-visualizer/pkg/routing"
)

type StepRequest struct {
	Count int `json:"count,omitempty"`
}

func AssertStepRequestRequired(obj StepRequest) error {
	if obj.Count < 0 {
		return &RequiredError{Field: "count"}
	}
	return nil
}

// StepNode is a node whose search state changed
type StepNode struct {
	Id       int64   `json:"id"`
	Point    Point   `json:"point"`
	Distance float64 `json:"distance"`
	Parent   int64   `json:"parent"` // external id of the parent, -1 if there is none
}

type RouteResult struct {
	Reachable bool    `json:"reachable"`
	Length    float64 `json:"length"`
	Waypoints []Point `json:"waypoints"`
}

type StepResponse struct {
	Steps    int                    `json:"steps"`
	Nodes    []StepNode             `json:"nodes"`
	Trail    []routing.TrailSegment `json:"trail"`
	Finished bool                   `json:"finished"`
	Route    *RouteResult           `json:"route,omitempty"` // only set once the search is finished
	KPIs     path.SearchKPIs        `json:"kpis"`
}
