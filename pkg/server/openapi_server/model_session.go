package openapi_server

type SessionRequest struct {
	Origin *Point `json:"origin"`
	// radius of the region around the origin in meters
	Radius float64 `json:"radius,omitempty"`
}

func AssertSessionRequestRequired(obj SessionRequest) error {
	if obj.Origin == nil {
		return &RequiredError{Field: "origin"}
	}
	return AssertPointRequired(*obj.Origin)
}

type SessionResponse struct {
	Id         string   `json:"id"`
	Origin     Point    `json:"origin"` // position of the start node
	NodeCount  int      `json:"nodeCount"`
	EdgeCount  int      `json:"edgeCount"`
	Radius     float64  `json:"radius"`
	Algorithms []string `json:"algorithms"`
}

type StartRequest struct {
	Algorithm   string `json:"algorithm,omitempty"`
	Destination *Point `json:"destination"`
}

func AssertStartRequestRequired(obj StartRequest) error {
	if obj.Destination == nil {
		return &RequiredError{Field: "destination"}
	}
	return AssertPointRequired(*obj.Destination)
}

type StartResponse struct {
	Algorithm   string `json:"algorithm"`
	Origin      Point  `json:"origin"`
	Destination Point  `json:"destination"`
}

type Algorithms struct {
	Algorithms []string `json:"algorithms"`
	Default    string   `json:"default"`
}

type NearestNode struct {
	Id    int64 `json:"id"`
	Point Point `json:"point"`
}
