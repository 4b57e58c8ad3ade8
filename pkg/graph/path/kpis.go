package path

type SearchKPIs struct {
	Steps              int `json:"steps"`              // number of performed NextStep calls which did work
	PqPops             int `json:"pqPops"`             // store the amount of Pops which were performed on the priority queue for the computed search
	PqUpdates          int `json:"pqUpdates"`          // store each update or push to the priority queue
	RelaxationAttempts int `json:"relaxationAttempts"` // store the attempt for relaxed edges
	RelaxedEdges       int `json:"relaxedEdges"`       // number of relaxed edges
	NumSettledNodes    int `json:"settledNodes"`       // number of settled nodes
}

// Reset the kpi
func (kpi *SearchKPIs) Reset() {
	kpi.Steps = 0
	kpi.PqPops = 0
	kpi.PqUpdates = 0
	kpi.RelaxationAttempts = 0
	kpi.RelaxedEdges = 0
	kpi.NumSettledNodes = 0
}
