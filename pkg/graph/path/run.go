package path

import (
	"fmt"

	"github.com/natevvv/osm-path-visualizer/pkg/graph"
)

// Perform steps until the algorithm is finished, at most maxSteps (unbounded if maxSteps <= 0).
// Returns the number of performed steps.
func RunToCompletion(a Algorithm, maxSteps int) (int, error) {
	steps := 0
	for !a.Finished() {
		if maxSteps > 0 && steps >= maxSteps {
			return steps, fmt.Errorf("not finished after %v steps", steps)
		}
		a.NextStep()
		steps++
	}
	return steps, nil
}

// Start the algorithm and run it to completion. Returns the found path.
func FindPath(a Algorithm, origin, destination graph.NodeId) ([]graph.NodeId, error) {
	if err := a.Start(origin, destination); err != nil {
		return nil, err
	}
	if _, err := RunToCompletion(a, 0); err != nil {
		return nil, err
	}
	return a.GetPath(), nil
}
