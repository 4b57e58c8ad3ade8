package path

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natevvv/osm-path-visualizer/pkg/geometry"
	"github.com/natevvv/osm-path-visualizer/pkg/graph"
	"github.com/natevvv/osm-path-visualizer/pkg/slice"
)

const graphFmi = `10
26
# nodes
0 0 0
1 0 1
2 0 2
3 1 0
4 1 1
5 1 2
6 2 0
7 2 1
8 2 2
9 3 3
# edges
0 1 1
0 3 1
1 0 1
1 2 1
1 4 1
2 1 1
2 5 1
3 0 1
3 4 1
3 6 1
4 1 1
4 3 1
4 5 1
4 7 1
5 2 1
5 4 1
5 8 1
6 3 1
6 7 1
7 4 1
7 6 1
7 8 1
8 5 1
8 7 1
8 9 1
9 8 1`

// tiny offsets keep the haversine heuristic below the explicit weights
const step = 0.000001

// A - B - C - D with weights 1, 1, 1 and the shortcut A - D with weight 5
func pathGraph() (*graph.Graph, []graph.NodeId) {
	g := graph.NewGraph()
	ids := make([]graph.NodeId, 4)
	for i := range ids {
		ids[i] = g.AddNode(int64(i), geometry.MakePoint(0, float64(i)*step))
	}
	g.AddEdge(ids[0], ids[1], 1)
	g.AddEdge(ids[1], ids[2], 1)
	g.AddEdge(ids[2], ids[3], 1)
	g.AddEdge(ids[0], ids[3], 5)
	return g, ids
}

// A - B and C - D without connection
func disconnectedGraph() (*graph.Graph, []graph.NodeId) {
	g := graph.NewGraph()
	ids := make([]graph.NodeId, 4)
	for i := range ids {
		ids[i] = g.AddNode(int64(i), geometry.MakePoint(0, float64(i)*step))
	}
	g.AddEdge(ids[0], ids[1], 1)
	g.AddEdge(ids[2], ids[3], 1)
	return g, ids
}

// Random connected graph in a small area. Weights are at least the haversine distance,
// so the default heuristic stays admissible and consistent.
func randomGraph(rng *rand.Rand, numNodes, numExtraEdges int) *graph.Graph {
	g := graph.NewGraph()
	for i := 0; i < numNodes; i++ {
		g.AddNode(int64(i), geometry.MakePoint(rng.Float64()*0.01, rng.Float64()*0.01))
	}
	weight := func(a, b graph.NodeId) float64 {
		return geometry.Haversine(g.GetNode(a).Point, g.GetNode(b).Point) * (1 + rng.Float64())
	}
	// spanning tree
	for i := 1; i < numNodes; i++ {
		j := rng.Intn(i)
		g.AddEdge(i, j, weight(i, j))
	}
	for e := 0; e < numExtraEdges; e++ {
		a, b := rng.Intn(numNodes), rng.Intn(numNodes)
		if a != b {
			g.AddEdge(a, b, weight(a, b))
		}
	}
	return g
}

func newAlgorithm(t *testing.T, kind Kind, g *graph.Graph, opts ...Option) Algorithm {
	t.Helper()
	a, err := New(kind, g, opts...)
	require.NoError(t, err)
	return a
}

// Run the algorithm and return the step results
func runSteps(t *testing.T, a Algorithm, origin, destination graph.NodeId) [][]graph.NodeId {
	t.Helper()
	require.NoError(t, a.Start(origin, destination))
	steps := make([][]graph.NodeId, 0)
	for !a.Finished() {
		steps = append(steps, a.NextStep())
		require.Less(t, len(steps), 100000, "algorithm does not terminate")
	}
	return steps
}

func assertValidPath(t *testing.T, g *graph.Graph, path []graph.NodeId, origin, destination graph.NodeId) float64 {
	t.Helper()
	require.NotEmpty(t, path)
	assert.Equal(t, origin, path[0])
	assert.Equal(t, destination, path[len(path)-1])
	assert.False(t, slice.HasDuplicates(path), "path contains a cycle: %v", path)
	weight, ok := g.PathWeight(path)
	require.True(t, ok, "consecutive path nodes are not connected: %v", path)
	return weight
}

// Minimal weight over all simple paths
func bruteForce(g *graph.Graph, origin, destination graph.NodeId) float64 {
	best := math.Inf(1)
	visited := make([]bool, g.NodeCount())
	var dfs func(nodeId graph.NodeId, cost float64)
	dfs = func(nodeId graph.NodeId, cost float64) {
		if nodeId == destination {
			best = math.Min(best, cost)
			return
		}
		visited[nodeId] = true
		for _, nb := range g.GetNode(nodeId).Neighbors {
			if !visited[nb.Node] {
				dfs(nb.Node, cost+g.GetEdge(nb.Edge).Weight)
			}
		}
		visited[nodeId] = false
	}
	dfs(origin, 0)
	return best
}

func TestParseKind(t *testing.T) {
	names := []string{"astar", "dijkstra", "greedy", "bidirectional", "bellmanford", "floydwarshall", "jump"}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			kind, ok := ParseKind(name)
			require.True(t, ok)
			assert.Equal(t, name, kind.String())

			g, _ := pathGraph()
			a := newAlgorithm(t, kind, g)
			assert.NotNil(t, a)
			assert.False(t, a.Finished())
		})
	}

	_, ok := ParseKind("dfs")
	assert.False(t, ok)
	assert.Equal(t, "INVALID", Kind(42).String())

	_, err := New(Kind(42), graph.NewGraph())
	assert.Error(t, err)
}

func TestMenu(t *testing.T) {
	menu := Menu()
	assert.Len(t, menu, len(Kinds())-1)
	assert.NotContains(t, menu, JUMP_POINT)
	assert.Contains(t, menu, DefaultKind)
	assert.True(t, JUMP_POINT.Experimental())
}

func TestStartRejectsUnknownNodes(t *testing.T) {
	for _, kind := range Kinds() {
		g, _ := pathGraph()
		a := newAlgorithm(t, kind, g)
		assert.ErrorIs(t, a.Start(0, 7), ErrNodeNotInGraph, kind.String())
		assert.ErrorIs(t, a.Start(-1, 0), ErrNodeNotInGraph, kind.String())
		assert.Empty(t, a.NextStep(), "no step without start")
	}
}

func TestAStarPathGraph(t *testing.T) {
	g, ids := pathGraph()
	a := newAlgorithm(t, ASTAR, g)
	steps := runSteps(t, a, ids[0], ids[3])

	expected := [][]graph.NodeId{
		{ids[0], ids[1], ids[3]},
		{ids[1], ids[2]},
		{ids[2], ids[3]},
		{ids[3]},
	}
	assert.Equal(t, expected, steps)
	assert.Equal(t, []graph.NodeId{ids[0], ids[1], ids[2], ids[3]}, a.GetPath())
	assert.Equal(t, 3.0, g.GetNode(ids[3]).G)
	assert.Equal(t, ids[2], g.GetNode(ids[3]).Referer)

	kpis := a.GetKPIs()
	assert.Equal(t, 4, kpis.Steps)
	assert.Equal(t, 4, kpis.PqPops)

	// finished is terminal until the next start
	assert.Empty(t, a.NextStep())
	assert.True(t, a.Finished())
}

func TestDisconnectedGraphExhausts(t *testing.T) {
	for _, kind := range []Kind{ASTAR, DIJKSTRA, GREEDY, BIDIRECTIONAL, BELLMAN_FORD, FLOYD_WARSHALL} {
		t.Run(kind.String(), func(t *testing.T) {
			g, ids := disconnectedGraph()
			a := newAlgorithm(t, kind, g)
			steps := runSteps(t, a, ids[0], ids[3])
			assert.True(t, a.Finished())
			assert.Empty(t, a.GetPath())
			if kind == ASTAR {
				assert.Len(t, steps, 3)
				assert.Empty(t, steps[len(steps)-1])
			}
		})
	}
}

func TestOriginIsDestination(t *testing.T) {
	for _, kind := range []Kind{ASTAR, DIJKSTRA, GREEDY, BIDIRECTIONAL, FLOYD_WARSHALL} {
		t.Run(kind.String(), func(t *testing.T) {
			g, ids := pathGraph()
			a := newAlgorithm(t, kind, g)
			runSteps(t, a, ids[1], ids[1])
			assert.Equal(t, []graph.NodeId{ids[1]}, a.GetPath())
		})
	}
}

func TestBestFirstPathsAreValid(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 20; run++ {
		g := randomGraph(rng, 40, 60)
		origin, destination := rng.Intn(40), rng.Intn(40)
		reference := NewDijkstra(g).ComputeShortestPath(origin, destination)
		require.GreaterOrEqual(t, reference, 0.0)

		for _, kind := range []Kind{ASTAR, DIJKSTRA, GREEDY} {
			a := newAlgorithm(t, kind, g)
			runSteps(t, a, origin, destination)
			weight := assertValidPath(t, g, a.GetPath(), origin, destination)
			if kind == GREEDY {
				assert.GreaterOrEqual(t, weight, reference-1e-6)
			} else {
				assert.InDelta(t, reference, weight, 1e-6, "%v is not optimal", kind)
			}
		}
	}
}

func TestAStarMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for run := 0; run < 20; run++ {
		g := randomGraph(rng, 8, 6)
		origin, destination := rng.Intn(8), rng.Intn(8)
		expected := bruteForce(g, origin, destination)

		a := newAlgorithm(t, ASTAR, g)
		runSteps(t, a, origin, destination)
		weight := assertValidPath(t, g, a.GetPath(), origin, destination)
		assert.InDelta(t, expected, weight, 1e-6)
	}
}

func TestDijkstraOnLattice(t *testing.T) {
	g, err := graph.NewGraphFromFmiString(graphFmi)
	require.NoError(t, err)

	reference := NewDijkstra(g)
	assert.Equal(t, 5.0, reference.ComputeShortestPath(0, 9))
	assert.Len(t, reference.GetPath(0, 9), 6)

	for _, kind := range []Kind{DIJKSTRA, ASTAR} {
		// the weights are given in coordinate units, so the planar distance is the fitting estimate
		a := newAlgorithm(t, kind, g, WithHeuristic(EuclideanHeuristic))
		path, err := FindPath(a, 0, 9)
		require.NoError(t, err)
		weight := assertValidPath(t, g, path, 0, 9)
		assert.Equal(t, 5.0, weight)
	}
}

func TestAStarSettlesLessThanDijkstra(t *testing.T) {
	g, err := graph.NewGraphFromFmiString(graphFmi)
	require.NoError(t, err)

	dijkstra := newAlgorithm(t, DIJKSTRA, g)
	runSteps(t, dijkstra, 0, 9)
	astar := newAlgorithm(t, ASTAR, g, WithHeuristic(EuclideanHeuristic))
	runSteps(t, astar, 0, 9)

	assert.LessOrEqual(t, astar.GetKPIs().NumSettledNodes, dijkstra.GetKPIs().NumSettledNodes)
}

func TestBidirectionalNotWorseThanUnidirectional(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for run := 0; run < 30; run++ {
		g := randomGraph(rng, 50, 80)
		origin, destination := rng.Intn(50), rng.Intn(50)

		astar := newAlgorithm(t, ASTAR, g)
		runSteps(t, astar, origin, destination)
		astarWeight := assertValidPath(t, g, astar.GetPath(), origin, destination)

		bidirectional := newAlgorithm(t, BIDIRECTIONAL, g)
		runSteps(t, bidirectional, origin, destination)
		weight := assertValidPath(t, g, bidirectional.GetPath(), origin, destination)

		assert.LessOrEqual(t, weight, astarWeight+1e-6)
	}
}

func TestBidirectionalPathGraph(t *testing.T) {
	g, ids := pathGraph()
	b := NewBidirectional(g, nil)
	steps := runSteps(t, b, ids[0], ids[3])

	path := b.GetPath()
	assert.Equal(t, []graph.NodeId{ids[0], ids[1], ids[2], ids[3]}, path)
	assert.InDelta(t, 3.0, b.GetPathLength(), 1e-9)

	meeting := b.MeetingNode()
	require.NotEqual(t, graph.NoNode, meeting)
	assert.Equal(t, []graph.NodeId{meeting}, steps[len(steps)-1], "the finishing step reports the meeting node")
}

// 0 - 1 - 2 - 3 - 4 with unit weights, both frontiers grow at the same pace and meet in the middle
func TestBidirectionalMeetingNodeKeepsBackwardParent(t *testing.T) {
	g := graph.NewGraph()
	for i := 0; i < 5; i++ {
		g.AddNode(int64(i), geometry.MakePoint(0, float64(i)*step))
	}
	for i := 1; i < 5; i++ {
		g.AddEdge(i-1, i, 1)
	}

	b := NewBidirectional(g, nil)
	runSteps(t, b, 0, 4)

	assert.Equal(t, []graph.NodeId{0, 1, 2, 3, 4}, b.GetPath())
	assert.InDelta(t, 4.0, b.GetPathLength(), 1e-9)
	assert.Equal(t, 2, b.MeetingNode())
	assert.Equal(t, 3, g.GetNode(2).PrevParent)
	// the parent chain is rewritten to lead from the destination back to the origin
	assert.Equal(t, 3, g.GetNode(4).Parent)
	assert.Equal(t, 2, g.GetNode(3).Parent)
	assert.Equal(t, 1, g.GetNode(2).Parent)
}

func TestReferenceDijkstra(t *testing.T) {
	g, ids := pathGraph()
	d := NewDijkstra(g)
	assert.Equal(t, 3.0, d.ComputeShortestPath(ids[0], ids[3]))
	assert.Equal(t, []graph.NodeId{ids[0], ids[1], ids[2], ids[3]}, d.GetPath(ids[0], ids[3]))
	kpis := d.GetKPIs()
	assert.Equal(t, 4, kpis.PqPops)
	assert.Equal(t, 4, kpis.NumSettledNodes)
	// D is pushed via the shortcut first and improved once via C
	assert.Equal(t, 5, kpis.PqUpdates)
	assert.Equal(t, math.Inf(1), g.GetNode(ids[3]).G, "the search state of the graph is untouched")

	disconnected, dids := disconnectedGraph()
	d = NewDijkstra(disconnected)
	assert.Equal(t, -1.0, d.ComputeShortestPath(dids[0], dids[3]))
	assert.Empty(t, d.GetPath(dids[0], dids[3]))
}

func TestBellmanFordPathGraph(t *testing.T) {
	g, ids := pathGraph()
	b := NewBellmanFord(g)
	require.NoError(t, b.Start(ids[0], ids[3]))
	assert.Equal(t, 3, b.Rounds())

	first := b.NextStep()
	assert.Equal(t, []graph.NodeId{ids[1], ids[3], ids[2]}, first)
	assert.True(t, g.GetNode(ids[1]).DistanceFromStart == 1)

	b.NextStep()
	b.NextStep()
	assert.True(t, b.Finished())
	assert.Equal(t, 3, b.Round())
	assert.Equal(t, 3.0, g.GetNode(ids[3]).DistanceFromStart)
	assert.Equal(t, []graph.NodeId{ids[0], ids[1], ids[2], ids[3]}, b.GetPath())

	// converged: an extra round doesn't change anything
	assert.Empty(t, b.RelaxRound())
	for _, e := range g.GetEdges() {
		if e.From == ids[0] && e.To == ids[3] {
			assert.True(t, e.Visited, "the shortcut was relaxed in the first round")
		}
	}
}

func TestBellmanFordConverges(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for run := 0; run < 10; run++ {
		g := randomGraph(rng, 30, 40)
		origin, destination := rng.Intn(30), rng.Intn(30)
		reference := NewDijkstra(g).ComputeShortestPath(origin, destination)

		b := NewBellmanFord(g)
		steps := runSteps(t, b, origin, destination)
		assert.LessOrEqual(t, len(steps), g.NodeCount()-1)
		assert.Empty(t, b.RelaxRound())
		assert.InDelta(t, reference, g.GetNode(destination).DistanceFromStart, 1e-6)
		assertValidPath(t, g, b.GetPath(), origin, destination)
	}
}

func TestFloydWarshall(t *testing.T) {
	g, ids := pathGraph()
	fw := NewFloydWarshall(g)
	require.NoError(t, fw.Start(ids[0], ids[3]))

	_, err := fw.GetDistance(ids[0], ids[3])
	assert.ErrorIs(t, err, ErrSearchNotFinished)
	_, err = fw.GetPathBetween(ids[0], ids[3])
	assert.ErrorIs(t, err, ErrSearchNotFinished)
	_, err = fw.Distances()
	assert.ErrorIs(t, err, ErrSearchNotFinished)

	steps := 0
	for !fw.Finished() {
		fw.NextStep()
		steps++
	}
	assert.Equal(t, g.NodeCount(), steps, "one layer per step")

	distance, err := fw.GetDistance(ids[0], ids[3])
	require.NoError(t, err)
	assert.Equal(t, 3.0, distance)
	path, err := fw.GetPathBetween(ids[3], ids[0])
	require.NoError(t, err)
	assert.Equal(t, []graph.NodeId{ids[3], ids[2], ids[1], ids[0]}, path)
	assert.Equal(t, []graph.NodeId{ids[0], ids[1], ids[2], ids[3]}, fw.GetPath())
	assert.Equal(t, []graph.NodeId{ids[0], ids[1], ids[2], ids[3]}, g.PathTo(ids[0], ids[3]))
}

func TestFloydWarshallTriangleInequality(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	g := randomGraph(rng, 25, 30)
	// an isolated node keeps infinite distances in the matrix
	g.AddNode(1000, geometry.MakePoint(0.02, 0.02))

	fw := NewFloydWarshall(g)
	runSteps(t, fw, 0, 1)

	distances, err := fw.Distances()
	require.NoError(t, err)
	n := g.NodeCount()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				assert.LessOrEqual(t, distances.At(i, j), distances.At(i, k)+distances.At(k, j)+1e-9)
			}
		}
	}

	reference := NewDijkstra(g)
	for _, pair := range [][2]graph.NodeId{{0, 1}, {3, 17}, {24, 5}} {
		expected := reference.ComputeShortestPath(pair[0], pair[1])
		distance, err := fw.GetDistance(pair[0], pair[1])
		require.NoError(t, err)
		assert.InDelta(t, expected, distance, 1e-6)
	}
	distance, err := fw.GetDistance(0, n-1)
	require.NoError(t, err)
	assert.True(t, math.IsInf(distance, 1))
}

func TestFloydWarshallTooLarge(t *testing.T) {
	g := graph.NewGraph()
	for i := 0; i <= MaxFloydWarshallNodes; i++ {
		g.AddNode(int64(i), geometry.MakePoint(0, 0))
	}
	assert.ErrorIs(t, NewFloydWarshall(g).Start(0, 1), ErrGraphTooLarge)
}

func TestResetAndStartIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	g := randomGraph(rng, 30, 40)
	grid := graph.NewGrid(8, 8, []graph.Cell{{X: 3, Y: 2}, {X: 3, Y: 3}, {X: 3, Y: 4}})

	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			target, origin, destination := g, graph.NodeId(2), graph.NodeId(25)
			if kind == JUMP_POINT {
				target, origin, destination = grid, 0, grid.NodeCount()-1
			}
			a := newAlgorithm(t, kind, target)
			first := runSteps(t, a, origin, destination)
			firstPath := a.GetPath()
			second := runSteps(t, a, origin, destination)
			assert.Equal(t, first, second)
			assert.Equal(t, firstPath, a.GetPath())

			// a fresh instance behaves the same
			third := runSteps(t, newAlgorithm(t, kind, target), origin, destination)
			assert.Equal(t, first, third)
		})
	}
}

func TestRunToCompletion(t *testing.T) {
	g, ids := pathGraph()
	a := newAlgorithm(t, DIJKSTRA, g)
	require.NoError(t, a.Start(ids[0], ids[3]))
	steps, err := RunToCompletion(a, 2)
	assert.Error(t, err)
	assert.Equal(t, 2, steps)

	steps, err = RunToCompletion(a, 0)
	require.NoError(t, err)
	assert.Positive(t, steps)
	assert.True(t, a.Finished())
}
