package main

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/natevvv/osm-path-visualizer/pkg/graph"
	p "github.com/natevvv/osm-path-visualizer/pkg/graph/path"
)

var (
	graphFile        string
	targetFile       string
	useRandomTargets bool
	amountTargets    int
	storeTargets     bool
	algorithms       []string
	cpuProfile       string
	debugLevel       int
)

var rootCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Run the search algorithms to completion and compare them with a reference dijkstra",
	RunE:  runBenchmark,
}

func init() {
	rootCmd.Flags().StringVarP(&graphFile, "graph", "g", "graphs/road_graph.fmi", "fmi graph file")
	rootCmd.Flags().StringVar(&targetFile, "targets", "", "targets file (default: <graph>.targets.txt)")
	rootCmd.Flags().BoolVar(&useRandomTargets, "random", false, "Create (new) random targets")
	rootCmd.Flags().IntVarP(&amountTargets, "n", "n", 100, "How many new targets should get created")
	rootCmd.Flags().BoolVar(&storeTargets, "store", false, "Store targets (when newly generated)")
	rootCmd.Flags().StringSliceVar(&algorithms, "search", nil, "algorithms to run (default: the menu)")
	rootCmd.Flags().StringVar(&cpuProfile, "cpu", "", "write cpu profile to file")
	rootCmd.Flags().IntVar(&debugLevel, "debug", 0, "debug level of the algorithms")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

// origin, destination, reference length, #hops (nodes from source to target)
type target struct {
	origin      graph.NodeId
	destination graph.NodeId
	length      float64
	hops        int
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	start := time.Now()
	g, err := graph.NewGraphFromFmiFile(graphFile)
	if err != nil {
		return err
	}
	fmt.Printf("[TIME-Import] = %s\n", time.Since(start))

	kinds, err := selectedKinds()
	if err != nil {
		return err
	}

	if targetFile == "" {
		targetFile = strings.TrimSuffix(graphFile, ".fmi") + ".targets.txt"
	}
	referenceDijkstra := p.NewDijkstra(g)
	var targets []target
	if useRandomTargets {
		targets = createTargets(amountTargets, referenceDijkstra)
		if storeTargets {
			if err := writeTargets(targets, targetFile); err != nil {
				return err
			}
		}
	} else {
		targets, err = readTargets(targetFile)
		if err != nil {
			return err
		}
		if amountTargets < len(targets) {
			targets = targets[0:amountTargets]
		}
	}

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			return err
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	for _, kind := range kinds {
		algorithm, err := p.New(kind, g, p.WithDebugLevel(debugLevel))
		if err != nil {
			return err
		}
		benchmark(g, kind, algorithm, targets)
	}
	return nil
}

func selectedKinds() ([]p.Kind, error) {
	if len(algorithms) == 0 {
		return p.Menu(), nil
	}
	kinds := make([]p.Kind, 0, len(algorithms))
	for _, name := range algorithms {
		kind, ok := p.ParseKind(name)
		if !ok {
			return nil, fmt.Errorf("unknown algorithm %q", name)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func readTargets(filename string) ([]target, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Split(bufio.ScanLines)

	targets := make([]target, 0)

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 1 {
			// skip empty lines
			continue
		} else if line[0] == '#' {
			// skip comments
			continue
		}
		var t target
		if _, err := fmt.Sscanf(line, "%d %d %g %d", &t.origin, &t.destination, &t.length, &t.hops); err != nil {
			return nil, fmt.Errorf("invalid target %q: %w", line, err)
		}
		targets = append(targets, t)
	}
	return targets, scanner.Err()
}

func createTargets(n int, referenceNavigator *p.Dijkstra) []target {
	targets := make([]target, n)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	nodeCount := referenceNavigator.GetGraph().NodeCount()
	for i := 0; i < n; i++ {
		origin := rng.Intn(nodeCount)
		destination := rng.Intn(nodeCount)
		length := referenceNavigator.ComputeShortestPath(origin, destination)
		hops := len(referenceNavigator.GetPath(origin, destination))
		targets[i] = target{origin, destination, length, hops}
	}
	return targets
}

func writeTargets(targets []target, targetFile string) error {
	var sb strings.Builder
	sb.WriteString("# origin destination length hops\n")
	for _, t := range targets {
		sb.WriteString(fmt.Sprintf("%v %v %v %v\n", t.origin, t.destination, t.length, t.hops))
	}
	return os.WriteFile(targetFile, []byte(sb.String()), 0644)
}

// lengths are sums of floats, compare them with a relative tolerance
func sameLength(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// Run the algorithm for every target and compare the results with the reference
func benchmark(g *graph.Graph, kind p.Kind, algorithm p.Algorithm, targets []target) {
	fmt.Printf("=== %v ===\n", kind)
	var runtime time.Duration = 0
	completed := 0
	skipped := 0

	var steps, pqPops, pqUpdates, relaxationAttempts, relaxedEdges int
	invalidLengths := make([]int, 0)
	invalidResults := make([]int, 0)
	// greedy gives no guarantee on the length
	checkLength := kind != p.GREEDY

	showResults := func() {
		if completed == 0 {
			fmt.Printf("No completed searches, %v skipped\n", skipped)
			return
		}
		fmt.Printf("Average runtime: %.3fms\n", float64(runtime.Nanoseconds()/int64(completed))/1000000)
		fmt.Printf("Average steps: %d\n", steps/completed)
		fmt.Printf("Average pq pops: %d\n", pqPops/completed)
		fmt.Printf("Average pq updates: %d\n", pqUpdates/completed)
		fmt.Printf("Average relaxations attempts: %d\n", relaxationAttempts/completed)
		fmt.Printf("Average edge relaxations: %d\n", relaxedEdges/completed)
		fmt.Printf("%v/%v invalid results (source/target), %v skipped.\n", len(invalidResults), completed, skipped)
		for i, testcase := range invalidResults {
			fmt.Printf("%v: Case %v (%v -> %v) has invalid result\n", i, testcase, targets[testcase].origin, targets[testcase].destination)
		}
		fmt.Printf("%v/%v invalid path lengths.\n", len(invalidLengths), completed)
		for i, testcase := range invalidLengths {
			fmt.Printf("%v: Case %v (%v -> %v) has invalid length, reference: %v\n", i, testcase, targets[testcase].origin, targets[testcase].destination, targets[testcase].length)
		}
	}

	// catch interrupt to still show already calculated results
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-c:
			showResults()
			os.Exit(0)
		case <-done:
			signal.Stop(c)
		}
	}()

	for i, t := range targets {
		start := time.Now()
		path, err := p.FindPath(algorithm, t.origin, t.destination)
		elapsed := time.Since(start)
		if errors.Is(err, p.ErrGraphTooLarge) || errors.Is(err, p.ErrNotGridGraph) {
			skipped++
			continue
		} else if err != nil {
			log.Printf("Case %v: %v\n", i, err)
			skipped++
			continue
		}

		kpis := algorithm.GetKPIs()
		steps += kpis.Steps
		pqPops += kpis.PqPops
		pqUpdates += kpis.PqUpdates
		relaxationAttempts += kpis.RelaxationAttempts
		relaxedEdges += kpis.RelaxedEdges

		length := -1.0
		if len(path) > 0 {
			length, _ = g.PathWeight(path)
			if path[0] != t.origin || path[len(path)-1] != t.destination {
				invalidResults = append(invalidResults, i)
			}
		}
		if (length < 0) != (t.length < 0) || (checkLength && !sameLength(length, t.length)) {
			invalidLengths = append(invalidLengths, i)
		}

		fmt.Printf("[%3v TIME-Navigate, Steps, PQ Pops, PQ Updates, relaxed Edges, relax attempts] = %12s, %7d, %7d, %7d, %7d, %7d\n", i, elapsed, kpis.Steps, kpis.PqPops, kpis.PqUpdates, kpis.RelaxedEdges, kpis.RelaxationAttempts)

		runtime += elapsed
		completed++
	}
	// normal termination, show results
	showResults()
}
